package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
)

// Config represents the configuration for the user import service
type Config struct {
	// Service configuration
	Service ServiceConfig `mapstructure:"service"`

	// Database configuration
	MongoDB MongoDBConfig `mapstructure:"mongodb"`

	// Lock store configuration
	Redis RedisConfig `mapstructure:"redis"`

	// Message queue configuration
	Kafka KafkaConfig `mapstructure:"kafka"`

	// Import job configuration
	Import ImportConfig `mapstructure:"import"`

	// Logging configuration
	Logging logging.Config `mapstructure:"logging"`

	// Metrics configuration
	Metrics metrics.Config `mapstructure:"metrics"`
}

// ServiceConfig contains service-specific configuration
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	InstanceID  string `mapstructure:"instance_id"`
}

// MongoDBConfig contains MongoDB connection configuration
type MongoDBConfig struct {
	URI                    string        `mapstructure:"uri"`
	Database               string        `mapstructure:"database"`
	MaxPoolSize            uint64        `mapstructure:"max_pool_size"`
	MinPoolSize            uint64        `mapstructure:"min_pool_size"`
	MaxConnIdleTime        time.Duration `mapstructure:"max_conn_idle_time"`
	ConnectTimeout         time.Duration `mapstructure:"connect_timeout"`
	ServerSelectionTimeout time.Duration `mapstructure:"server_selection_timeout"`
	SocketTimeout          time.Duration `mapstructure:"socket_timeout"`
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Addresses          []string      `mapstructure:"addresses"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	Database           int           `mapstructure:"database"`
	PoolSize           int           `mapstructure:"pool_size"`
	MinIdleConnections int           `mapstructure:"min_idle_connections"`
	DialTimeout        time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	KeyPrefix          string        `mapstructure:"key_prefix"`
}

// KafkaConfig contains Kafka producer configuration
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	ClientID     string        `mapstructure:"client_id"`
	ReportTopic  string        `mapstructure:"report_topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// ImportConfig contains user import job configuration
type ImportConfig struct {
	Schedule             string        `mapstructure:"schedule"`
	PageSize             int64         `mapstructure:"page_size"`
	LockTTL              time.Duration `mapstructure:"lock_ttl"`
	ReleaseTimeout       time.Duration `mapstructure:"release_timeout"`
	MaxConcurrentTenants int           `mapstructure:"max_concurrent_tenants"`
	TenantsPerSecond     float64       `mapstructure:"tenants_per_second"`
}

// LoadConfig loads the service configuration from file and environment
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/ev-server")

	v.AutomaticEnv()
	v.SetEnvPrefix("EVSERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and environment take over
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Service defaults
	v.SetDefault("service.name", "ev-server")
	v.SetDefault("service.version", "1.0.0")
	v.SetDefault("service.environment", "development")

	// MongoDB defaults
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "ev-server")
	v.SetDefault("mongodb.max_pool_size", 100)
	v.SetDefault("mongodb.min_pool_size", 5)
	v.SetDefault("mongodb.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("mongodb.connect_timeout", 10*time.Second)
	v.SetDefault("mongodb.server_selection_timeout", 10*time.Second)
	v.SetDefault("mongodb.socket_timeout", 30*time.Second)

	// Redis defaults
	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_connections", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.key_prefix", "evserver:")

	// Kafka defaults
	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.client_id", "ev-server-import")
	v.SetDefault("kafka.report_topic", "users-import-reports")
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", 10*time.Millisecond)
	v.SetDefault("kafka.write_timeout", 30*time.Second)
	v.SetDefault("kafka.max_retries", 3)

	// Import defaults
	v.SetDefault("import.schedule", "@every 1m")
	v.SetDefault("import.page_size", 100)
	v.SetDefault("import.lock_ttl", 15*time.Minute)
	v.SetDefault("import.release_timeout", 5*time.Second)
	v.SetDefault("import.max_concurrent_tenants", 4)
	v.SetDefault("import.tenants_per_second", 2.0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.development", false)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "evserver")
	v.SetDefault("metrics.host", "0.0.0.0")
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("service name is required")
	}

	if c.MongoDB.URI == "" {
		return fmt.Errorf("mongodb uri is required")
	}

	if c.MongoDB.Database == "" {
		return fmt.Errorf("mongodb database is required")
	}

	if len(c.Redis.Addresses) == 0 {
		return fmt.Errorf("at least one redis address is required")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("at least one kafka broker is required when kafka is enabled")
	}

	if c.Import.Schedule == "" {
		return fmt.Errorf("import schedule is required")
	}

	if c.Import.PageSize <= 0 {
		return fmt.Errorf("import page size must be positive")
	}

	if c.Import.LockTTL <= 0 {
		return fmt.Errorf("import lock ttl must be positive")
	}

	if c.Import.MaxConcurrentTenants <= 0 {
		return fmt.Errorf("max concurrent tenants must be positive")
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}

	return nil
}
