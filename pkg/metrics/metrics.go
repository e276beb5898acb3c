package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config represents metrics configuration
type Config struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Host      string `json:"host" yaml:"host"`
	Port      int    `json:"port" yaml:"port"`
	Path      string `json:"path" yaml:"path"`
}

// Collector manages all metrics for the service
type Collector struct {
	namespace string
	registry  *prometheus.Registry

	// Common metrics
	ErrorsTotal *prometheus.CounterVec

	// System metrics
	StartTime prometheus.Gauge

	// Business metrics
	BusinessOperations *prometheus.CounterVec
	BusinessDuration   *prometheus.HistogramVec

	// Import metrics
	ImportRuns     *prometheus.CounterVec
	ImportRecords  *prometheus.CounterVec
	ImportDuration *prometheus.HistogramVec
	ImportBacklog  *prometheus.GaugeVec

	// Lock metrics
	LockOperations *prometheus.CounterVec

	// Database metrics
	DatabaseConnections *prometheus.GaugeVec
	DatabaseQueries     *prometheus.CounterVec
	DatabaseDuration    *prometheus.HistogramVec

	// Message queue metrics
	MessagesSent *prometheus.CounterVec
}

// NewCollector creates a new metrics collector
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		namespace: namespace,
		registry:  registry,
	}

	c.initializeMetrics()
	c.registerMetrics()

	return c
}

// initializeMetrics initializes all metrics
func (c *Collector) initializeMetrics() {
	c.ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      "errors_total",
			Help:      "Total number of errors",
		},
		[]string{"error_type", "component"},
	)

	// System metrics
	c.StartTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "start_time_seconds",
			Help:      "Service start time in Unix seconds",
		},
	)

	// Business metrics
	c.BusinessOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      "business_operations_total",
			Help:      "Total number of business operations",
		},
		[]string{"operation", "tenant_id", "status"},
	)

	c.BusinessDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: c.namespace,
			Name:      "business_operation_duration_seconds",
			Help:      "Business operation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation", "tenant_id"},
	)

	// Import metrics
	c.ImportRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      "import_runs_total",
			Help:      "Total number of user import passes",
		},
		[]string{"tenant_id", "outcome"},
	)

	c.ImportRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      "import_records_total",
			Help:      "Total number of imported user records processed",
		},
		[]string{"tenant_id", "result"},
	)

	c.ImportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: c.namespace,
			Name:      "import_duration_seconds",
			Help:      "User import pass duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"tenant_id"},
	)

	c.ImportBacklog = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "import_backlog",
			Help:      "Number of staged user records awaiting import",
		},
		[]string{"tenant_id"},
	)

	// Lock metrics
	c.LockOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      "lock_operations_total",
			Help:      "Total number of distributed lock operations",
		},
		[]string{"operation", "outcome"},
	)

	// Database metrics
	c.DatabaseConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "database_connections",
			Help:      "Number of database connections",
		},
		[]string{"database", "state"},
	)

	c.DatabaseQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      "database_queries_total",
			Help:      "Total number of database queries",
		},
		[]string{"database", "operation", "collection"},
	)

	c.DatabaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: c.namespace,
			Name:      "database_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"database", "operation", "collection"},
	)

	// Message queue metrics
	c.MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      "messages_sent_total",
			Help:      "Total number of messages sent",
		},
		[]string{"topic", "status"},
	)
}

// registerMetrics registers all metrics with the registry
func (c *Collector) registerMetrics() {
	c.registry.MustRegister(c.ErrorsTotal)
	c.registry.MustRegister(c.StartTime)

	c.registry.MustRegister(c.BusinessOperations)
	c.registry.MustRegister(c.BusinessDuration)

	c.registry.MustRegister(c.ImportRuns)
	c.registry.MustRegister(c.ImportRecords)
	c.registry.MustRegister(c.ImportDuration)
	c.registry.MustRegister(c.ImportBacklog)

	c.registry.MustRegister(c.LockOperations)

	c.registry.MustRegister(c.DatabaseConnections)
	c.registry.MustRegister(c.DatabaseQueries)
	c.registry.MustRegister(c.DatabaseDuration)

	c.registry.MustRegister(c.MessagesSent)

	// Set start time
	c.StartTime.SetToCurrentTime()
}

// RecordError records error metrics
func (c *Collector) RecordError(errorType, component string) {
	c.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordBusinessOperation records business operation metrics
func (c *Collector) RecordBusinessOperation(operation, tenantID, status string, duration time.Duration) {
	c.BusinessOperations.WithLabelValues(operation, tenantID, status).Inc()
	c.BusinessDuration.WithLabelValues(operation, tenantID).Observe(duration.Seconds())
}

// RecordImportRun records the outcome of one import pass
func (c *Collector) RecordImportRun(tenantID, outcome string, duration time.Duration) {
	c.ImportRuns.WithLabelValues(tenantID, outcome).Inc()
	c.ImportDuration.WithLabelValues(tenantID).Observe(duration.Seconds())
}

// RecordImportRecord records the result of one imported record
func (c *Collector) RecordImportRecord(tenantID, result string) {
	c.ImportRecords.WithLabelValues(tenantID, result).Inc()
}

// SetImportBacklog records the number of staged records awaiting import
func (c *Collector) SetImportBacklog(tenantID string, count float64) {
	c.ImportBacklog.WithLabelValues(tenantID).Set(count)
}

// RecordLockOperation records distributed lock operation metrics
func (c *Collector) RecordLockOperation(operation, outcome string) {
	c.LockOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordDatabaseConnection records database connection metrics
func (c *Collector) RecordDatabaseConnection(database, state string, count float64) {
	c.DatabaseConnections.WithLabelValues(database, state).Set(count)
}

// RecordDatabaseQuery records database query metrics
func (c *Collector) RecordDatabaseQuery(database, operation, collection string, duration time.Duration) {
	c.DatabaseQueries.WithLabelValues(database, operation, collection).Inc()
	c.DatabaseDuration.WithLabelValues(database, operation, collection).Observe(duration.Seconds())
}

// RecordMessageSent records message sent metrics
func (c *Collector) RecordMessageSent(topic, status string) {
	c.MessagesSent.WithLabelValues(topic, status).Inc()
}

// GetRegistry returns the metrics registry
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// CreateHandler creates an HTTP handler for metrics
func (c *Collector) CreateHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Server represents a metrics server
type Server struct {
	config    Config
	collector *Collector
	server    *http.Server
}

// NewServer creates a new metrics server
func NewServer(config Config, collector *Collector) *Server {
	if !config.Enabled {
		return &Server{config: config}
	}

	mux := http.NewServeMux()
	mux.Handle(config.Path, collector.CreateHandler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return &Server{
		config:    config,
		collector: collector,
		server:    server,
	}
}

// Start starts the metrics server
func (s *Server) Start() error {
	if !s.config.Enabled || s.server == nil {
		return nil
	}

	return s.server.ListenAndServe()
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

// Timer helps measure operation duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed duration
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration observes duration on a histogram
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Global metrics collector
var globalCollector *Collector

// InitGlobalCollector initializes the global metrics collector
func InitGlobalCollector(namespace string) {
	globalCollector = NewCollector(namespace)
}

// GetGlobalCollector returns the global metrics collector
func GetGlobalCollector() *Collector {
	if globalCollector == nil {
		globalCollector = NewCollector("evserver")
	}
	return globalCollector
}
