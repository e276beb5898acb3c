package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/Anmirazik/ev-server/config"
	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
	"github.com/Anmirazik/ev-server/shared/common"
)

// ImportReport is the wire payload published for each import pass
type ImportReport struct {
	TenantID   string    `json:"tenant_id"`
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message"`
	InSuccess  int       `json:"in_success"`
	InError    int       `json:"in_error"`
	DurationMS int64     `json:"duration_ms"`
	Fault      string    `json:"fault,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}

// ReportPublisher publishes import reports to a message queue
type ReportPublisher interface {
	Publish(ctx context.Context, report *ImportReport) error
	Close() error
}

// KafkaReportPublisher implements ReportPublisher using Kafka. Writes
// go through a circuit breaker so a broker outage degrades reporting
// without piling up blocked passes.
type KafkaReportPublisher struct {
	writer   *kafka.Writer
	breaker  *gobreaker.CircuitBreaker
	topic    string
	clientID string
	logger   *logging.Logger
	metrics  *metrics.Collector
}

// NewKafkaReportPublisher creates a new Kafka report publisher
func NewKafkaReportPublisher(cfg config.KafkaConfig, logger *logging.Logger, metrics *metrics.Collector) *KafkaReportPublisher {
	publisher := &KafkaReportPublisher{
		topic:    cfg.ReportTopic,
		clientID: cfg.ClientID,
		logger:   logger,
		metrics:  metrics,
	}

	publisher.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.ReportTopic,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  cfg.MaxRetries,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Logger:       kafka.LoggerFunc(publisher.logKafkaMessage),
		ErrorLogger:  kafka.LoggerFunc(publisher.logKafkaError),
	}

	publisher.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-report-publisher",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
		},
	})

	logger.Info("Kafka report publisher initialized",
		logging.Strings("brokers", cfg.Brokers),
		logging.String("topic", cfg.ReportTopic),
	)

	return publisher
}

// Publish sends one import report to the report topic
func (p *KafkaReportPublisher) Publish(ctx context.Context, report *ImportReport) error {
	start := time.Now()

	payload, err := json.Marshal(report)
	if err != nil {
		return common.WrapError(err, common.ErrCodeInternal, "failed to marshal import report")
	}

	message := kafka.Message{
		Key:   []byte(report.TenantID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "tenant_id", Value: []byte(report.TenantID)},
			{Key: "outcome", Value: []byte(report.Outcome)},
			{Key: "produced_at", Value: []byte(common.Times.ToISO8601(time.Now().UTC()))},
			{Key: "producer_id", Value: []byte(p.clientID)},
		},
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, message)
	})
	if err != nil {
		p.metrics.RecordError("kafka_publish_error", "notification")
		p.metrics.RecordMessageSent(p.topic, "failed")
		p.logger.Error("Failed to publish import report",
			logging.String("tenant_id", report.TenantID),
			logging.String("topic", p.topic),
			logging.String("error", err.Error()),
		)
		return common.WrapError(err, common.ErrCodeExternalService, "failed to publish import report")
	}

	p.metrics.RecordMessageSent(p.topic, "success")
	p.logger.Debug("Import report published",
		logging.String("tenant_id", report.TenantID),
		logging.String("outcome", report.Outcome),
		logging.Duration("duration", time.Since(start)),
	)

	return nil
}

// Close closes the underlying writer
func (p *KafkaReportPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaReportPublisher) logKafkaMessage(msg string, args ...interface{}) {
	p.logger.Debug("Kafka: " + fmt.Sprintf(msg, args...))
}

func (p *KafkaReportPublisher) logKafkaError(msg string, args ...interface{}) {
	p.logger.Error("Kafka: " + fmt.Sprintf(msg, args...))
}
