package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/Anmirazik/ev-server/domain/entity"
	"github.com/Anmirazik/ev-server/domain/service"
	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
	"github.com/Anmirazik/ev-server/shared/types"
)

// Reporter implements service.ImportReporter. Every report is written
// to the service log; when a publisher is configured the report is also
// published to the message queue.
type Reporter struct {
	publisher ReportPublisher
	logger    *logging.Logger
	metrics   *metrics.Collector
}

// NewReporter creates a new import reporter. publisher may be nil, in
// which case reports only go to the log.
func NewReporter(publisher ReportPublisher, logger *logging.Logger, metrics *metrics.Collector) *Reporter {
	return &Reporter{
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Report publishes the aggregate result of a completed import pass
func (r *Reporter) Report(ctx context.Context, tenantID types.TenantID, result *entity.ImportResult, templates service.ReportTemplates) error {
	message := templates.Render(result)
	outcome := result.Outcome()

	r.logger.WithTenant(tenantID).WithComponent("import-reporter").Info(message,
		logging.Int("in_success", result.InSuccess),
		logging.Int("in_error", result.InError),
		logging.Duration("duration", result.Duration),
	)

	r.metrics.RecordBusinessOperation("users_import_report", tenantID.String(), string(outcome), result.Duration)

	if r.publisher == nil {
		return nil
	}

	return r.publisher.Publish(ctx, &ImportReport{
		TenantID:   tenantID.String(),
		Outcome:    string(outcome),
		Message:    message,
		InSuccess:  result.InSuccess,
		InError:    result.InError,
		DurationMS: result.Duration.Milliseconds(),
		ReportedAt: time.Now().UTC(),
	})
}

// ReportFault publishes an abnormal termination of an import pass
func (r *Reporter) ReportFault(ctx context.Context, tenantID types.TenantID, faultErr error) error {
	message := fmt.Sprintf("User import aborted: %s", faultErr.Error())

	r.logger.WithTenant(tenantID).WithComponent("import-reporter").Error(message)

	r.metrics.RecordBusinessOperation("users_import_report", tenantID.String(), "fault", 0)

	if r.publisher == nil {
		return nil
	}

	return r.publisher.Publish(ctx, &ImportReport{
		TenantID:   tenantID.String(),
		Outcome:    "fault",
		Message:    message,
		Fault:      faultErr.Error(),
		ReportedAt: time.Now().UTC(),
	})
}
