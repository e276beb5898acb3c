package service

import (
	"context"
	"fmt"

	"github.com/Anmirazik/ev-server/domain/entity"
	"github.com/Anmirazik/ev-server/shared/types"
)

// ImportReporter publishes the outcome of an import pass to interested
// consumers. Reporting is best effort; a failed report never invalidates
// the pass it describes.
type ImportReporter interface {
	// Report publishes the aggregate result of a completed pass
	Report(ctx context.Context, tenantID types.TenantID, result *entity.ImportResult, templates ReportTemplates) error

	// ReportFault publishes an abnormal termination of a pass
	ReportFault(ctx context.Context, tenantID types.TenantID, faultErr error) error
}

// ReportTemplates holds one message template per import outcome.
// Count templates are fmt verbs: AllSuccess and AllError take one
// count, Partial takes success then error counts, Empty takes none.
type ReportTemplates struct {
	AllSuccess string `json:"all_success"`
	AllError   string `json:"all_error"`
	Partial    string `json:"partial"`
	Empty      string `json:"empty"`
}

// DefaultReportTemplates returns the standard report messages
func DefaultReportTemplates() ReportTemplates {
	return ReportTemplates{
		AllSuccess: "User import finished: %d users imported successfully.",
		AllError:   "User import finished: none of the %d staged records could be imported.",
		Partial:    "User import finished: %d users imported, %d records failed.",
		Empty:      "User import finished: no staged users to import.",
	}
}

// Render selects the template matching the result and fills in the counts
func (t ReportTemplates) Render(result *entity.ImportResult) string {
	switch result.Outcome() {
	case entity.ImportOutcomeEmpty:
		return t.Empty
	case entity.ImportOutcomeSuccess:
		return fmt.Sprintf(t.AllSuccess, result.InSuccess)
	case entity.ImportOutcomeFailure:
		return fmt.Sprintf(t.AllError, result.InError)
	default:
		return fmt.Sprintf(t.Partial, result.InSuccess, result.InError)
	}
}
