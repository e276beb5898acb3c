package entity

import (
	"time"
)

// ImportResult aggregates the outcome of a single import pass for one tenant
type ImportResult struct {
	InSuccess int           `json:"in_success"`
	InError   int           `json:"in_error"`
	Duration  time.Duration `json:"duration"`
}

// ImportOutcome classifies the overall outcome of an import pass
type ImportOutcome string

const (
	ImportOutcomeEmpty   ImportOutcome = "empty"
	ImportOutcomeSuccess ImportOutcome = "success"
	ImportOutcomePartial ImportOutcome = "partial"
	ImportOutcomeFailure ImportOutcome = "failure"
)

// NewImportResult creates an empty import result
func NewImportResult() *ImportResult {
	return &ImportResult{}
}

// AddSuccess records one successfully imported record
func (r *ImportResult) AddSuccess() {
	r.InSuccess++
}

// AddError records one failed record
func (r *ImportResult) AddError() {
	r.InError++
}

// Total returns the number of records processed in the pass
func (r *ImportResult) Total() int {
	return r.InSuccess + r.InError
}

// Outcome classifies the pass by its success and error counts
func (r *ImportResult) Outcome() ImportOutcome {
	switch {
	case r.InSuccess == 0 && r.InError == 0:
		return ImportOutcomeEmpty
	case r.InError == 0:
		return ImportOutcomeSuccess
	case r.InSuccess == 0:
		return ImportOutcomeFailure
	default:
		return ImportOutcomePartial
	}
}
