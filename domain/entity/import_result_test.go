package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportResult_Outcome(t *testing.T) {
	tests := []struct {
		name      string
		inSuccess int
		inError   int
		want      ImportOutcome
	}{
		{"nothing processed", 0, 0, ImportOutcomeEmpty},
		{"all succeeded", 5, 0, ImportOutcomeSuccess},
		{"single success", 1, 0, ImportOutcomeSuccess},
		{"all failed", 0, 3, ImportOutcomeFailure},
		{"mixed results", 4, 2, ImportOutcomePartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewImportResult()
			for i := 0; i < tt.inSuccess; i++ {
				result.AddSuccess()
			}
			for i := 0; i < tt.inError; i++ {
				result.AddError()
			}

			assert.Equal(t, tt.want, result.Outcome())
			assert.Equal(t, tt.inSuccess+tt.inError, result.Total())
		})
	}
}

func TestImportResult_Counters(t *testing.T) {
	result := NewImportResult()

	result.AddSuccess()
	result.AddSuccess()
	result.AddError()

	assert.Equal(t, 2, result.InSuccess)
	assert.Equal(t, 1, result.InError)
	assert.Equal(t, 3, result.Total())
}
