package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Anmirazik/ev-server/domain/entity"
)

func TestReportTemplates_Render(t *testing.T) {
	templates := DefaultReportTemplates()

	tests := []struct {
		name      string
		inSuccess int
		inError   int
		want      string
	}{
		{
			name: "empty pass",
			want: "User import finished: no staged users to import.",
		},
		{
			name:      "all records imported",
			inSuccess: 12,
			want:      "User import finished: 12 users imported successfully.",
		},
		{
			name:    "all records failed",
			inError: 4,
			want:    "User import finished: none of the 4 staged records could be imported.",
		},
		{
			name:      "mixed outcome",
			inSuccess: 9,
			inError:   2,
			want:      "User import finished: 9 users imported, 2 records failed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &entity.ImportResult{InSuccess: tt.inSuccess, InError: tt.inError}

			assert.Equal(t, tt.want, templates.Render(result))
		})
	}
}

func TestReportTemplates_RenderCustomTemplates(t *testing.T) {
	templates := ReportTemplates{
		AllSuccess: "%d imported",
		AllError:   "%d failed",
		Partial:    "%d ok, %d bad",
		Empty:      "nothing to do",
	}

	assert.Equal(t, "nothing to do", templates.Render(&entity.ImportResult{}))
	assert.Equal(t, "3 imported", templates.Render(&entity.ImportResult{InSuccess: 3}))
	assert.Equal(t, "2 failed", templates.Render(&entity.ImportResult{InError: 2}))
	assert.Equal(t, "3 ok, 2 bad", templates.Render(&entity.ImportResult{InSuccess: 3, InError: 2}))
}
