package internal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatReportStructured(t *testing.T) {
	result := &PipelineResult{
		ExtractedCount: 123,
		Summary: &SummaryReport{
			OverallSummary: []string{"Players enjoy the update overall."},
			MainIssues: []MainIssue{{
				Title:                 "Login failures",
				Frequency:             "high",
				Keywords:              []string{"login", "error"},
				RepresentativeComment: "I can't log in since the patch.",
			}},
			RootCauseHypotheses: []string{"auth server capacity"},
		},
	}

	out := FormatReport(result)
	assert.Contains(t, out, "Comments analyzed: 123")
	assert.Contains(t, out, "## Overall sentiment")
	assert.Contains(t, out, "### Login failures")
	assert.Contains(t, out, "- Keywords: login, error")
	assert.Contains(t, out, "> I can't log in since the patch.")
	assert.Contains(t, out, "- auth server capacity")
}

func TestFormatReportPlainSummary(t *testing.T) {
	out := FormatReport(&PipelineResult{ExtractedCount: 2, Summary: "Process aborted by user."})
	assert.Contains(t, out, "## Summary")
	assert.Contains(t, out, "Process aborted by user.")
}

func TestFormatReportNilSummary(t *testing.T) {
	out := FormatReport(&PipelineResult{ExtractedCount: 0})
	assert.Contains(t, out, "Summarization failed.")
}

func TestNormalizeSummaryFromCacheRoundTrip(t *testing.T) {
	// A result that went through JSON (redis cache, SSE replay) carries the
	// summary as a generic map; it must still come back structured.
	original := &PipelineResult{
		ExtractedCount: 1,
		Summary: &SummaryReport{
			OverallSummary: []string{"fine"},
			MainIssues:     []MainIssue{{Title: "Lag"}},
		},
	}
	data, err := json.Marshal(original)
	require.NoError(t, err)
	var decoded PipelineResult
	require.NoError(t, json.Unmarshal(data, &decoded))

	report, plain := normalizeSummary(decoded.Summary)
	require.NotNil(t, report, "round-tripped summary should normalize, got plain %q", plain)
	assert.Equal(t, []string{"fine"}, report.OverallSummary)
	require.Len(t, report.MainIssues, 1)
	assert.Equal(t, "Lag", report.MainIssues[0].Title)
}
