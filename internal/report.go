package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatReport renders a pipeline result as markdown for terminal and MCP
// consumers.
func FormatReport(result *PipelineResult) string {
	var sb strings.Builder

	sb.WriteString("# Comment analysis\n\n")
	fmt.Fprintf(&sb, "Comments analyzed: %d\n\n", result.ExtractedCount)

	report, plain := normalizeSummary(result.Summary)
	if report == nil {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(plain)
		sb.WriteString("\n")
		return sb.String()
	}

	if len(report.OverallSummary) > 0 {
		sb.WriteString("## Overall sentiment\n\n")
		for _, p := range report.OverallSummary {
			sb.WriteString(p)
			sb.WriteString("\n\n")
		}
	}

	if len(report.MainIssues) > 0 {
		sb.WriteString("## Main issues\n\n")
		for _, issue := range report.MainIssues {
			fmt.Fprintf(&sb, "### %s\n\n", issue.Title)
			if issue.Frequency != "" {
				fmt.Fprintf(&sb, "- Frequency: %s\n", issue.Frequency)
			}
			if len(issue.Keywords) > 0 {
				fmt.Fprintf(&sb, "- Keywords: %s\n", strings.Join(issue.Keywords, ", "))
			}
			if issue.RepresentativeComment != "" {
				fmt.Fprintf(&sb, "\n> %s\n", issue.RepresentativeComment)
			}
			sb.WriteString("\n")
		}
	}

	if len(report.RootCauseHypotheses) > 0 {
		sb.WriteString("## Root cause hypotheses\n\n")
		for _, h := range report.RootCauseHypotheses {
			fmt.Fprintf(&sb, "- %s\n", h)
		}
	}

	return sb.String()
}

// normalizeSummary recovers a SummaryReport from the summary field, which
// may be a typed report, a JSON round-tripped map (cache replay), or a
// plain string.
func normalizeSummary(summary any) (*SummaryReport, string) {
	switch v := summary.(type) {
	case *SummaryReport:
		return v, ""
	case SummaryReport:
		return &v, ""
	case string:
		return nil, v
	case nil:
		return nil, "Summarization failed."
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Sprint(v)
		}
		var report SummaryReport
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, string(data)
		}
		return &report, ""
	}
}
