package internal

import (
	"fmt"
	"strings"
)

func buildTranslatePrompt(batch []string) string {
	lines := []string{"Translate the following Japanese YouTube comments to English. Return only the translations in the exact same numbered format, preserving emojis and meaning:"}
	for i, comment := range batch {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, comment))
	}
	return strings.Join(lines, "\n")
}

func buildChunkSummaryPrompt(chunk []string) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following English YouTube comments into the main themes, common feedback, and any recurring bug reports:\n\n")
	for _, c := range chunk {
		sb.WriteString("- ")
		sb.WriteString(c)
		sb.WriteString("\n")
	}
	return sb.String()
}

func buildFinalSummaryPrompt(chunkSummaries []string) string {
	var sb strings.Builder
	sb.WriteString("Combine and format the following chunk summaries into a comprehensive analysis.\n")
	sb.WriteString("You must return a strictly valid JSON object matching this exact schema:\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "overall_summary": ["Paragraph 1 of overall sentiment...", "Paragraph 2..."],` + "\n")
	sb.WriteString(`  "main_issues": [` + "\n")
	sb.WriteString("    {\n")
	sb.WriteString(`      "title": "Short title of issue/theme",` + "\n")
	sb.WriteString(`      "frequency": "e.g., Many viewers, 5 times",` + "\n")
	sb.WriteString(`      "keywords": ["keyword1", "keyword2"],` + "\n")
	sb.WriteString(`      "representative_comment": "A good quote representing this"` + "\n")
	sb.WriteString("    }\n")
	sb.WriteString("  ],\n")
	sb.WriteString(`  "root_cause_hypotheses": ["Hypothesis 1 about why this happens (if any)"]` + "\n")
	sb.WriteString("}\n\n")
	sb.WriteString("Chunk Summaries to analyze:\n\n")
	sb.WriteString(strings.Join(chunkSummaries, "\n\n"))
	return sb.String()
}
