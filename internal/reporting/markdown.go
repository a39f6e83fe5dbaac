package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a batch report as Markdown string.
func RenderMarkdown(r *BatchReport) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Feature Extraction Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Addresses | %d |\n", r.Summary.Addresses))
	sb.WriteString(fmt.Sprintf("| Succeeded | %d |\n", r.Summary.Succeeded))
	sb.WriteString(fmt.Sprintf("| Failed | %d |\n", r.Summary.Failed))
	sb.WriteString(fmt.Sprintf("| Token vectors (ok) | %d |\n", r.Summary.TokenOK))
	sb.WriteString(fmt.Sprintf("| Token vectors (degraded) | %d |\n", r.Summary.TokenDegraded))
	sb.WriteString(fmt.Sprintf("| No token history | %d |\n", r.Summary.TokenEmpty))
	sb.WriteString(fmt.Sprintf("| Token records dropped | %d |\n", r.Summary.TokenRecordsDropped))
	sb.WriteString("\n")

	// Addresses
	sb.WriteString("## Addresses\n\n")
	if len(r.Rows) == 0 {
		sb.WriteString("No addresses processed.\n\n")
		return sb.String()
	}

	sb.WriteString("| Address | Native Columns | Token Status | Token Columns | Dropped | Error |\n")
	sb.WriteString("|---------|----------------|--------------|---------------|---------|-------|\n")
	for _, row := range r.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %d | %d | %s |\n",
			row.Address, row.NativeColumns, orDash(row.TokenStatus),
			row.TokenColumns, row.TokenDropped, orDash(escapePipes(row.Error))))
	}
	sb.WriteString("\n")

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
