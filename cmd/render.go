package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/khanhnv2901/reality-check/internal/reality"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	accent  = lipgloss.Color("#0EA5E9") // sky
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2).
			Width(68)

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	passStyle     = lipgloss.NewStyle().Foreground(success).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	separatorLine = lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("─", 60))
)

// evaluationRecord pairs a candidate with its result for structured output.
type evaluationRecord struct {
	Domain string                   `json:"domain" yaml:"domain"`
	Result reality.EvaluationResult `json:"result" yaml:"result"`
}

func validFormat(format string) bool {
	switch format {
	case formatText, formatJSON, formatYAML:
		return true
	}
	return false
}

// writeRecords prints records in the requested format.
func writeRecords(w io.Writer, format string, records []evaluationRecord) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(records) == 1 {
			return enc.Encode(records[0])
		}
		return enc.Encode(records)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		var v interface{} = records
		if len(records) == 1 {
			v = records[0]
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		for i, rec := range records {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, renderCard(rec))
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func renderCard(rec evaluationRecord) string {
	res := rec.Result
	var b strings.Builder

	b.WriteString(titleStyle.Render(rec.Domain))
	b.WriteString("\n")
	b.WriteString(separatorLine)
	b.WriteString("\n")

	verdict := failStyle.Render("✗ " + res.Message)
	if res.IsValid {
		verdict = passStyle.Render("✓ " + res.Message)
	}
	b.WriteString(verdict)

	if res.Score != nil {
		b.WriteString("\n")
		b.WriteString(scoreStyle(*res.Score).Render(fmt.Sprintf("%d / 100", *res.Score)))
	}
	if res.Details != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(res.Details))
	}
	if res.Warning != "" {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render("⚠ " + res.Warning))
	}

	return cardStyle.Render(b.String())
}

func scoreStyle(score int) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch {
	case score >= 70:
		return style.Foreground(success)
	case score >= 50:
		return style.Foreground(warning)
	default:
		return style.Foreground(danger)
	}
}
