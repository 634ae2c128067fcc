package cmd

import (
	"strings"

	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

// formatStatusWithColor colors the verdict words used by quick checks and capability reports.
func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "ok", "valid", "yes", "pass":
		return colorSuccess(status)
	case "risk", "warn":
		return colorWarn(status)
	case "error", "invalid", "no", "fail", "format error":
		return colorError(status)
	default:
		return status
	}
}
