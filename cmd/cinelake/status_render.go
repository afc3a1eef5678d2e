package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"cinelake/internal/ledger"
	"cinelake/internal/preflight"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

func renderStatusLine(label string, status ledger.Status, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusLabel(status))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusColor(status); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func renderCheckLine(r preflight.Result, colorize bool) string {
	status := ledger.StatusCompleted
	if !r.Passed {
		status = ledger.StatusFailed
	}
	return renderStatusLine(r.Name, status, r.Detail, colorize)
}

func statusLabel(status ledger.Status) string {
	switch status {
	case ledger.StatusCompleted:
		return "OK"
	case ledger.StatusSkipped:
		return "SKIP"
	case ledger.StatusFailed:
		return "FAIL"
	default:
		return string(status)
	}
}

func statusColor(status ledger.Status) string {
	switch status {
	case ledger.StatusCompleted:
		return ansiGreen
	case ledger.StatusSkipped:
		return ansiYellow
	case ledger.StatusFailed:
		return ansiRed
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
