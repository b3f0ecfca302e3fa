package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
)

//nolint:gochecknoglobals // Shared palette
var (
	headerColor = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.FgHiBlack)
	valueColor  = color.New(color.FgWhite, color.Bold)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed, color.Bold)
	okColor     = color.New(color.FgGreen)
)

// stat is one row of a report table.
type stat struct {
	label string
	value string
}

func count(label string, n int) stat {
	return stat{label: label, value: humanize.Comma(int64(n))}
}

func text(label, value string) stat {
	return stat{label: label, value: value}
}

func elapsed(label string, d time.Duration) stat {
	return stat{label: label, value: d.Round(time.Millisecond).String()}
}

// printStats writes a titled, aligned two-column table.
func printStats(w io.Writer, title string, stats ...stat) {
	width := 0
	for _, s := range stats {
		width = max(width, len(s.label))
	}
	headerColor.Fprintln(w, title)
	for _, s := range stats {
		labelColor.Fprintf(w, "  %-*s  ", width, s.label)
		valueColor.Fprintln(w, s.value)
	}
}

func printWarning(w io.Writer, format string, args ...any) {
	warnColor.Fprintln(w, fmt.Sprintf(format, args...))
}

func printOK(w io.Writer, format string, args ...any) {
	okColor.Fprintln(w, fmt.Sprintf(format, args...))
}

// plural returns "1 track" or "3 tracks" with a humanized count.
func plural(n int, singular string) string {
	return humanize.Comma(int64(n)) + " " + english.PluralWord(n, singular, "")
}

func joinQuoted(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
