package cliui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

const defaultWidth = 80

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// Truncate shortens s to at most width display cells, ending in "..." when
// cut. Escape sequences and wide runes are measured the way a terminal
// draws them. Newlines are flattened first so table cells stay on one row.
func Truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return ansi.Truncate(s, width, "...")
}

// Width is the display width of s.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth is the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// FormatTimestamp renders a millisecond Unix timestamp in local time.
// Zero renders as "-".
func FormatTimestamp(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

// Success prints a ✓ line.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", SuccessMark(), fmt.Sprintf(format, args...))
}

// Warn prints a ⚠ line.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", WarnStyle.Render("⚠"), fmt.Sprintf(format, args...))
}

// KV prints "key: value" with a styled key.
func KV(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render(key+":"), value)
}
