// Package cliui provides the terminal output helpers shared by speakmcp
// commands: styles, spinners, tables, JSON and markdown rendering.
package cliui

import (
	"fmt"
	"io"
	"os"
	"time"
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Step runs fn and reports it as one line: msg followed by ✓ or ✗ and the
// elapsed time. On a terminal a spinner animates in place while fn runs;
// anywhere else only the final line is written.
func Step(w io.Writer, msg string, fn func() error) error {
	var stop func()
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		stop = spin(w, msg)
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	prefix := ""
	if stop != nil {
		stop()
		prefix = "\r"
	}

	fmt.Fprintf(w, "%s  %s %s %s\n", prefix, Mark(err), msg,
		StepStyle.Render("("+FormatDuration(elapsed)+")"))
	return err
}

// spin redraws the spinner until the returned func is called. The func
// blocks until the last frame is written.
func spin(w io.Writer, msg string) func() {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			glyph := spinnerFrames[frame%len(spinnerFrames)]
			fmt.Fprintf(w, "\r  %s %s", spinnerStyle.Render(glyph), msg)

			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}

// Mark is ✓ for a nil error and ✗ otherwise.
func Mark(err error) string {
	if err != nil {
		return FailMark()
	}
	return SuccessMark()
}

// FormatDuration renders d as whole milliseconds below a second and as
// tenths of a second above.
func FormatDuration(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
