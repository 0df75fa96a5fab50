// Package output writes command results either as a JSON envelope or as
// styled text for people.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/tracker/internal/render"
)

// Writer is the output sink of one command invocation.
type Writer struct {
	JSONMode  bool
	QuietMode bool
	Stdout    io.Writer
	Stderr    io.Writer
}

// New returns a Writer for the given modes. Stdout and Stderr must be set
// by the caller.
func New(jsonMode, quietMode bool) *Writer {
	return &Writer{JSONMode: jsonMode, QuietMode: quietMode, Stdout: io.Discard, Stderr: io.Discard}
}

// Success writes data as a success envelope in JSON mode, otherwise the
// human message.
func (w *Writer) Success(data any, message string) {
	if w.JSONMode {
		writeJSONSuccess(w.Stdout, data, message)
		return
	}
	writeHumanSuccess(w.Stdout, message)
}

// Error writes err and returns the exit code for code. JSON envelopes go
// to Stdout so scripts read a single stream.
func (w *Writer) Error(err error, code ErrorCode) int {
	if w.JSONMode {
		writeJSONError(w.Stdout, err, code)
	} else {
		writeHumanError(w.Stderr, err, code)
	}
	return ExitCodeForError(code)
}

// Info writes a dim note to Stderr unless in quiet or JSON mode.
func (w *Writer) Info(format string, args ...any) {
	if w.QuietMode || w.JSONMode {
		return
	}
	w.note(lipgloss.NewStyle().Foreground(lipgloss.Color("8")), "ℹ", "", format, args...)
}

// Warn writes a warning to Stderr. Quiet mode keeps warnings; JSON mode
// drops them.
func (w *Writer) Warn(format string, args ...any) {
	if w.JSONMode {
		return
	}
	w.note(lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true), "⚠", "Warning: ", format, args...)
}

func (w *Writer) note(style lipgloss.Style, icon, label, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !render.ColorsEnabled() {
		fmt.Fprintln(w.Stderr, label+msg)
		return
	}
	fmt.Fprintf(w.Stderr, "%s %s\n", style.Render(icon), style.Render(label+msg))
}
