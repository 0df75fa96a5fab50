package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/tracker/internal/render"
)

const retryHint = "The operation was not applied. Run the command again to retry."

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// writeHumanSuccess prints message. One-line messages get a check mark;
// rendered tables and boards are printed untouched.
func writeHumanSuccess(w io.Writer, message string) {
	if message == "" {
		return
	}
	if strings.Contains(message, "\n") || !render.ColorsEnabled() {
		fmt.Fprintln(w, message)
		return
	}
	fmt.Fprintf(w, "%s %s\n", okStyle.Render("✔"), message)
}

// writeHumanError prints err, followed by a retry hint for store failures.
func writeHumanError(w io.Writer, err error, code ErrorCode) {
	if render.ColorsEnabled() {
		fmt.Fprintf(w, "%s %s\n", errStyle.Render("✘ Error:"), err)
	} else {
		fmt.Fprintf(w, "Error: %s\n", err)
	}
	if code == ErrUnavailable {
		fmt.Fprintln(w, render.StyledText(retryHint, hintStyle))
	}
}
