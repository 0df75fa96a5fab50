package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Add and list issue comments",
}

// readPipedStdin returns stdin when it is a pipe or file, and "" on a terminal.
func readPipedStdin() (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}
	const maxStdinSize = 1 << 20 // 1 MiB
	lr := &io.LimitedReader{R: os.Stdin, N: maxStdinSize + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return "", fmt.Errorf("reading comment from stdin: %w", err)
	}
	if int64(len(data)) > maxStdinSize {
		return "", cmdErr(fmt.Errorf("comment body exceeds %d bytes", maxStdinSize), output.ErrValidation)
	}
	return string(data), nil
}

var commentAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a comment to an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		session, err := requireSession(cmd)
		if err != nil {
			return err
		}

		v, err := openDetail(cmd, args[0])
		if err != nil {
			return err
		}

		// Resolve message body: flag > stdin pipe > form.
		body, _ := cmd.Flags().GetString("message")
		if !cmd.Flags().Changed("message") {
			if body, err = readPipedStdin(); err != nil {
				var ce *CmdError
				if errors.As(err, &ce) {
					return ce
				}
				return cmdErr(err, output.ErrGeneral)
			}
		}

		if strings.TrimSpace(body) == "" && interactive(cmd) {
			form := huh.NewForm(huh.NewGroup(
				huh.NewText().
					Title(fmt.Sprintf("Comment on %s", render.ShortID(v.Issue().ID))).
					Value(&body),
			))
			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					w.Info("Cancelled.")
					return nil
				}
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
		}

		c, ok, err := v.AddComment(cmd.Context(), session, body)
		if err != nil {
			return domainErr(err)
		}
		if !ok {
			if w.JSONMode {
				return cmdErr(errors.New("comment is empty"), output.ErrValidation)
			}
			w.Info("Empty comment, nothing added.")
			return nil
		}

		w.Success(c, fmt.Sprintf("Added comment to %s", render.ShortID(v.Issue().ID)))
		return nil
	},
}

func init() {
	commentAddCmd.Flags().StringP("message", "m", "", "Comment text (read from stdin when piped)")
	commentCmd.AddCommand(commentAddCmd)
	issueCmd.AddCommand(commentCmd)
}
