package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

var editFlags = []string{"title", "description", "status", "priority", "assignee"}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an existing issue",
	Long: `Edit an existing issue. Only the flags given are changed; with no flags
an interactive form is shown. The whole issue is written back, so edits made
elsewhere since it was loaded are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		if _, err := requireSession(cmd); err != nil {
			return err
		}

		v, err := openDetail(cmd, args[0])
		if err != nil {
			return err
		}
		edited := v.Issue()

		changed := false
		for _, f := range editFlags {
			changed = changed || cmd.Flags().Changed(f)
		}

		switch {
		case changed:
			if cmd.Flags().Changed("title") {
				edited.Title, _ = cmd.Flags().GetString("title")
			}
			if cmd.Flags().Changed("description") {
				d, _ := cmd.Flags().GetString("description")
				if edited.Description, err = readDescription(d); err != nil {
					return cmdErr(err, output.ErrGeneral)
				}
			}
			if cmd.Flags().Changed("status") {
				s, _ := cmd.Flags().GetString("status")
				if edited.Status, err = model.ParseStatus(s); err != nil {
					return cmdErr(err, output.ErrValidation)
				}
			}
			if cmd.Flags().Changed("priority") {
				p, _ := cmd.Flags().GetString("priority")
				if edited.Priority, err = model.ParsePriority(p); err != nil {
					return cmdErr(err, output.ErrValidation)
				}
			}
			if cmd.Flags().Changed("assignee") {
				edited.Assignee, _ = cmd.Flags().GetString("assignee")
			}
		case interactive(cmd):
			status, priority := string(edited.Status), string(edited.Priority)
			form := issueForm(&edited.Title, &edited.Description, &status, &priority, &edited.Assignee)
			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					w.Info("Cancelled.")
					return nil
				}
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
			edited.Status, edited.Priority = model.Status(status), model.Priority(priority)
		default:
			return cmdErr(errors.New("no changes given, pass at least one of --title, --description, --status, --priority, --assignee"), output.ErrValidation)
		}

		if err := v.SaveEdit(cmd.Context(), edited); err != nil {
			return domainErr(err)
		}

		saved := v.Issue()
		w.Success(saved, fmt.Sprintf("Updated %s: %s", render.ShortID(saved.ID), saved.Title))
		return nil
	},
}

func init() {
	editCmd.Flags().StringP("title", "t", "", "New title")
	editCmd.Flags().StringP("description", "d", "", "New description (use \"-\" for stdin)")
	editCmd.Flags().StringP("status", "s", "", "New status")
	editCmd.Flags().StringP("priority", "p", "", "New priority")
	editCmd.Flags().StringP("assignee", "a", "", "New assignee (empty to unassign)")
	issueCmd.AddCommand(editCmd)
}
