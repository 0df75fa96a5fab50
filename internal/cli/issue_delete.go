package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

type deleteResult struct {
	ID       string `json:"id"`
	Comments int    `json:"comments_deleted"`
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an issue and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		force, _ := cmd.Flags().GetBool("force")

		if _, err := requireSession(cmd); err != nil {
			return err
		}

		v, err := openDetail(cmd, args[0])
		if err != nil {
			return err
		}
		issue := v.Issue()

		if !force {
			if !interactive(cmd) {
				return cmdErr(fmt.Errorf("refusing to delete %s without confirmation: pass --force", render.ShortID(issue.ID)), output.ErrValidation)
			}

			var confirmed bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Delete %s %q and its %d comment(s)?", render.ShortID(issue.ID), issue.Title, len(v.Comments()))).
						Affirmative("Delete").
						Negative("Cancel").
						Value(&confirmed),
				),
			)
			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					w.Info("Cancelled.")
					return nil
				}
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
			if !confirmed {
				w.Info("Cancelled.")
				return nil
			}
		}

		if err := v.Delete(cmd.Context()); err != nil {
			return domainErr(err)
		}

		log := getLogger(cmd)
		log.Info().Str("issue", issue.ID).Int("comments", len(v.Comments())).Msg("issue deleted")
		w.Success(
			deleteResult{ID: issue.ID, Comments: len(v.Comments())},
			fmt.Sprintf("Deleted %s: %s", render.ShortID(issue.ID), issue.Title),
		)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
	issueCmd.AddCommand(deleteCmd)
}
