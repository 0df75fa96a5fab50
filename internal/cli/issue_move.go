package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

var moveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Change the status of an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		if _, err := requireSession(cmd); err != nil {
			return err
		}

		status, err := model.ParseStatus(args[1])
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		v, err := openDetail(cmd, args[0])
		if err != nil {
			return err
		}

		issue := v.Issue()
		if issue.Status == status {
			if w.JSONMode {
				w.Success(issue, "")
			} else {
				w.Info("Issue %s is already %s", render.ShortID(issue.ID), status)
			}
			return nil
		}

		if err := v.ChangeStatus(cmd.Context(), status); err != nil {
			return domainErr(err)
		}

		w.Success(v.Issue(), fmt.Sprintf("Moved %s to %s", render.ShortID(issue.ID), status))
		return nil
	},
}

func init() {
	issueCmd.AddCommand(moveCmd)
}
