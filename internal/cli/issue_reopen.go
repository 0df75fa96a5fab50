package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

var reopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Reopen a resolved issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(cmd, args[0], model.StatusResolved, model.StatusOpen, "Reopened")
	},
}

var resolveCmd = &cobra.Command{
	Use:     "resolve <id>",
	Short:   "Mark an issue as resolved",
	Aliases: []string{"close"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(cmd, args[0], "", model.StatusResolved, "Resolved")
	},
}

// setStatus moves the issue to target. When from is set, issues in any
// other status are left alone and reported.
func setStatus(cmd *cobra.Command, ref string, from, target model.Status, verb string) error {
	w := getWriter(cmd)

	if _, err := requireSession(cmd); err != nil {
		return err
	}

	v, err := openDetail(cmd, ref)
	if err != nil {
		return err
	}

	issue := v.Issue()
	if issue.Status == target || (from != "" && issue.Status != from) {
		if w.JSONMode {
			w.Success(issue, "")
		} else {
			w.Info("Issue %s is %s", render.ShortID(issue.ID), issue.Status)
		}
		return nil
	}

	if err := v.ChangeStatus(cmd.Context(), target); err != nil {
		return domainErr(err)
	}

	w.Success(v.Issue(), fmt.Sprintf("%s %s: %s", verb, render.ShortID(issue.ID), issue.Title))
	return nil
}

func init() {
	issueCmd.AddCommand(reopenCmd)
	issueCmd.AddCommand(resolveCmd)
}
