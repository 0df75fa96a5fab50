package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

var commentListCmd = &cobra.Command{
	Use:     "list <id>",
	Short:   "List comments on an issue, oldest first",
	Aliases: []string{"ls"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		v, err := openDetail(cmd, args[0])
		if err != nil {
			return err
		}

		comments := v.Comments()
		if comments == nil {
			comments = []model.Comment{}
		}
		if w.JSONMode {
			w.Success(comments, "")
			return nil
		}

		if len(comments) == 0 {
			short := render.ShortID(v.Issue().ID)
			w.Success(nil, render.EmptyState(
				fmt.Sprintf("No comments on %s", short),
				fmt.Sprintf("Add one with: tracker issue comment add %s -m \"...\"", short),
				w.QuietMode,
			))
			return nil
		}

		w.Success(comments, render.RenderCommentList(comments))
		return nil
	},
}

func init() {
	commentCmd.AddCommand(commentListCmd)
}
