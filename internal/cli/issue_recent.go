package cli

import (
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/paginate"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

type recentResult struct {
	Items      []model.Issue `json:"items"`
	HasMore    bool          `json:"has_more"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show one page of issues, newest first",
	Long: `Show one page of issues, newest first.

Pass the next_cursor printed by 'tracker dashboard' or a previous
'tracker issue recent' to --cursor to continue where it stopped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		token, _ := cmd.Flags().GetString("cursor")
		cursor, err := db.ParseCursor(token)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		page, err := paginate.New(getStore(cmd), getCfg(cmd).PageSize).FetchPage(cmd.Context(), cursor)
		if err != nil {
			return domainErr(err)
		}

		result := recentResult{Items: page.Items, HasMore: page.HasMore}
		if result.Items == nil {
			result.Items = []model.Issue{}
		}
		if page.HasMore && page.NextCursor != nil {
			if result.NextCursor, err = page.NextCursor.Token(); err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
		}

		if w.JSONMode {
			w.Success(result, "")
			return nil
		}
		if len(result.Items) == 0 {
			w.Success(result, render.EmptyState("No more issues.", "", w.QuietMode))
			return nil
		}
		message := render.RenderTable(result.Items)
		if result.HasMore {
			message += "\nNext page: tracker issue recent --cursor " + result.NextCursor
		}
		w.Success(result, message)
		return nil
	},
}

func init() {
	recentCmd.Flags().String("cursor", "", "Continue after the page that produced this cursor")
	issueCmd.AddCommand(recentCmd)
}
