package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/listview"
	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

type listResult struct {
	Issues []model.Issue   `json:"issues"`
	Total  int             `json:"total"`
	Params listview.Params `json:"params"`
}

// parseListParams builds list parameters from flags. --sort accepts
// "field" or "field:dir"; a bare field toggles from the default order the
// same way selecting a column header does.
func parseListParams(cmd *cobra.Command) (listview.Params, error) {
	statusFlag, _ := cmd.Flags().GetString("status")
	sortFlag, _ := cmd.Flags().GetString("sort")
	dirFlag, _ := cmd.Flags().GetString("dir")
	search, _ := cmd.Flags().GetString("search")

	p := listview.DefaultParams()

	status, err := listview.ParseStatusFilter(statusFlag)
	if err != nil {
		return p, err
	}
	p.StatusFilter = status
	p.SearchTerm = strings.TrimSpace(search)

	if sortFlag != "" {
		field, dir, hasDir := strings.Cut(sortFlag, ":")
		sf, err := listview.ParseSortField(field)
		if err != nil {
			return p, err
		}
		p = p.Toggle(sf)
		if hasDir {
			dirFlag = dir
		}
	}
	if dirFlag != "" {
		d, err := db.ParseDirection(dirFlag)
		if err != nil {
			return p, err
		}
		p.SortDirection = d
	}
	return p, nil
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List issues with a status filter, sort order and search term",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		limit, _ := cmd.Flags().GetInt("limit")

		params, err := parseListParams(cmd)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		m := listview.New(getStore(cmd), getLogger(cmd))
		if err := m.SetParams(cmd.Context(), params); err != nil {
			return domainErr(err)
		}

		list := m.Issues()
		result := listResult{Issues: list, Total: len(list), Params: m.Params()}
		if limit > 0 && len(list) > limit {
			result.Issues = list[:limit]
		}

		var message string
		if !w.JSONMode {
			message = render.RenderTable(result.Issues)
			if len(result.Issues) < result.Total {
				message += fmt.Sprintf("\nShowing %d of %d issues", len(result.Issues), result.Total)
			}
		}
		w.Success(result, message)
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", listview.All, "Filter by status (all, open, in-progress, resolved)")
	listCmd.Flags().String("sort", "", "Sort by field[:asc|desc] (title, status, priority, assignee, created)")
	listCmd.Flags().String("dir", "", "Sort direction (asc or desc)")
	listCmd.Flags().StringP("search", "S", "", "Case-insensitive search in title and description")
	listCmd.Flags().IntP("limit", "l", 0, "Maximum number of issues to show (0 for all)")
	issueCmd.AddCommand(listCmd)
}
