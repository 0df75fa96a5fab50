package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/detail"
	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

type showResult struct {
	Issue    model.Issue     `json:"issue"`
	Comments []model.Comment `json:"comments"`
}

// openDetail resolves ref and opens the detail view. A missing issue points
// the user back at the list.
func openDetail(cmd *cobra.Command, ref string) (*detail.View, error) {
	id, err := resolveID(cmd, ref)
	if err != nil {
		return nil, err
	}
	v, err := detail.Open(cmd.Context(), getRepo(cmd), getLogger(cmd), id)
	if err != nil {
		if errors.Is(err, detail.ErrRedirect) {
			return nil, cmdErr(fmt.Errorf("issue %s not found, see 'tracker issue list'", ref), output.ErrNotFound)
		}
		return nil, domainErr(err)
	}
	return v, nil
}

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show an issue with its comments",
	Aliases: []string{"view"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		v, err := openDetail(cmd, args[0])
		if err != nil {
			return err
		}

		result := showResult{Issue: v.Issue(), Comments: v.Comments()}
		if result.Comments == nil {
			result.Comments = []model.Comment{}
		}

		var message string
		if !w.JSONMode {
			message = render.RenderDetail(result.Issue, result.Comments)
		}
		w.Success(result, message)
		return nil
	},
}

func init() {
	issueCmd.AddCommand(showCmd)
}
