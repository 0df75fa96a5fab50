package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/board"
	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

// boardColumn is a status column in the board JSON output.
type boardColumn struct {
	Status string        `json:"status"`
	Count  int           `json:"count"`
	Issues []model.Issue `json:"issues"`
}

type boardResult struct {
	Columns []boardColumn `json:"columns"`
	Total   int           `json:"total"`
}

func newBoardResult(b *board.Board) boardResult {
	res := boardResult{Total: b.Count()}
	for _, c := range b.Columns() {
		list := c.Issues
		if list == nil {
			list = []model.Issue{}
		}
		res.Columns = append(res.Columns, boardColumn{Status: string(c.Status), Count: len(list), Issues: list})
	}
	return res
}

func loadBoard(cmd *cobra.Command) (*board.Board, error) {
	b := board.New(getRepo(cmd), getLogger(cmd))
	if err := b.Load(cmd.Context()); err != nil {
		return nil, domainErr(err)
	}
	return b, nil
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show issues in Open, In Progress and Resolved columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		limit, _ := cmd.Flags().GetInt("limit")

		b, err := loadBoard(cmd)
		if err != nil {
			return err
		}

		var message string
		if !w.JSONMode {
			message = render.RenderBoard(b.Columns(), render.BoardOptions{MaxCards: limit})
		}
		w.Success(newBoardResult(b), message)
		return nil
	},
}

var boardMoveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move an issue to another column",
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
		id, err := resolveID(cmd, args[0])
		if err != nil {
			return err
		}

		b, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		if err := b.MoveIssue(cmd.Context(), id, status); err != nil {
			return domainErr(err)
		}

		var message string
		if !w.JSONMode {
			message = fmt.Sprintf("Moved %s to %s\n\n%s",
				render.ShortID(id), status,
				render.RenderBoard(b.Columns(), render.BoardOptions{}))
		}
		w.Success(newBoardResult(b), message)
		return nil
	},
}

func init() {
	boardCmd.Flags().IntP("limit", "l", 10, "Maximum cards per column (0 for all)")
	boardCmd.AddCommand(boardMoveCmd)
	rootCmd.AddCommand(boardCmd)
}
