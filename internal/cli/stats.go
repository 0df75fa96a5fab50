package cli

import (
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/render"
	"github.com/ALT-F4-LLC/tracker/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show issue counts by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		s, err := stats.New(getStore(cmd)).Aggregate(cmd.Context())
		if err != nil {
			return domainErr(err)
		}

		var message string
		if !w.JSONMode {
			message = render.RenderStats(s)
		}
		w.Success(s, message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
