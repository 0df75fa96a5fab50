package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/config"
	"github.com/ALT-F4-LLC/tracker/internal/dashboard"
	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

type dashboardResult struct {
	Stats      model.Stats   `json:"stats"`
	Recent     []model.Issue `json:"recent"`
	HasMore    bool          `json:"has_more"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// dashboardOptions translates settings into dashboard options. A configured
// max_attempts of zero disables automatic retries.
func dashboardOptions(cfg *config.Config) dashboard.Options {
	retries := cfg.Retry.MaxAttempts
	if retries == 0 {
		retries = -1
	}
	return dashboard.Options{
		PageSize:   cfg.PageSize,
		MaxRetries: retries,
		BaseDelay:  cfg.Retry.BaseDelay,
	}
}

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Short:   "Show issue counters and the most recent issues",
	Aliases: []string{"dash"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		ctx := cmd.Context()

		pages, _ := cmd.Flags().GetInt("pages")
		if pages < 1 {
			return cmdErr(fmt.Errorf("--pages must be at least 1, got %d", pages), output.ErrValidation)
		}

		d := dashboard.New(getStore(cmd), getLogger(cmd), dashboardOptions(getCfg(cmd)))
		if err := d.Load(ctx); err != nil {
			return domainErr(err)
		}
		for i := 1; i < pages && d.HasMore(); i++ {
			if err := d.LoadMore(ctx); err != nil {
				return domainErr(err)
			}
		}

		result := dashboardResult{
			Stats:   d.Stats(),
			Recent:  d.Recent(),
			HasMore: d.HasMore(),
		}
		if result.HasMore {
			token, err := d.Cursor().Token()
			if err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
			result.NextCursor = token
		}

		var message string
		if !w.JSONMode {
			message = render.RenderDashboard(result.Stats, result.Recent, result.HasMore)
		}
		w.Success(result, message)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().IntP("pages", "n", 1, "Number of pages of recent issues to load")
	rootCmd.AddCommand(dashboardCmd)
}
