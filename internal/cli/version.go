package cli

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

type versionInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	BuildDate     string `json:"build_date"`
	GoVersion     string `json:"go_version"`
	SchemaVersion int    `json:"schema_version"`
}

func (v versionInfo) String() string {
	bold := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	details := fmt.Sprintf("(commit %s, built %s, %s, schema v%d)", v.Commit, v.BuildDate, v.GoVersion, v.SchemaVersion)
	return fmt.Sprintf("tracker %s %s", render.StyledText(v.Version, bold), render.StyledText(details, dim))
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print build and schema version",
	Annotations: map[string]string{"skipDB": "true"},
	Run: func(cmd *cobra.Command, args []string) {
		info := versionInfo{
			Version:       version,
			Commit:        commit,
			BuildDate:     buildDate,
			GoVersion:     runtime.Version(),
			SchemaVersion: db.CurrentSchemaVersion,
		}
		getWriter(cmd).Success(info, info.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
