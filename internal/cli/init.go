package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

type initResult struct {
	Path          string `json:"path"`
	DBPath        string `json:"db_path"`
	SchemaVersion int    `json:"schema_version"`
	Created       bool   `json:"created"`
}

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Initialize a new tracker database",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)
		log := getLogger(cmd)

		exists, err := cfg.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking database: %w", err), output.ErrGeneral)
		}

		if !exists {
			if err := os.MkdirAll(cfg.TrackerDir, 0o755); err != nil {
				return cmdErr(fmt.Errorf("creating directory: %w", err), output.ErrGeneral)
			}
		}

		// OpenStore creates the schema on a fresh file and migrates an old one.
		conn, _, err := db.OpenStore(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("initializing database: %w", err), output.ErrUnavailable)
		}
		defer conn.Close()

		schemaVersion, err := db.SchemaVersion(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrUnavailable)
		}

		result := initResult{
			Path:          cfg.TrackerDir,
			DBPath:        cfg.DBPath,
			SchemaVersion: schemaVersion,
			Created:       !exists,
		}

		if exists {
			w.Warn("Database already exists at %s", cfg.DBPath)
			msg := render.StyledText("Database already initialized", lipgloss.NewStyle().Foreground(lipgloss.Color("3")))
			w.Success(result, msg)
			return nil
		}

		log.Info().Str("path", cfg.DBPath).Int("schema_version", schemaVersion).Msg("database created")

		successMsg := render.StyledText("Initialized tracker database", lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")))
		w.Success(result, successMsg)

		w.Info("Database created at %s", cfg.DBPath)
		w.Info("Next: create an account with 'tracker signup'")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
