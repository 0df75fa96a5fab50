package cli

import (
	"fmt"
	"os"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/config"
	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

type configInfo struct {
	DBPath         string         `json:"db_path"`
	DBSizeBytes    int64          `json:"db_size_bytes"`
	SchemaVersion  int            `json:"schema_version"`
	ConfigPath     string         `json:"config_path"`
	TrackerPathEnv string         `json:"tracker_path_env"`
	TrackerPathSet bool           `json:"tracker_path_set"`
	Settings       map[string]any `json:"settings"`
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Display tracker configuration",
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		info := configInfo{
			DBPath:         cfg.DBPath,
			ConfigPath:     cfg.ConfigPath,
			TrackerPathEnv: os.Getenv("TRACKER_PATH"),
			TrackerPathSet: cfg.EnvVarSet,
			Settings:       make(map[string]any, len(config.Keys())),
		}
		for _, k := range config.Keys() {
			v, err := cfg.Get(k)
			if err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
			info.Settings[k] = v
		}

		exists, err := cfg.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking database: %w", err), output.ErrGeneral)
		}

		if !exists {
			w.Warn("No tracker database found. Run 'tracker init' to create one.")
			w.Success(info, formatConfigHuman(info, true))
			return nil
		}

		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrUnavailable)
		}
		defer conn.Close()

		info.SchemaVersion, err = db.SchemaVersion(conn)
		if err != nil {
			return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrUnavailable)
		}

		stat, err := os.Stat(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("reading database file: %w", err), output.ErrGeneral)
		}
		info.DBSizeBytes = stat.Size()

		w.Success(info, formatConfigHuman(info, false))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:         "get <key>",
	Short:       "Print the effective value of a setting",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		v, err := getCfg(cmd).Get(args[0])
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		w.Success(map[string]any{"key": args[0], "value": v}, fmt.Sprintf("%s = %v", args[0], v))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Write a setting to config.yaml",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{"skipDB": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		if err := os.MkdirAll(cfg.TrackerDir, 0o755); err != nil {
			return cmdErr(fmt.Errorf("creating directory: %w", err), output.ErrGeneral)
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		v, _ := cfg.Get(args[0])
		log := getLogger(cmd)
		log.Info().Str("key", args[0]).Interface("value", v).Msg("setting updated")
		w.Success(map[string]any{"key": args[0], "value": v}, fmt.Sprintf("Set %s = %v", args[0], v))
		return nil
	},
}

func formatEnvValue(val string) string {
	if val == "" {
		return "(not set)"
	}
	return val
}

func formatConfigHuman(info configInfo, notFound bool) string {
	if !render.ColorsEnabled() {
		return formatConfigPlain(info, notFound)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	var b strings.Builder
	b.WriteString(headerStyle.Render("Tracker Configuration") + "\n\n")

	indicator := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("●")
	dbPath := info.DBPath
	if notFound {
		indicator = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("●")
		dbPath += " (not found)"
	}
	fmt.Fprintf(&b, "  %s %s %s\n", keyStyle.Render("Database path:"), indicator, valStyle.Render(dbPath))

	if !notFound {
		fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render("Database size:"), valStyle.Render(humanize.IBytes(uint64(info.DBSizeBytes))))
		fmt.Fprintf(&b, "  %s %s\n", keyStyle.Render("Schema version:"), valStyle.Render(fmt.Sprintf("%d", info.SchemaVersion)))
	}
	fmt.Fprintf(&b, "  %s    %s\n", keyStyle.Render("Config file:"), valStyle.Render(info.ConfigPath))
	fmt.Fprintf(&b, "  %s   %s\n", keyStyle.Render("TRACKER_PATH:"), valStyle.Render(formatEnvValue(info.TrackerPathEnv)))

	b.WriteString("\n" + headerStyle.Render("Settings") + "\n")
	for _, k := range config.Keys() {
		fmt.Fprintf(&b, "  %s %v\n", keyStyle.Render(k+":"), info.Settings[k])
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatConfigPlain(info configInfo, notFound bool) string {
	dbPath := info.DBPath
	if notFound {
		dbPath = fmt.Sprintf("%s (not found)", info.DBPath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Database path:   %s\n", dbPath)
	if !notFound {
		fmt.Fprintf(&b, "Database size:   %s\n", humanize.IBytes(uint64(info.DBSizeBytes)))
		fmt.Fprintf(&b, "Schema version:  %d\n", info.SchemaVersion)
	}
	fmt.Fprintf(&b, "Config file:     %s\n", info.ConfigPath)
	fmt.Fprintf(&b, "TRACKER_PATH:    %s\n", formatEnvValue(info.TrackerPathEnv))
	for _, k := range config.Keys() {
		fmt.Fprintf(&b, "%s: %v\n", k, info.Settings[k])
	}

	return strings.TrimRight(b.String(), "\n")
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
