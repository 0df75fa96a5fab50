package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ALT-F4-LLC/tracker/internal/auth"
	"github.com/ALT-F4-LLC/tracker/internal/config"
	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/logging"
	"github.com/ALT-F4-LLC/tracker/internal/output"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type contextKey string

const (
	dbKey    contextKey = "db"
	storeKey contextKey = "store"
	cfgKey   contextKey = "cfg"
	logKey   contextKey = "log"
)

// CmdError wraps an error with a machine-readable error code for structured output.
type CmdError struct {
	Err  error
	Code output.ErrorCode
}

func (e *CmdError) Error() string { return e.Err.Error() }

func (e *CmdError) Unwrap() error { return e.Err }

func cmdErr(err error, code output.ErrorCode) *CmdError {
	return &CmdError{Err: err, Code: code}
}

// domainErr classifies an error returned by the domain packages.
func domainErr(err error) *CmdError {
	return cmdErr(err, output.Classify(err))
}

var rootCmd = &cobra.Command{
	Use:     "tracker",
	Short:   "Issue tracker with a dashboard, list view and status board",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve()
		if err != nil {
			return cmdErr(fmt.Errorf("loading configuration: %w", err), output.ErrValidation)
		}

		log := logging.New(cfg.Log).With().Str("cmd", cmd.CommandPath()).Logger()
		ctx := context.WithValue(cmd.Context(), cfgKey, cfg)
		ctx = context.WithValue(ctx, logKey, log)

		if _, ok := cmd.Annotations["skipDB"]; ok {
			cmd.SetContext(ctx)
			return nil
		}

		if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
			return cmdErr(
				fmt.Errorf("no tracker database found, run 'tracker init' to create one"),
				output.ErrNotFound,
			)
		}

		conn, store, err := db.OpenStore(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrUnavailable)
		}
		log.Debug().Str("path", cfg.DBPath).Msg("database opened")

		ctx = context.WithValue(ctx, dbKey, conn)
		cmd.SetContext(context.WithValue(ctx, storeKey, store))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		conn, ok := cmd.Context().Value(dbKey).(*sql.DB)
		if ok && conn != nil {
			return conn.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func getWriter(cmd *cobra.Command) *output.Writer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	w := output.New(jsonMode, quietMode)
	w.Stdout = cmd.OutOrStdout()
	w.Stderr = cmd.ErrOrStderr()
	return w
}

func getCfg(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey).(*config.Config)
	return cfg
}

func getLogger(cmd *cobra.Command) zerolog.Logger {
	if log, ok := cmd.Context().Value(logKey).(zerolog.Logger); ok {
		return log
	}
	return logging.New(config.Log{Level: "info", Env: "dev"})
}

func getStore(cmd *cobra.Command) *db.Documents {
	store, _ := cmd.Context().Value(storeKey).(*db.Documents)
	return store
}

func getRepo(cmd *cobra.Command) *issues.Repository {
	return issues.New(getStore(cmd))
}

func getAuth(cmd *cobra.Command) *auth.Local {
	return auth.NewLocal(getStore(cmd), getCfg(cmd).SessionPath)
}

// requireSession returns the signed-in user or an ErrAuth command error.
func requireSession(cmd *cobra.Command) (auth.Session, error) {
	s, err := getAuth(cmd).CurrentUser(cmd.Context())
	if err != nil {
		if errors.Is(err, auth.ErrNotSignedIn) {
			return auth.Session{}, cmdErr(fmt.Errorf("%w, run 'tracker login' first", err), output.ErrAuth)
		}
		return auth.Session{}, domainErr(err)
	}
	return s, nil
}

// resolveID expands a unique ID prefix to the full issue ID.
func resolveID(cmd *cobra.Command, ref string) (string, error) {
	id, err := getRepo(cmd).Resolve(cmd.Context(), ref)
	if err != nil {
		if errors.Is(err, issues.ErrAmbiguousID) {
			return "", cmdErr(err, output.ErrValidation)
		}
		if errors.Is(err, db.ErrNotFound) {
			return "", cmdErr(fmt.Errorf("issue %s not found", ref), output.ErrNotFound)
		}
		return "", domainErr(err)
	}
	return id, nil
}

// interactive reports whether forms may be shown: human mode on a terminal.
func interactive(cmd *cobra.Command) bool {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return !jsonMode && term.IsTerminal(int(os.Stdin.Fd()))
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	return execute(context.Background(), os.Args[1:])
}

func execute(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	if cmd == nil {
		cmd = rootCmd
	}
	w := getWriter(cmd)
	if cmd.Context() == nil {
		cmd.SetContext(ctx)
	}

	code := output.ErrGeneral
	var ce *CmdError
	if errors.As(err, &ce) {
		code = ce.Code
		err = ce.Err
	}
	if code == output.ErrUnavailable {
		log := getLogger(cmd)
		log.Error().Err(err).Msg("store operation failed")
	}
	return w.Error(output.PublicError(err, code), code)
}
