package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/config"
	"github.com/ALT-F4-LLC/tracker/internal/output"
)

// credentialsForm asks for whichever of email and password are still empty.
// The display name input is only added when name is non-nil.
func credentialsForm(email, password, name *string) *huh.Form {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(email).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("email is required")
				}
				return nil
			}))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password))
	}
	if name != nil {
		fields = append(fields, huh.NewInput().
			Title("Display name").
			Value(name))
	}
	return huh.NewForm(huh.NewGroup(fields...))
}

// readCredentials fills email and password from flags, falling back to an
// interactive form on a terminal.
func readCredentials(cmd *cobra.Command, name *string) (string, string, bool, error) {
	w := getWriter(cmd)
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if email != "" && password != "" {
		return email, password, true, nil
	}
	if !interactive(cmd) {
		return "", "", false, cmdErr(errors.New("--email and --password are required when not running interactively"), output.ErrValidation)
	}
	if err := credentialsForm(&email, &password, name).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			w.Info("Cancelled.")
			return "", "", false, nil
		}
		return "", "", false, cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
	}
	return email, password, true, nil
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		name, _ := cmd.Flags().GetString("name")
		if name == "" && !cmd.Flags().Changed("name") {
			name = config.DefaultDisplayName()
		}

		email, password, ok, err := readCredentials(cmd, &name)
		if err != nil || !ok {
			return err
		}

		s, err := getAuth(cmd).SignUp(cmd.Context(), email, password, name)
		if err != nil {
			return domainErr(err)
		}
		log := getLogger(cmd)
		log.Info().Str("user", s.UserID).Msg("account created")
		w.Success(s, fmt.Sprintf("Signed up and signed in as %s", s.Name()))
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		email, password, ok, err := readCredentials(cmd, nil)
		if err != nil || !ok {
			return err
		}

		s, err := getAuth(cmd).SignIn(cmd.Context(), email, password)
		if err != nil {
			return domainErr(err)
		}
		w.Success(s, fmt.Sprintf("Signed in as %s", s.Name()))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		if err := getAuth(cmd).SignOut(cmd.Context()); err != nil {
			return cmdErr(fmt.Errorf("signing out: %w", err), output.ErrGeneral)
		}
		w.Success(nil, "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		s, err := requireSession(cmd)
		if err != nil {
			return err
		}
		w.Success(s, fmt.Sprintf("%s <%s>", s.Name(), s.Email))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringP("email", "e", "", "Account email")
		c.Flags().String("password", "", "Account password (prompted when omitted)")
	}
	signupCmd.Flags().StringP("name", "n", "", "Display name (defaults to git user.name)")

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
