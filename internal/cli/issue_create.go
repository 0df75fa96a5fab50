package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/output"
	"github.com/ALT-F4-LLC/tracker/internal/render"
)

func statusOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(model.Statuses))
	for _, s := range model.Statuses {
		opts = append(opts, huh.NewOption(string(s), string(s)))
	}
	return opts
}

func priorityOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(model.Priorities))
	for _, p := range model.Priorities {
		opts = append(opts, huh.NewOption(string(p), string(p)))
	}
	return opts
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// issueForm edits the user-editable fields of an issue in place.
func issueForm(title, description, status, priority, assignee *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(title).
				Validate(required("title")),
			huh.NewText().
				Title("Description").
				Value(description).
				Validate(required("description")),
			huh.NewSelect[string]().
				Title("Status").
				Options(statusOptions()...).
				Value(status),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorityOptions()...).
				Value(priority),
			huh.NewInput().
				Title("Assignee").
				Placeholder(model.Unassigned).
				Value(assignee),
		),
	)
}

// readDescription replaces "-" with the contents of stdin.
func readDescription(description string) (string, error) {
	if description != "-" {
		return description, nil
	}
	const maxStdinSize = 1 << 20 // 1 MiB
	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxStdinSize))
	if err != nil {
		return "", fmt.Errorf("reading description from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new issue",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		session, err := requireSession(cmd)
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		statusFlag, _ := cmd.Flags().GetString("status")
		priorityFlag, _ := cmd.Flags().GetString("priority")
		assignee, _ := cmd.Flags().GetString("assignee")

		status, err := model.ParseStatus(statusFlag)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		priority, err := model.ParsePriority(priorityFlag)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		// Without a title, ask for everything on a terminal. The selects
		// start on the flag values.
		if title == "" && interactive(cmd) {
			statusStr, priorityStr := string(status), string(priority)
			if err := issueForm(&title, &description, &statusStr, &priorityStr, &assignee).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					w.Info("Cancelled.")
					return nil
				}
				return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
			}
			status, priority = model.Status(statusStr), model.Priority(priorityStr)
		}

		description, err = readDescription(description)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		created, err := getRepo(cmd).Create(cmd.Context(), model.NewIssue{
			Title:       title,
			Description: description,
			Status:      status,
			Priority:    priority,
			Assignee:    assignee,
		}, session.UserID)
		if err != nil {
			return domainErr(err)
		}

		log := getLogger(cmd)
		log.Info().Str("issue", created.ID).Str("user", session.UserID).Msg("issue created")
		w.Success(created, fmt.Sprintf("Created %s: %s", render.ShortID(created.ID), created.Title))
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("title", "t", "", "Issue title")
	createCmd.Flags().StringP("description", "d", "", "Issue description (use \"-\" for stdin)")
	createCmd.Flags().StringP("status", "s", string(model.StatusOpen), "Issue status")
	createCmd.Flags().StringP("priority", "p", string(model.PriorityMedium), "Issue priority")
	createCmd.Flags().StringP("assignee", "a", "", "Issue assignee")
	issueCmd.AddCommand(createCmd)
}
