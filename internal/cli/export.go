package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/tracker/internal/db"
	"github.com/ALT-F4-LLC/tracker/internal/filter"
	"github.com/ALT-F4-LLC/tracker/internal/issues"
	"github.com/ALT-F4-LLC/tracker/internal/model"
	"github.com/ALT-F4-LLC/tracker/internal/output"
)

const exportVersion = 1

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export issues and comments to JSON, CSV, or Markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo := getRepo(cmd)

		format, _ := cmd.Flags().GetString("format")
		filePath, _ := cmd.Flags().GetString("file")
		statusFlags, _ := cmd.Flags().GetStringSlice("status")

		switch format {
		case "json", "csv", "markdown":
		default:
			return cmdErr(
				fmt.Errorf("invalid format %q: must be one of json, csv, markdown", format),
				output.ErrValidation,
			)
		}

		statuses := make([]model.Status, 0, len(statusFlags))
		for _, s := range statusFlags {
			st, err := model.ParseStatus(s)
			if err != nil {
				return cmdErr(err, output.ErrValidation)
			}
			statuses = append(statuses, st)
		}
		statusSet := filter.ToStatusSet(statuses)

		all, err := repo.List(ctx, db.Query{
			OrderBy: &db.Order{Field: issues.FieldCreatedAt, Direction: db.Asc},
		})
		if err != nil {
			return domainErr(err)
		}

		data := model.ExportData{
			Version:    exportVersion,
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
			Issues:     []*model.Issue{},
			Comments:   []*model.Comment{},
		}
		for _, issue := range all {
			if !filter.HasStatus(issue, statusSet) {
				continue
			}
			comments, err := repo.Comments(ctx, issue.ID)
			if err != nil {
				return domainErr(err)
			}
			data.Issues = append(data.Issues, &issue)
			for _, c := range comments {
				data.Comments = append(data.Comments, &c)
			}
		}

		var raw string
		switch format {
		case "json":
			raw, err = renderExportJSON(data)
		case "csv":
			raw, err = renderExportCSV(data.Issues)
		case "markdown":
			raw = renderExportMarkdown(data)
		}
		if err != nil {
			return cmdErr(fmt.Errorf("rendering export: %w", err), output.ErrGeneral)
		}

		if filePath != "" {
			if err := os.WriteFile(filePath, []byte(raw), 0o644); err != nil {
				return cmdErr(fmt.Errorf("writing file: %w", err), output.ErrGeneral)
			}
			getWriter(cmd).Info("Exported %d issue(s) to %s", len(data.Issues), filePath)
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), raw)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "o", "json", "Export format: json, csv, markdown")
	exportCmd.Flags().StringP("file", "f", "", "Output file path (default: stdout)")
	exportCmd.Flags().StringSliceP("status", "s", nil, "Filter by status (repeatable)")
	rootCmd.AddCommand(exportCmd)
}

func renderExportJSON(data model.ExportData) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderExportCSV(list []*model.Issue) (string, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write([]string{"id", "title", "status", "priority", "assignee", "created_by", "created_at", "updated_at", "description"}); err != nil {
		return "", err
	}
	for _, i := range list {
		if err := cw.Write([]string{
			i.ID,
			i.Title,
			string(i.Status),
			string(i.Priority),
			i.Assignee,
			i.CreatedBy,
			i.CreatedAt.UTC().Format(time.RFC3339),
			i.UpdatedAt.UTC().Format(time.RFC3339),
			i.Description,
		}); err != nil {
			return "", err
		}
	}
	cw.Flush()
	return buf.String(), cw.Error()
}

func renderExportMarkdown(data model.ExportData) string {
	byIssue := make(map[string][]*model.Comment)
	for _, c := range data.Comments {
		byIssue[c.IssueID] = append(byIssue[c.IssueID], c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Issues\n\nExported %s, %d issue(s).\n", data.ExportedAt, len(data.Issues))
	for _, i := range data.Issues {
		fmt.Fprintf(&b, "\n## %s\n\n", i.Title)
		fmt.Fprintf(&b, "- **ID:** `%s`\n", i.ID)
		fmt.Fprintf(&b, "- **Status:** %s\n", i.Status)
		fmt.Fprintf(&b, "- **Priority:** %s\n", i.Priority)
		fmt.Fprintf(&b, "- **Assignee:** %s\n", i.AssigneeOrUnassigned())
		fmt.Fprintf(&b, "- **Created:** %s\n\n", i.CreatedAt.UTC().Format(time.RFC3339))
		b.WriteString(i.Description + "\n")

		if cs := byIssue[i.ID]; len(cs) > 0 {
			b.WriteString("\n### Comments\n")
			for _, c := range cs {
				fmt.Fprintf(&b, "\n**%s** (%s)\n\n%s\n", c.AuthorOrAnonymous(), c.CreatedAt.UTC().Format(time.RFC3339), c.Content)
			}
		}
	}
	return b.String()
}
