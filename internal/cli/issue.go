package cli

import "github.com/spf13/cobra"

// issueCmd groups the single-issue commands. Issues are addressed by full
// ID or by any unique ID prefix, such as the 8 characters shown in lists.
var issueCmd = &cobra.Command{
	Use:     "issue",
	Short:   "Create, inspect and change issues",
	Long:    "Create, inspect and change issues. An <id> argument accepts the full issue ID or any unique prefix of it.",
	Aliases: []string{"i", "issues"},
}

func init() {
	rootCmd.AddCommand(issueCmd)
}
