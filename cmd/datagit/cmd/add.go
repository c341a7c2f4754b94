package cmd

import (
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <entity> <spec>",
	Short: "Stage the workspace of a spec",
	Long: `Stage the files of the workspace <root>/<entity>/<spec> for the next commit.

New and changed files are split into chunks in the staging area. Files unchanged since they
were last staged are skipped. The spec file <spec>.spec and README.md are staged as metadata.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(args[0])
		if err != nil {
			exitWith("add", err)
			return
		}
		idx, err := e.index(args[1])
		if err != nil {
			exitWith("add", err)
			return
		}
		summary, err := idx.Add(e.layout.WorkspaceDir(args[1]))
		if err != nil {
			exitWith("add", err)
			return
		}
		successf("staged %s: %d added, %d changed, %d deleted, %d untouched",
			args[1], summary.Added, summary.Changed, summary.Deleted, summary.Untouched)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
