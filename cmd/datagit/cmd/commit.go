package cmd

import (
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit <entity> <spec>",
	Short: "Commit the staged files of a spec as a new version",
	Long: `Commit the staged files of a spec as a new version, tagged categories__name__version.

The version number is read from the staged spec file: it must not be committed already.
Staged chunks are moved to the local block store, to be pushed.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(args[0])
		if err != nil {
			exitWith("commit", err)
			return
		}
		idx, err := e.index(args[1])
		if err != nil {
			exitWith("commit", err)
			return
		}
		repo, err := e.repository()
		if err != nil {
			exitWith("commit", err)
			return
		}
		meta := e.metadata()

		c, err := meta.Prepare(idx, repo.Sizer(idx))
		if err != nil {
			exitWith("commit", err)
			return
		}
		if err = repo.CommitIndex(idx); err != nil {
			exitWith("commit", err)
			return
		}
		if err = meta.Save(c, datagitFlags.commit.message); err != nil {
			exitWith("commit", err)
			return
		}
		successf("committed %s", c.Tag)
		infof("%d files (%s): %d added, %d updated, %d deleted",
			c.Stats.TotalFiles, units.HumanSize(float64(c.Stats.TotalSize)), c.Stats.Added, c.Stats.Updated, c.Stats.Deleted)
	},
}

func init() {
	addCommitMessageFlag(commitCmd)
	rootCmd.AddCommand(commitCmd)
}
