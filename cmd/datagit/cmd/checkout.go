package cmd

import (
	"context"

	"github.com/oneconcern/datagit/pkg/core"
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <entity> <tag>",
	Short: "Materialize a version in its workspace",
	Long: `Fetch the objects of a version, then materialize its files in the workspace <root>/<entity>/<name>.

Files of the workspace which are not part of the version are removed, except README.md and spec files.
Sampling flags are the same as for fetch.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		e, err := newEnv(args[0])
		if err != nil {
			exitWith("checkout", err)
			return
		}
		s, err := sampler()
		if err != nil {
			exitWith("checkout", err)
			return
		}
		version, err := e.metadata().Resolve(args[1])
		if err != nil {
			exitWith("checkout", err)
			return
		}
		repo, err := e.repository()
		if err != nil {
			exitWith("checkout", err)
			return
		}
		fetched, err := repo.Fetch(ctx, version.Manifest, version.Spec.Manifest.Store, s)
		if err != nil {
			exitWith("checkout", err)
			return
		}

		workspace := e.layout.WorkspaceDir(version.Spec.Name)
		res, err := repo.Get(ctx, fetched.Manifest, workspace, core.WithCompanions(version.Dir))
		if err != nil {
			exitWith("checkout", err)
			return
		}
		successf("checked out %s in %s: %d files, %d removed", version.Tag, workspace, res.Files, len(res.Pruned))
	},
}

func init() {
	addSampleFlags(checkoutCmd)
	rootCmd.AddCommand(checkoutCmd)
}
