package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <entity> <tag>",
	Short: "Download the objects of a version",
	Long: `Download the objects of a version into the local block store, without touching the workspace.

A sampling directive restricts the download to a reproducible subset of the files:
  --sample-type group  --sampling amount:groupSize --seed n
  --sample-type random --sampling amount:frequency --seed n
  --sample-type range  --sampling start:stop:step`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		e, err := newEnv(args[0])
		if err != nil {
			exitWith("fetch", err)
			return
		}
		s, err := sampler()
		if err != nil {
			exitWith("fetch", err)
			return
		}
		version, err := e.metadata().Resolve(args[1])
		if err != nil {
			exitWith("fetch", err)
			return
		}
		repo, err := e.repository()
		if err != nil {
			exitWith("fetch", err)
			return
		}
		res, err := repo.Fetch(ctx, version.Manifest, version.Spec.Manifest.Store, s)
		if err != nil {
			exitWith("fetch", err)
			return
		}
		successf("fetched %s: %d files, %d objects downloaded", version.Tag, res.Manifest.FileCount(), res.Links+res.Chunks)
	},
}

func init() {
	addSampleFlags(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}
