package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push <entity> <spec>",
	Short: "Upload committed objects to the store of a spec",
	Long: `Upload all objects committed since the last successful push.

The backend is the store of the latest version of the spec, unless --store is given.
Exits with 1 when some objects could not be uploaded: they are kept for the next push.
Exits with 2 when there is nothing to push.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		e, err := newEnv(args[0])
		if err != nil {
			exitWith("push", err)
			return
		}
		repo, err := e.repository()
		if err != nil {
			exitWith("push", err)
			return
		}

		store := datagitFlags.push.store
		if store == "" {
			latest, err := e.metadata().Latest(args[1])
			if err != nil {
				exitWith("push", err)
				return
			}
			store = latest.Spec.Manifest.Store
		}
		res, err := repo.Push(ctx, store)
		for _, key := range res.Failed {
			infof("%s %s", color.RedString("failed"), key)
		}
		if err != nil {
			exitWith("push", err)
			return
		}
		successf("pushed %d objects to %s", len(res.Pushed), store)
	},
}

func init() {
	addStoreFlag(pushCmd)
	rootCmd.AddCommand(pushCmd)
}
