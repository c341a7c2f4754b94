package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <entity> <store> <key>...",
	Short: "Delete objects from a backend",
	Long: `Delete some objects from a backend, e.g. s3h://mybucket.

The local block store and the metadata are left untouched.`,
	Args: cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		e, err := newEnv(args[0])
		if err != nil {
			exitWith("delete", err)
			return
		}
		repo, err := e.repository()
		if err != nil {
			exitWith("delete", err)
			return
		}
		backend, err := repo.Backend(ctx, args[1])
		if err != nil {
			exitWith("delete", err)
			return
		}
		deleted, err := repo.DeleteRemote(ctx, backend, args[2:])
		for _, key := range deleted {
			infof("deleted %s", key)
		}
		if err != nil {
			exitWith("delete", err)
			return
		}
		successf("deleted %d objects from %s", len(deleted), backend)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
