package cmd

import (
	"github.com/fatih/color"
	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/spf13/cobra"
)

var fsckCmd = &cobra.Command{
	Use:   "fsck <entity>",
	Short: "Verify the integrity of the local block store",
	Long:  "Verify that every object of the local block store hashes to its key, and list corrupted objects",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(args[0])
		if err != nil {
			exitWith("fsck", err)
			return
		}
		repo, err := e.repository()
		if err != nil {
			exitWith("fsck", err)
			return
		}
		corrupted, err := repo.Fsck()
		if err != nil {
			exitWith("fsck", err)
			return
		}
		if len(corrupted) > 0 {
			for _, key := range corrupted {
				infof("%s %s", color.RedString("corrupted"), key)
			}
			exitWith("fsck", status.ErrConsistency.Detailf("%d corrupted objects", len(corrupted)))
			return
		}
		successf("block store is sane")
	},
}

func init() {
	rootCmd.AddCommand(fsckCmd)
}
