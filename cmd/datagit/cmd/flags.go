package cmd

import (
	"github.com/spf13/cobra"
)

type flagsT struct {
	root struct {
		path     string
		logLevel string
	}
	commit struct {
		message string
	}
	sample struct {
		kind  string
		value string
		seed  int64
	}
	push struct {
		store string
	}
}

var datagitFlags = flagsT{}

func addRootFlag(cmd *cobra.Command) string {
	root := "root"
	cmd.PersistentFlags().StringVar(&datagitFlags.root.path, root, ".", "The root directory of the repository")
	return root
}

func addLogLevelFlag(cmd *cobra.Command) string {
	logLevel := "loglevel"
	cmd.PersistentFlags().StringVar(&datagitFlags.root.logLevel, logLevel, "", "The logging level: debug, info, warn, error or none. Overrides the configuration")
	return logLevel
}

func addCommitMessageFlag(cmd *cobra.Command) string {
	message := "message"
	cmd.Flags().StringVarP(&datagitFlags.commit.message, message, "m", "", "The message describing the new version")
	return message
}

func addSampleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&datagitFlags.sample.kind, "sample-type", "", "The kind of sampling: group, random or range")
	cmd.Flags().StringVar(&datagitFlags.sample.value, "sampling", "", "The sampling directive: amount:groupSize, amount:frequency or start:stop:step")
	cmd.Flags().Int64Var(&datagitFlags.sample.seed, "seed", 0, "The seed of random samplings")
}

func addStoreFlag(cmd *cobra.Command) string {
	store := "store"
	cmd.Flags().StringVar(&datagitFlags.push.store, store, "", "The backend to push to (e.g. s3h://mybucket). Defaults to the store of the latest version of the spec")
	return store
}
