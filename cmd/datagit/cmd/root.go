// Copyright © 2018 One Concern

package cmd

import (
	"fmt"

	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datagit",
	Short: "Datagit versions datasets, labels and models",
	Long: `Datagit versions datasets, labels and models with a git like interface.

Files are split into content-addressed chunks kept in a local block store, then pushed to
and fetched from object storage (S3, GCS or a shared directory). Versions are recorded as
manifests mapping content keys to workspace paths, identified by tags.

Typical workflow:
  datagit add dataset cats
  datagit commit dataset cats -m "more cats"
  datagit push dataset cats
  datagit checkout dataset vision__cats__2
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		osExit(int(status.ConfigError))
	}
}

func init() {
	addRootFlag(rootCmd)
	addLogLevelFlag(rootCmd)
}
