package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the configuration",
	Long: `The configuration is read from <root>/.datagit/config.yaml, and may be overridden by
environment variables prefixed with DATAGIT_ (e.g. DATAGIT_PUSHTHREADS).`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _, err := loadConfig(datagitFlags.root.path)
		if err != nil {
			exitWith("config", err)
			return
		}
		for bucket, s3 := range cfg.Storage.S3H {
			if s3.SecretAccessKey != "" {
				s3.SecretAccessKey = "********"
				cfg.Storage.S3H[bucket] = s3
			}
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			exitWith("config", err)
			return
		}
		_, _ = stdout.Write(data)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
