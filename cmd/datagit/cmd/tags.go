package cmd

import (
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:     "tags <entity>",
	Short:   "List the committed versions of an entity type",
	Aliases: []string{"log"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(args[0])
		if err != nil {
			exitWith("tags", err)
			return
		}
		tags, err := e.metadata().Tags()
		if err != nil {
			exitWith("tags", err)
			return
		}
		names := make([]string, 0, len(tags))
		for tag := range tags {
			names = append(names, tag)
		}
		sort.Strings(names)
		for _, tag := range names {
			entry := tags[tag]
			infof("%s\t%s\t%s", tag, color.HiBlackString(entry.Timestamp.Format(time.RFC3339)), entry.Message)
		}
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
