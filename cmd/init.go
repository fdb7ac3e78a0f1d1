package cmd

import (
	"github.com/josephlewis42/cronsh/core/config"
	"github.com/josephlewis42/cronsh/core/logger"
	"github.com/spf13/cobra"
)

// initCmd writes the default configuration.
var initCmd = &cobra.Command{
	Use:   "init [DIR]",
	Short: "Write the default configuration to DIR, the current directory by default.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		log := logger.New(logger.NewTextRecorder(cmd.ErrOrStderr()), logger.LevelNotice)

		_, err := config.Initialize(dir, log)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
