package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/intake-cli/internal/tui"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Open the interactive review queue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		return tui.Run(ctx, env.Queue(), cfg.Review.ListLimit)
	},
}

func init() {
	rootCmd.AddCommand(queueCmd)
}
