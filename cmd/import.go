package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/service"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import ingestion records from a JSON or YAML file",
	Long:  "Reads a list of ingestion records (or an object with a records list) and inserts them as pending review. Records whose id already exists are skipped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read import file %s", args[0])
		}
		recs, err := service.ParseImport(data)
		if err != nil {
			return err
		}

		env, err := initApp(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		inserted, err := env.Service.Import(ctx, recs)
		if err != nil {
			return eris.Wrap(err, "import records")
		}

		zap.L().Info("import complete",
			zap.String("file", args[0]),
			zap.Int("read", len(recs)),
			zap.Int("inserted", inserted),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d records\n", inserted, len(recs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
