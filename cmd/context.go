package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scout/internal/retrieve"
)

var flagMaxChunks int

var contextCmd = &cobra.Command{
	Use:   "context <query> [path]",
	Short: "Retrieve relevant code context for a query",
	Long: `Context assembles a bounded text blob of codebase context for the
query: an inferred-target instruction block plus the nearest indexed chunks.
If the index is unavailable it degrades to the most recently modified files.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		root, err := resolveRoot(args, 1)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}
		if flagMaxChunks > 0 {
			cfg.Retrieve.MaxChunks = flagMaxChunks
		}

		idx, err := openIndexer(root, cfg, nil)
		if err != nil {
			return err
		}
		defer idx.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Retrieve.TimeoutSeconds)*time.Second)
		defer cancel()

		fmt.Println(retrieve.BuildContext(ctx, idx, query, root, cfg.Retrieve.MaxChunks))
		return nil
	},
}

func init() {
	contextCmd.Flags().IntVar(&flagMaxChunks, "k", 0, "maximum chunks to include (default from config)")
	rootCmd.AddCommand(contextCmd)
}
