package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scout/internal/retrieve"
)

var flagK int

var searchCmd = &cobra.Command{
	Use:   "search <query> [path]",
	Short: "Search the indexed codebase",
	Args:  cobra.RangeArgs(1, 2),
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

		idx, err := openIndexer(root, cfg, nil)
		if err != nil {
			return err
		}
		defer idx.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Retrieve.TimeoutSeconds)*time.Second)
		defer cancel()

		results := retrieve.Search(ctx, idx, query, root, flagK)
		if len(results) == 0 {
			fmt.Printf("No results for %q\n", query)
			return nil
		}

		for i, r := range results {
			if r.Matches > 0 {
				fmt.Printf("%d. %s (%d substring matches)\n", i+1, r.File, r.Matches)
				continue
			}
			label := r.Name
			if label == "" {
				label = r.Kind
			}
			fmt.Printf("%d. %s — %s %s (line %d)\n", i+1, r.File, r.Kind, label, r.StartLine)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&flagK, "k", 10, "number of results")
	rootCmd.AddCommand(searchCmd)
}
