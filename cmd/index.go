package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"scout/internal/index"
	"scout/internal/walker"
)

var flagWorkers int

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Rebuild the search index for a codebase",
	Long: `Index performs a full rebuild of the persisted index for the given
directory (default: the working directory). There is no incremental path;
every run replaces the whole collection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args, 0)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}
		if flagWorkers > 0 {
			cfg.Index.Workers = flagWorkers
		}

		var mu sync.Mutex
		var bar *progressbar.ProgressBar
		progress := func(stage string, done, total int) {
			mu.Lock()
			defer mu.Unlock()
			if bar == nil {
				bar = progressbar.NewOptions(-1,
					progressbar.OptionSetDescription("Indexing"),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionShowBytes(false),
				)
			}
			bar.Set(done)
		}

		if err := walker.EnsureIgnoreFile(root); err != nil {
			fmt.Fprintf(os.Stderr, "scout: could not write .scoutignore: %v\n", err)
		}

		idx, err := openIndexer(root, cfg, progress)
		if err != nil {
			return err
		}
		defer idx.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Index.TimeoutSeconds)*time.Second)
		defer cancel()

		fmt.Printf("Indexing %s...\n", root)
		start := time.Now()

		stats, err := idx.Rebuild(ctx, root)
		if bar != nil {
			bar.Finish()
			fmt.Println()
		}
		printStats(stats, time.Since(start))
		return err
	},
}

func printStats(stats *index.Stats, elapsed time.Duration) {
	if stats == nil {
		return
	}
	fmt.Printf("Done in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Files:  %d total, %d indexed, %d skipped\n",
		stats.FilesTotal, stats.FilesIndexed, stats.FilesSkipped)
	fmt.Printf("  Chunks: %d\n", stats.ChunksTotal)
}

func init() {
	indexCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel workers (default: number of CPUs)")
	rootCmd.AddCommand(indexCmd)
}
