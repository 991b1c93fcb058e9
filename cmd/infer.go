package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"scout/internal/infer"
)

var inferCmd = &cobra.Command{
	Use:   "infer <query> [path]",
	Short: "Infer which files a request likely targets",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args, 1)
		if err != nil {
			return err
		}
		targets := infer.TargetFiles(args[0], root)
		if len(targets) == 0 {
			fmt.Println("No target files inferred.")
			return nil
		}
		for _, t := range targets {
			fmt.Println(t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inferCmd)
}
