package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"scout/internal/chunker"
	"scout/internal/chunker/languages"
	"scout/internal/deps"
)

var depsCmd = &cobra.Command{
	Use:   "deps [path]",
	Short: "Print the local import dependency graph",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args, 0)
		if err != nil {
			return err
		}

		reg := chunker.NewRegistry()
		languages.RegisterGo(reg)
		languages.RegisterJavaScript(reg)
		languages.RegisterTypeScript(reg)
		languages.RegisterPython(reg)

		graph := deps.Build(root, chunker.NewExtractor(reg), reg)

		files := make([]string, 0, len(graph))
		for f := range graph {
			files = append(files, f)
		}
		sort.Strings(files)

		for _, f := range files {
			if len(graph[f]) == 0 {
				fmt.Printf("%s -> (none)\n", f)
				continue
			}
			fmt.Printf("%s -> %s\n", f, strings.Join(graph[f], ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
}
