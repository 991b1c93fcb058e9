package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"scout/internal/deps"
	"scout/internal/index"
	"scout/internal/infer"
	"scout/internal/retrieve"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing context retrieval tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args, 0)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	idx, err := openIndexer(root, cfg, nil)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer idx.Close()

	s := mcpserver.NewMCPServer("scout", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(getContextTool(), makeContextHandler(idx, root, cfg.Retrieve.MaxChunks))
	s.AddTool(searchCodebaseTool(), makeSearchHandler(idx, root))
	s.AddTool(inferTargetsTool(), makeInferHandler(root))
	s.AddTool(dependencyGraphTool(), makeDepsHandler(idx, root))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func getContextTool() mcp.Tool {
	return mcp.NewTool("get_context",
		mcp.WithDescription("Assemble relevant source-code context for a natural-language request: an inferred-target instruction block plus the nearest indexed chunks. Degrades to recent files if the index is unavailable."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language request to retrieve context for"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of chunks to include"),
		),
	)
}

func searchCodebaseTool() mcp.Tool {
	return mcp.NewTool("search_codebase",
		mcp.WithDescription("Search the indexed codebase with hybrid keyword + vector similarity. Returns ranked chunks with file paths and line numbers."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language or keyword query"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of results (default 10)"),
		),
	)
}

func inferTargetsTool() mcp.Tool {
	return mcp.NewTool("infer_target_files",
		mcp.WithDescription("Heuristically infer which file paths a request refers to, from explicit mentions and domain keywords."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language request"),
		),
	)
}

func dependencyGraphTool() mcp.Tool {
	return mcp.NewTool("dependency_graph",
		mcp.WithDescription("Build the local import dependency graph of the codebase. External imports are omitted."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeContextHandler(idx *index.Indexer, root string, defaultK int) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		k := req.GetInt("k", defaultK)
		if k <= 0 {
			k = defaultK
		}

		blob := retrieve.BuildContext(ctx, idx, query, root, k)
		if blob == "" {
			return mcp.NewToolResultText("No context available for this query."), nil
		}
		return mcp.NewToolResultText(blob), nil
	}
}

func makeSearchHandler(idx *index.Indexer, root string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		k := req.GetInt("k", 10)
		if k <= 0 {
			k = 10
		}

		results := retrieve.Search(ctx, idx, query, root, k)
		return mcp.NewToolResultText(formatSearchResults(query, results)), nil
	}
}

func makeInferHandler(root string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		targets := infer.TargetFiles(query, root)
		if len(targets) == 0 {
			return mcp.NewToolResultText("No target files inferred."), nil
		}
		return mcp.NewToolResultText("- " + strings.Join(targets, "\n- ")), nil
	}
}

func makeDepsHandler(idx *index.Indexer, root string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		graph := deps.Build(root, idx.Extractor(), idx.Registry())

		files := make([]string, 0, len(graph))
		for f := range graph {
			files = append(files, f)
		}
		sort.Strings(files)

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Dependency graph (%d files)\n\n", len(files))
		for _, f := range files {
			if len(graph[f]) == 0 {
				fmt.Fprintf(&sb, "- **%s** — no local imports\n", f)
				continue
			}
			fmt.Fprintf(&sb, "- **%s** → %s\n", f, strings.Join(graph[f], ", "))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- Formatting helpers ---

func formatSearchResults(query string, results []retrieve.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d)\n\n", query, len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "### Result %d: `%s`\n\n", i+1, r.File)
		if r.Matches > 0 {
			fmt.Fprintf(&sb, "**Substring matches:** %d\n\n", r.Matches)
		} else {
			fmt.Fprintf(&sb, "**Kind:** %s  \n**Name:** %s  \n**Line:** %d\n\n", r.Kind, r.Name, r.StartLine)
		}
		fmt.Fprintf(&sb, "```\n%s\n```\n\n", r.Content)
	}
	return sb.String()
}
