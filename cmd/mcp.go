package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"reposcout/internal/docs"
	"reposcout/internal/reader"
	"reposcout/internal/search"
	"reposcout/internal/tree"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing repository navigation tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}

	s := mcpserver.NewMCPServer("reposcout", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(cloneRepoTool(), makeCloneHandler(tk))
	s.AddTool(findFilesTool(), makeFindHandler(tk))
	s.AddTool(searchContentTool(), makeSearchContentHandler(tk))
	s.AddTool(readFileTool(), makeReadFileHandler())
	s.AddTool(listDirectoryTool(), makeListDirectoryHandler(tk))
	s.AddTool(listDocsTool(), makeListDocsHandler())
	s.AddTool(readDocTool(), makeReadDocHandler())
	s.AddTool(searchDocsTool(), makeSearchDocsHandler())

	tk.log.Info("starting MCP server", "cache_root", tk.cfg.CacheRoot)
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

func cloneRepoTool() mcp.Tool {
	return mcp.NewTool("clone_repo",
		mcp.WithDescription("Clone a repository into the local cache (shallow, depth 1) and return its local path. A valid cached copy on the requested branch is reused without network access."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(false),
			DestructiveHint: mcp.ToBoolPtr(false),
			IdempotentHint:  mcp.ToBoolPtr(true),
			OpenWorldHint:   mcp.ToBoolPtr(true),
		}),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Repository URL (https or git)"),
		),
		mcp.WithString("branch",
			mcp.Description("Branch to check out (default: the repository's default branch)"),
		),
	)
}

func findFilesTool() mcp.Tool {
	return mcp.NewTool("find_files",
		mcp.WithDescription("Find files by glob pattern (e.g. '**/*.go', 'src/**/*.test.ts'). Returns up to 100 paths, most recently modified first. Dependency and build directories are excluded."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Glob pattern to match file paths against"),
		),
		mcp.WithString("directory",
			mcp.Description("Directory to search in (default: current directory)"),
		),
	)
}

func searchContentTool() mcp.Tool {
	return mcp.NewTool("search_content",
		mcp.WithDescription("Search file contents with a regular expression. Returns up to 100 matching lines with file and line number, from most recently modified files first. If the fast backend is unavailable a plain grep fallback runs, which may include vendored paths."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Regular expression to search for"),
		),
		mcp.WithString("directory",
			mcp.Description("Directory to search in (default: current directory)"),
		),
		mcp.WithString("include",
			mcp.Description("Restrict to files matching this glob (e.g. '*.go')"),
		),
	)
}

func readFileTool() mcp.Tool {
	return mcp.NewTool("read_file",
		mcp.WithDescription("Read a window of a file with line numbers. Files over 10 MB are rejected; read them in smaller windows using offset and limit. When more lines remain, the output names the next offset to use."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path, absolute or relative to the working directory"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Line offset to start from, 0-based (default 0)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of lines to return (default 2000)"),
		),
	)
}

func listDirectoryTool() mcp.Tool {
	return mcp.NewTool("list_directory",
		mcp.WithDescription("List a directory tree recursively, up to 100 files, with dependency and build directories excluded."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("directory",
			mcp.Description("Directory to list (default: current directory)"),
		),
		mcp.WithString("ignore",
			mcp.Description("Extra ignore patterns, comma-separated (e.g. 'testdata,*.min.js')"),
		),
	)
}

func listDocsTool() mcp.Tool {
	return mcp.NewTool("list_docs",
		mcp.WithDescription("Discover a repository's documentation folder (docs/, documentation/ or doc/) and list its markdown files as a tree."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("repo_path",
			mcp.Required(),
			mcp.Description("Repository root path (as returned by clone_repo)"),
		),
	)
}

func readDocTool() mcp.Tool {
	return mcp.NewTool("read_doc",
		mcp.WithDescription("Read one documentation file by its path relative to the docs folder. A missing file returns similar paths to try instead."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("repo_path",
			mcp.Required(),
			mcp.Description("Repository root path"),
		),
		mcp.WithString("doc_path",
			mcp.Required(),
			mcp.Description("Documentation file path relative to the docs folder"),
		),
	)
}

func searchDocsTool() mcp.Tool {
	return mcp.NewTool("search_docs",
		mcp.WithDescription("Keyword-search a repository's documentation. Lines matching any query word count toward a file's score; files are ranked by score."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("repo_path",
			mcp.Required(),
			mcp.Description("Repository root path"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Whitespace-separated keywords, matched case-insensitively"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of files to return (default 10)"),
		),
	)
}

// --- Handler factories ---

func makeCloneHandler(tk *toolkit) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url := req.GetString("url", "")
		if url == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		branch := req.GetString("branch", "")

		path, err := tk.cache.Resolve(ctx, url, branch)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Repository available at %s", path)), nil
	}
}

func makeFindHandler(tk *toolkit) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pattern := req.GetString("pattern", "")
		if pattern == "" {
			return mcp.NewToolResultError("pattern is required"), nil
		}
		dir := req.GetString("directory", ".")

		res := tk.files.Find(ctx, pattern, dir)
		return mcp.NewToolResultText(formatFileList(pattern, res)), nil
	}
}

func makeSearchContentHandler(tk *toolkit) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pattern := req.GetString("pattern", "")
		if pattern == "" {
			return mcp.NewToolResultError("pattern is required"), nil
		}
		dir := req.GetString("directory", ".")
		include := req.GetString("include", "")

		res := tk.grep.Search(ctx, pattern, dir, include)
		return mcp.NewToolResultText(formatMatches(pattern, res)), nil
	}
}

func makeReadFileHandler() mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		offset := req.GetInt("offset", 0)
		limit := req.GetInt("limit", reader.DefaultLimit)

		res, err := reader.Read(path, offset, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(res.Content), nil
	}
}

func makeListDirectoryHandler(tk *toolkit) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dir := req.GetString("directory", ".")
		extra := splitCommaList(req.GetString("ignore", ""))

		listing := tk.list.List(dir, extra)
		return mcp.NewToolResultText(formatListing(listing)), nil
	}
}

func makeListDocsHandler() mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		repoPath := req.GetString("repo_path", "")
		if repoPath == "" {
			return mcp.NewToolResultError("repo_path is required"), nil
		}

		res := docs.ListDocs(repoPath)
		if res.DocsPath == "" {
			return mcp.NewToolResultText(res.Tree), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("## Documentation at %s (%d files)\n\n%s",
			res.DocsPath, res.FileCount, res.Tree)), nil
	}
}

func makeReadDocHandler() mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		repoPath := req.GetString("repo_path", "")
		docPath := req.GetString("doc_path", "")
		if repoPath == "" || docPath == "" {
			return mcp.NewToolResultError("repo_path and doc_path are required"), nil
		}

		res := docs.ReadDoc(repoPath, docPath)
		return mcp.NewToolResultText(res.Content), nil
	}
}

func makeSearchDocsHandler() mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		repoPath := req.GetString("repo_path", "")
		query := req.GetString("query", "")
		if repoPath == "" || query == "" {
			return mcp.NewToolResultError("repo_path and query are required"), nil
		}
		maxResults := req.GetInt("max_results", docs.DefaultMaxResults)

		res := docs.SearchDocs(repoPath, query, maxResults)
		return mcp.NewToolResultText(formatDocSearch(query, res)), nil
	}
}

// --- Formatting helpers ---

func formatFileList(pattern string, res search.Result[string]) string {
	if res.Count == 0 {
		return fmt.Sprintf("No files matching %q", pattern)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Files matching %q (%d)\n\n", pattern, res.Count)
	for _, p := range res.Items {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	if res.Truncated {
		fmt.Fprintf(&sb, "\n(Results capped at %d; narrow the pattern to see more.)\n", search.DefaultLimit)
	}
	return sb.String()
}

func formatMatches(pattern string, res search.Result[search.Match]) string {
	if res.Count == 0 {
		return fmt.Sprintf("No matches for %q", pattern)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Matches for %q (%d)\n\n", pattern, res.Count)
	for _, m := range res.Items {
		fmt.Fprintf(&sb, "%s:%d: %s\n", m.File, m.Line, m.Content)
	}
	if res.Truncated {
		fmt.Fprintf(&sb, "\n(Results capped at %d; narrow the pattern or use include to see more.)\n", search.DefaultLimit)
	}
	return sb.String()
}

func formatListing(l *tree.Listing) string {
	var sb strings.Builder
	sb.WriteString(l.Tree)
	fmt.Fprintf(&sb, "\n\n%d files", l.FileCount)
	if l.Truncated {
		fmt.Fprintf(&sb, " (capped at %d; pass extra ignore patterns or list a subdirectory)", tree.DefaultLimit)
	}
	return sb.String()
}

func formatDocSearch(query string, res *docs.SearchOutcome) string {
	if len(res.Results) == 0 {
		return fmt.Sprintf("No documentation matches for %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Documentation matches for %q (%d matching lines across %d files shown)\n\n",
		query, res.TotalMatches, len(res.Results))
	for _, hit := range res.Results {
		fmt.Fprintf(&sb, "### %s (%d matching lines)\n\n", hit.File, hit.Score)
		for _, sn := range hit.Snippets {
			fmt.Fprintf(&sb, "- L%d: %s\n", sn.Line, sn.Text)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
