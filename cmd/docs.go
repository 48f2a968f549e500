package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"reposcout/internal/docs"
)

var flagMaxResults int

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Explore a repository's documentation folder",
}

var docsListCmd = &cobra.Command{
	Use:   "list <repo-path>",
	Short: "List the documentation files of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := docs.ListDocs(args[0])
		if res.DocsPath == "" {
			fmt.Println(dimStyle.Render(res.Tree))
			return nil
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("%s (%d files)", res.DocsPath, res.FileCount)))
		fmt.Println(res.Tree)
		return nil
	},
}

var docsReadCmd = &cobra.Command{
	Use:   "read <repo-path> <doc-path>",
	Short: "Read one documentation file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := docs.ReadDoc(args[0], args[1])
		if !res.Exists {
			fmt.Println(dimStyle.Render(res.Content))
			return nil
		}

		// Render markdown for humans; raw passthrough when piped.
		if isatty.IsTerminal(os.Stdout.Fd()) {
			if out, err := glamour.Render(res.Content, "auto"); err == nil {
				fmt.Print(out)
				return nil
			}
		}
		fmt.Println(res.Content)
		return nil
	},
}

var docsSearchCmd = &cobra.Command{
	Use:   "search <repo-path> <query>",
	Short: "Keyword-search the documentation, ranked by matching lines",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := docs.SearchDocs(args[0], args[1], flagMaxResults)
		if len(res.Results) == 0 {
			fmt.Println(dimStyle.Render("no documentation matches"))
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%d matching lines", res.TotalMatches)))
		for _, hit := range res.Results {
			fmt.Printf("%s %s\n", pathStyle.Render(hit.File), dimStyle.Render(fmt.Sprintf("(%d lines)", hit.Score)))
			for _, sn := range hit.Snippets {
				fmt.Printf("  %s %s\n", dimStyle.Render(fmt.Sprintf("L%d:", sn.Line)), sn.Text)
			}
		}
		return nil
	},
}

func init() {
	docsSearchCmd.Flags().IntVar(&flagMaxResults, "max-results", docs.DefaultMaxResults, "maximum files to return")
	docsCmd.AddCommand(docsListCmd, docsReadCmd, docsSearchCmd)
	rootCmd.AddCommand(docsCmd)
}
