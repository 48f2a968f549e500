package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"reposcout/internal/search"
)

var flagInclude string

var grepCmd = &cobra.Command{
	Use:   "grep <pattern> [directory]",
	Short: "Search file contents with a regular expression",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, err := newToolkit()
		if err != nil {
			return err
		}

		dir := "."
		if len(args) == 2 {
			dir = args[1]
		}

		res := tk.grep.Search(cmd.Context(), args[0], dir, flagInclude)
		if res.Count == 0 {
			fmt.Println(dimStyle.Render("no matches"))
			return nil
		}
		for _, m := range res.Items {
			fmt.Printf("%s%s %s\n",
				pathStyle.Render(m.File),
				dimStyle.Render(fmt.Sprintf(":%d:", m.Line)),
				m.Content)
		}
		if res.Truncated {
			fmt.Println(dimStyle.Render(fmt.Sprintf("(capped at %d results)", search.DefaultLimit)))
		}
		return nil
	},
}

func init() {
	grepCmd.Flags().StringVar(&flagInclude, "include", "", "restrict to files matching this glob (e.g. '*.go')")
	rootCmd.AddCommand(grepCmd)
}
