package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"reposcout/internal/search"
)

var findCmd = &cobra.Command{
	Use:   "find <pattern> [directory]",
	Short: "Find files by glob pattern, most recently modified first",
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

		res := tk.files.Find(cmd.Context(), args[0], dir)
		if res.Count == 0 {
			fmt.Println(dimStyle.Render("no files matched"))
			return nil
		}
		for _, p := range res.Items {
			fmt.Println(pathStyle.Render(p))
		}
		if res.Truncated {
			fmt.Println(dimStyle.Render(fmt.Sprintf("(capped at %d results)", search.DefaultLimit)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
}
