package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"reposcout/internal/tree"
)

var flagIgnore []string

var treeCmd = &cobra.Command{
	Use:   "tree [directory]",
	Short: "List a directory tree recursively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, err := newToolkit()
		if err != nil {
			return err
		}

		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		listing := tk.list.List(dir, flagIgnore)
		fmt.Println(listing.Tree)
		note := fmt.Sprintf("%d files", listing.FileCount)
		if listing.Truncated {
			note += fmt.Sprintf(" (capped at %d)", tree.DefaultLimit)
		}
		fmt.Println(dimStyle.Render(note))
		return nil
	},
}

func init() {
	treeCmd.Flags().StringSliceVar(&flagIgnore, "ignore", nil, "extra ignore patterns")
	rootCmd.AddCommand(treeCmd)
}
