package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagBranch string

var cloneCmd = &cobra.Command{
	Use:   "clone <url>",
	Short: "Clone a repository into the local cache and print its path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, err := newToolkit()
		if err != nil {
			return err
		}

		path, err := tk.cache.Resolve(cmd.Context(), args[0], flagBranch)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	cloneCmd.Flags().StringVar(&flagBranch, "branch", "", "branch to check out")
	rootCmd.AddCommand(cloneCmd)
}
