package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"reposcout/internal/reader"
)

var (
	flagOffset int
	flagLimit  int
)

var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Read a window of a file with line numbers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := reader.Read(args[0], flagOffset, flagLimit)
		if err != nil {
			return err
		}
		fmt.Println(res.Content)
		return nil
	},
}

func init() {
	readCmd.Flags().IntVar(&flagOffset, "offset", 0, "line offset to start from (0-based)")
	readCmd.Flags().IntVar(&flagLimit, "limit", reader.DefaultLimit, "maximum lines to return")
	rootCmd.AddCommand(readCmd)
}
