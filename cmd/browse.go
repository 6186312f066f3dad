package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula/internal/tui"
)

var browseRows int

var browseCmd = &cobra.Command{
	Use:   "browse [file]",
	Short: "Browse a dataset interactively in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := sourceArg(args)
		p, cols, err := startLoad(cmd.Context(), source)
		if err != nil {
			return err
		}
		// Fixed page size only when asked for; otherwise follow the terminal height.
		return tui.Run(cmd.Context(), tui.Options{
			Pending:  p,
			Source:   source,
			Columns:  cols,
			PageSize: browseRows,
		})
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().IntVar(&browseRows, "rows", 0, "fixed rows per page (default: fit the terminal)")
}
