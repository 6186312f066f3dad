package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula/internal/render"
	"github.com/KaramelBytes/tabula/internal/table"
	"github.com/KaramelBytes/tabula/internal/utils"
)

var (
	viewQuery  string
	viewSorts  []string
	viewPage   int
	viewAll    bool
	viewRows   int
	viewFormat string
	viewOutput string
	viewHTML   bool
	viewBars   bool
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Print one filtered, sorted page of a dataset",
	Long: `Load a dataset and print one page of it.

--sort may be repeated; each occurrence is a header click, so clicking the
same column twice sorts it descending. Use column:asc or column:desc to
force a direction.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(viewFormat)
		switch format {
		case "table", "markdown", "md", "json":
		default:
			return fmt.Errorf("unsupported --format: %s (use table|markdown|json)", viewFormat)
		}

		ds, err := loadDataset(cmd.Context(), sourceArg(args))
		if err != nil {
			return err
		}
		v, err := table.NewView(ds, pageSize(viewRows))
		if err != nil {
			return err
		}
		v, err = applyViewFlags(v)
		if err != nil {
			return err
		}

		var out string
		switch format {
		case "json":
			b, err := render.JSON(v.Snapshot(table.FormatContext{HTML: viewHTML}))
			if err != nil {
				return err
			}
			out = string(b)
		case "markdown", "md":
			out = render.Markdown(v.Snapshot(table.FormatContext{Mark: func(s string) string { return "**" + s + "**" }}))
		default:
			snap := v.Snapshot(table.FormatContext{Mark: func(s string) string { return render.MarkStyle.Render(s) }})
			out = render.Terminal(snap, render.TerminalOptions{Bars: viewBars, Selected: -1})
		}

		if viewOutput != "" {
			if err := utils.SafeWriteFile(viewOutput, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s view to %s\n", format, viewOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
		return nil
	},
}

// applyViewFlags runs the search, the header clicks and the page jump in
// the order a user would perform them.
func applyViewFlags(v table.View) (table.View, error) {
	if viewQuery != "" {
		v = v.Search(viewQuery)
	}
	for _, s := range viewSorts {
		col, dirName, forced := strings.Cut(s, ":")
		var err error
		if forced {
			dir, ok := table.ParseDirection(strings.ToLower(dirName))
			if !ok {
				return v, fmt.Errorf("invalid sort direction in %q (use asc or desc)", s)
			}
			v, err = v.SortBy(col, dir)
		} else {
			v, err = v.ClickHeader(col)
		}
		if err != nil {
			return v, err
		}
	}
	if viewAll {
		return v.ShowAll(), nil
	}
	if viewPage < 1 {
		return v, fmt.Errorf("invalid --page %d (pages start at 1)", viewPage)
	}
	if viewPage != 1 {
		return v.GoTo(viewPage - 1)
	}
	return v, nil
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVarP(&viewQuery, "query", "q", "", "case-insensitive search across all fields")
	viewCmd.Flags().StringArrayVarP(&viewSorts, "sort", "s", nil, "click a column header (repeatable); column:asc|desc forces a direction")
	viewCmd.Flags().IntVarP(&viewPage, "page", "p", 1, "1-based page number")
	viewCmd.Flags().BoolVar(&viewAll, "all", false, "show every row without pagination")
	viewCmd.Flags().IntVar(&viewRows, "rows", 0, "rows per page (overrides rows_per_page)")
	viewCmd.Flags().StringVarP(&viewFormat, "format", "f", "table", "output format: table|markdown|json")
	viewCmd.Flags().StringVarP(&viewOutput, "output", "o", "", "write the view to a file instead of stdout")
	viewCmd.Flags().BoolVar(&viewHTML, "html", false, "JSON: render cells as HTML (<abbr>, <mark>)")
	viewCmd.Flags().BoolVar(&viewBars, "bars", true, "table: draw mini bars for columns with a maximum")
}
