package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabula/internal/schema"
	"github.com/KaramelBytes/tabula/internal/table"
	"github.com/KaramelBytes/tabula/internal/utils"
)

var (
	schemaFormat string
	schemaFrom   string
	schemaForce  bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show or write column schemas",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print the schema used for a dataset",
	Long: `Print the effective column schema: --schema or schema_file when set,
otherwise the one picked from the dataset header (the built-in funding
schema when every one of its columns is present).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cols, err := configuredColumns()
		if err != nil {
			return err
		}
		if cols == nil {
			header, err := readHeader(cmd, sourceArg(args))
			if err != nil {
				return err
			}
			cols = schema.ForHeader(header)
		}
		f := schema.Format(strings.ToLower(schemaFormat))
		if !slices.Contains(schemaFormats, f) {
			return fmt.Errorf("unsupported --format: %s (use yaml|toml|json)", schemaFormat)
		}
		b, err := schema.Encode(cols, f)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var schemaInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a schema file (built-in, or inferred with --from)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil && !schemaForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		cols := schema.Default()
		if schemaFrom != "" {
			header, err := readHeader(cmd, schemaFrom)
			if err != nil {
				return err
			}
			cols = schema.Infer(header)
		}
		b, err := schema.Encode(cols, schema.FormatFor(path))
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(path, b); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote schema with %d columns to %s\n", len(cols), path)
		return nil
	},
}

func readHeader(cmd *cobra.Command, source string) ([]string, error) {
	l, err := newLoader(cmd.Context())
	if err != nil {
		return nil, err
	}
	l.Delay = 0
	res, err := l.Load(cmd.Context(), source)
	if err != nil {
		return nil, err
	}
	if len(res.Header) == 0 {
		return nil, &table.ConfigurationError{Field: "header", Reason: fmt.Sprintf("%s has no header row", source)}
	}
	return res.Header, nil
}

// schemaFormats lists the accepted --format values.
var schemaFormats = []schema.Format{schema.FormatYAML, schema.FormatTOML, schema.FormatJSON}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaInitCmd)
	schemaShowCmd.Flags().StringVarP(&schemaFormat, "format", "f", string(schema.FormatYAML), fmt.Sprintf("output format: %v", schemaFormats))
	schemaInitCmd.Flags().StringVar(&schemaFrom, "from", "", "infer plain columns from this dataset's header")
	schemaInitCmd.Flags().BoolVar(&schemaForce, "force", false, "overwrite an existing file")
}
