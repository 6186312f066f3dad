package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabula/internal/config"
)

var (
	// Global flags
	cfgFile    string
	debug      bool
	flagSchema string
	flagDelim  string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tabula",
	Short: "Browse, search, sort and page through tabular datasets",
	Long: `tabula loads a CSV dataset, coerces its fields according to a column schema
and shows filterable, sortable, paginated views of it as a terminal table,
Markdown, JSON, an interactive browser or a small HTTP API.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		logger := newLogger(cmd.ErrOrStderr(), logLevel(debug, settings().LogLevel))
		cmd.SetContext(withLogger(ctx, logger))
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabula/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagSchema, "schema", "", "column schema file (.yaml, .toml or .json; overrides schema_file)")
	rootCmd.PersistentFlags().StringVar(&flagDelim, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to the built-in settings
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
}

// settings returns the loaded configuration or the built-in defaults.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return cfgpkg.Default()
}
