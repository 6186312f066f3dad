package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabula/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tabula configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "⚠ No config loaded, showing built-in defaults")
		}
		fmt.Fprintf(out, "data_path: %s\n", c.DataPath)
		if c.SchemaFile != "" {
			fmt.Fprintf(out, "schema_file: %s\n", c.SchemaFile)
		}
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		fmt.Fprintf(out, "rows_per_page: %d\n", c.RowsPerPage)
		if c.ViewportHeight > 0 || c.RowHeight > 0 {
			fmt.Fprintf(out, "viewport_height: %g\n", c.ViewportHeight)
			fmt.Fprintf(out, "row_height: %g\n", c.RowHeight)
		}
		fmt.Fprintf(out, "load_delay_ms: %d\n", c.LoadDelayMs)
		fmt.Fprintf(out, "listen_addr: %s\n", c.ListenAddr)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_path":
			cfg.DataPath = val
		case "schema_file":
			cfg.SchemaFile = val
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			cfg.Delimiter = val
		case "rows_per_page":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for rows_per_page: %v", val)
			}
			cfg.RowsPerPage = i
		case "viewport_height", "row_height":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			if key == "viewport_height" {
				cfg.ViewportHeight = f
			} else {
				cfg.RowHeight = f
			}
		case "load_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for load_delay_ms: %v", val)
			}
			cfg.LoadDelayMs = i
		case "listen_addr":
			cfg.ListenAddr = val
		case "log_level":
			switch val {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = val
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
