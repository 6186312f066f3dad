package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabula/internal/table"
)

// Global configuration structure.
type Global struct {
	DataPath   string `mapstructure:"data_path" yaml:"data_path"`
	SchemaFile string `mapstructure:"schema_file" yaml:"schema_file"`
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`

	// Pagination. When ViewportHeight and RowHeight are both set the page size
	// is derived from them instead of RowsPerPage.
	RowsPerPage    int     `mapstructure:"rows_per_page" yaml:"rows_per_page"`
	ViewportHeight float64 `mapstructure:"viewport_height" yaml:"viewport_height"`
	RowHeight      float64 `mapstructure:"row_height" yaml:"row_height"`

	// LoadDelayMs postpones the initial load (loading placeholder).
	LoadDelayMs int `mapstructure:"load_delay_ms" yaml:"load_delay_ms"`

	// HTTP front-end
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Global {
	return &Global{
		DataPath:    filepath.Join("data", "dados-tp1.csv"),
		RowsPerPage: 10,
		ListenAddr:  "127.0.0.1:8080",
		LogLevel:    "info",
	}
}

// Dir returns ~/.tabula.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabula"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabula/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABULA")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("data_path", d.DataPath)
	v.SetDefault("schema_file", d.SchemaFile)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("rows_per_page", d.RowsPerPage)
	v.SetDefault("viewport_height", d.ViewportHeight)
	v.SetDefault("row_height", d.RowHeight)
	v.SetDefault("load_delay_ms", d.LoadDelayMs)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_level", d.LogLevel)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.RowsPerPage <= 0 {
		return nil, &table.ConfigurationError{Field: "rows_per_page", Reason: fmt.Sprintf("must be greater than zero, got %d", c.RowsPerPage)}
	}
	return &c, nil
}

// PageSize returns the rows per page, derived from the viewport when both
// heights are configured.
func (c *Global) PageSize(derive func(available float64, rowHeights []float64) int) int {
	if c.ViewportHeight > 0 && c.RowHeight > 0 && derive != nil {
		return derive(c.ViewportHeight, []float64{c.RowHeight})
	}
	return c.RowsPerPage
}
