package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/tabula/internal/loader"
	"github.com/KaramelBytes/tabula/internal/schema"
	"github.com/KaramelBytes/tabula/internal/table"
)

// sourceArg returns the dataset named on the command line or data_path.
func sourceArg(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0]
	}
	return settings().DataPath
}

// parseDelimiter maps a user-facing delimiter name to a rune; "" means sniff.
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | 'tab' | '|')", s)
}

// configuredColumns returns the schema named by --schema or schema_file, or
// nil to pick one from the dataset header.
func configuredColumns() ([]table.Column, error) {
	path := flagSchema
	if path == "" {
		path = settings().SchemaFile
	}
	if path == "" {
		return nil, nil
	}
	return schema.Load(path)
}

func newLoader(ctx context.Context) (*loader.Loader, error) {
	delim := flagDelim
	if delim == "" {
		delim = settings().Delimiter
	}
	d, err := parseDelimiter(delim)
	if err != nil {
		return nil, err
	}
	return &loader.Loader{
		Delay:     time.Duration(settings().LoadDelayMs) * time.Millisecond,
		Delimiter: d,
		Logger:    loggerFromContext(ctx),
	}, nil
}

// startLoad begins loading source in the background.
func startLoad(ctx context.Context, source string) (*loader.Pending, []table.Column, error) {
	cols, err := configuredColumns()
	if err != nil {
		return nil, nil, err
	}
	l, err := newLoader(ctx)
	if err != nil {
		return nil, nil, err
	}
	return l.Start(ctx, source), cols, nil
}

// loadDataset loads source and builds the typed dataset.
func loadDataset(ctx context.Context, source string) (*table.Dataset, error) {
	logger := loggerFromContext(ctx)
	p, cols, err := startLoad(ctx, source)
	if err != nil {
		return nil, err
	}
	res, err := p.Result()
	if err != nil {
		return nil, err
	}
	if cols == nil {
		cols = schema.ForHeader(res.Header)
	}
	ds, err := table.Build(res.Source, res.Records, cols)
	if err != nil {
		return nil, err
	}
	for _, m := range ds.Stats.Missing {
		logger.Warn("schema column not in header", "column", m)
	}
	if n := ds.Stats.CoercedTotal(); n > 0 {
		logger.Debug("coerced unparsable cells", "count", n, "by_column", ds.Stats.Coerced)
	}
	return ds, nil
}

// pageSize resolves rows per page: an explicit flag, then the configured
// viewport derivation, then rows_per_page.
func pageSize(flagRows int) int {
	if flagRows > 0 {
		return flagRows
	}
	return settings().PageSize(table.PageSizeFor)
}
