// Package schema loads and saves column descriptor sets. A schema is plain
// data: every transform, format and processor is a tagged operation, so the
// same file can be written as YAML, TOML or JSON.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabula/internal/table"
)

// File is the on-disk layout of a schema.
type File struct {
	Columns []table.Column `json:"columns" yaml:"columns" toml:"columns"`
}

// Format names a serialization.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor picks the serialization from a file extension; unknown
// extensions default to YAML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Load reads and validates a schema file.
func Load(path string) ([]table.Column, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	cols, err := Decode(b, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cols, nil
}

// Decode parses and validates schema bytes.
func Decode(b []byte, f Format) ([]table.Column, error) {
	var file File
	var err error
	switch f {
	case FormatTOML:
		_, err = toml.Decode(string(b), &file)
	case FormatJSON:
		err = json.Unmarshal(b, &file)
	default:
		err = yaml.Unmarshal(b, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", f, err)
	}
	for i := range file.Columns {
		if file.Columns[i].Transform == "" {
			file.Columns[i].Transform = table.TransformNoop
		}
	}
	if err := table.Validate(file.Columns); err != nil {
		return nil, err
	}
	return file.Columns, nil
}

// Encode serializes cols. Derived aggregates are not written.
func Encode(cols []table.Column, f Format) ([]byte, error) {
	file := File{Columns: cols}
	switch f {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(file); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		clean := make([]table.Column, len(cols))
		for i, c := range cols {
			c.Max, c.HasMax, c.Distinct = 0, false, nil
			clean[i] = c
		}
		b, err := json.MarshalIndent(File{Columns: clean}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return b, nil
	default:
		b, err := yaml.Marshal(file)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return b, nil
	}
}

// Resolve returns the schema at path, or Default when path is empty.
func Resolve(path string) ([]table.Column, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return Load(path)
}

// Infer builds a pass-through, searchable schema from a CSV header, for
// datasets without a schema file.
func Infer(header []string) []table.Column {
	cols := make([]table.Column, 0, len(header))
	for _, h := range header {
		if h == "" {
			continue
		}
		cols = append(cols, table.Column{
			Name:      h,
			Label:     h,
			Class:     "text-column",
			Transform: table.TransformNoop,
			Formats:   []table.FormatOp{{Op: table.FormatSearchable}},
		})
	}
	return cols
}

// ForHeader returns the built-in schema when header carries every one of its
// columns, and an inferred schema otherwise.
func ForHeader(header []string) []table.Column {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	def := Default()
	for _, c := range def {
		if !present[c.Name] {
			return Infer(header)
		}
	}
	return def
}
