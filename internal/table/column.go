package table

import (
	"fmt"
	"strings"
)

// TransformKind selects how a raw string field is coerced.
type TransformKind string

const (
	TransformNoop   TransformKind = "noop"
	TransformNumber TransformKind = "toNumber"
	TransformDate   TransformKind = "toDate"
)

// ProcessorKind selects a per-column aggregate computed once per load.
type ProcessorKind string

const (
	ProcessorMax      ProcessorKind = "max"
	ProcessorDistinct ProcessorKind = "distinct"
)

// FormatKind selects one display formatting step.
type FormatKind string

const (
	FormatDate              FormatKind = "asDate"
	FormatNumber            FormatKind = "asNumber"
	FormatCurrency          FormatKind = "asCurrency"
	FormatCurrencyName      FormatKind = "asCurrencyName"
	FormatStateAbbreviation FormatKind = "asStateAbbreviation"
	FormatSearchable        FormatKind = "asSearchable"
)

// FormatOp is one tagged formatting operation. Only the parameters relevant
// to Op are read.
type FormatOp struct {
	Op FormatKind `json:"op" yaml:"op" toml:"op"`
	// Decimals for asNumber.
	Decimals int `json:"decimals,omitempty" yaml:"decimals,omitempty" toml:"decimals,omitempty"`
	// Units divides the value for asCurrency; 0 means 1.
	Units float64 `json:"units,omitempty" yaml:"units,omitempty" toml:"units,omitempty"`
	// Symbol is a fixed currency symbol; SymbolField reads it from another field of the row.
	Symbol      string `json:"symbol,omitempty" yaml:"symbol,omitempty" toml:"symbol,omitempty"`
	SymbolField string `json:"symbol_field,omitempty" yaml:"symbol_field,omitempty" toml:"symbol_field,omitempty"`
}

// Column describes how one field is parsed, aggregated and displayed.
type Column struct {
	Name       string          `json:"name" yaml:"name" toml:"name"`
	Label      string          `json:"label" yaml:"label" toml:"label"`
	Class      string          `json:"class,omitempty" yaml:"class,omitempty" toml:"class,omitempty"`
	Transform  TransformKind   `json:"transform,omitempty" yaml:"transform,omitempty" toml:"transform,omitempty"`
	Formats    []FormatOp      `json:"formats,omitempty" yaml:"formats,omitempty" toml:"formats,omitempty"`
	Processors []ProcessorKind `json:"processors,omitempty" yaml:"processors,omitempty" toml:"processors,omitempty"`

	// Derived by processors.
	Max      float64 `json:"max,omitempty" yaml:"-" toml:"-"`
	HasMax   bool    `json:"has_max,omitempty" yaml:"-" toml:"-"`
	Distinct []Value `json:"distinct,omitempty" yaml:"-" toml:"-"`
}

// DisplayLabel returns Label, falling back to Name.
func (c Column) DisplayLabel() string {
	if strings.TrimSpace(c.Label) == "" {
		return c.Name
	}
	return c.Label
}

// Numeric reports whether the column is coerced to numbers.
func (c Column) Numeric() bool { return c.Transform == TransformNumber }

// Validate checks a column list: names must be present and unique and every
// tagged operation must be known.
func Validate(cols []Column) error {
	if len(cols) == 0 {
		return &ConfigurationError{Field: "columns", Reason: "at least one column is required"}
	}
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return &ConfigurationError{Field: fmt.Sprintf("columns[%d].name", i), Reason: "must not be empty"}
		}
		if seen[name] {
			return &ConfigurationError{Field: fmt.Sprintf("columns[%d].name", i), Reason: fmt.Sprintf("duplicate column %q", name)}
		}
		seen[name] = true
		switch c.Transform {
		case "", TransformNoop, TransformNumber, TransformDate:
		default:
			return &ConfigurationError{Field: name + ".transform", Reason: fmt.Sprintf("unknown transform %q", c.Transform)}
		}
		for _, p := range c.Processors {
			switch p {
			case ProcessorMax, ProcessorDistinct:
			default:
				return &ConfigurationError{Field: name + ".processors", Reason: fmt.Sprintf("unknown processor %q", p)}
			}
		}
		for _, f := range c.Formats {
			switch f.Op {
			case FormatDate, FormatNumber, FormatCurrencyName, FormatStateAbbreviation, FormatSearchable:
			case FormatCurrency:
				if f.Units < 0 {
					return &ConfigurationError{Field: name + ".formats", Reason: "asCurrency units must not be negative"}
				}
			default:
				return &ConfigurationError{Field: name + ".formats", Reason: fmt.Sprintf("unknown format %q", f.Op)}
			}
		}
	}
	return nil
}

// Lookup returns the column with the given name.
func Lookup(cols []Column, name string) (Column, bool) {
	for _, c := range cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
