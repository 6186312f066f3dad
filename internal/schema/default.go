package schema

import "github.com/KaramelBytes/tabula/internal/table"

// Default is the startup-funding table: one row per funding round.
func Default() []table.Column {
	searchable := table.FormatOp{Op: table.FormatSearchable}
	text := func(name, label, class string, extra ...table.FormatOp) table.Column {
		return table.Column{
			Name: name, Label: label, Class: class,
			Transform: table.TransformNoop,
			Formats:   append([]table.FormatOp{searchable}, extra...),
		}
	}
	return []table.Column{
		text("permalink", "Permalink", "text-column"),
		text("company", "Company", "text-column"),
		{
			Name: "numEmps", Label: "Employees", Class: "numeric-column mini-bar-column",
			Transform:  table.TransformNumber,
			Formats:    []table.FormatOp{{Op: table.FormatNumber, Decimals: 0}, searchable},
			Processors: []table.ProcessorKind{table.ProcessorMax},
		},
		text("category", "Category", "text-column"),
		text("city", "City", "text-column"),
		text("state", "State", "short-text-column", table.FormatOp{Op: table.FormatStateAbbreviation}),
		{
			Name: "fundedDate", Label: "Funded When", Class: "date-column",
			Transform: table.TransformDate,
			Formats:   []table.FormatOp{{Op: table.FormatDate}, searchable},
		},
		{
			Name: "raisedAmt", Label: "Amount Raised", Class: "numeric-column mini-bar-column",
			Transform:  table.TransformNumber,
			Formats:    []table.FormatOp{{Op: table.FormatCurrency, Units: 1, SymbolField: "raisedCurrency"}, searchable},
			Processors: []table.ProcessorKind{table.ProcessorMax},
		},
		text("raisedCurrency", "Currency", "short-text-column", table.FormatOp{Op: table.FormatCurrencyName}),
		text("round", "Round", "short-text-column"),
	}
}
