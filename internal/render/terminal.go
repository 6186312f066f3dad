package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	tbl "github.com/KaramelBytes/tabula/internal/table"
)

var (
	colorDim    = lipgloss.Color("240")
	colorGray   = lipgloss.Color("245")
	colorAccent = lipgloss.Color("86")

	headerStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	sortedStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	selectedStyle = lipgloss.NewStyle().Underline(true)
	statusStyle   = lipgloss.NewStyle().Foreground(colorDim)
	barStyle      = lipgloss.NewStyle().Foreground(colorAccent)

	// MarkStyle highlights search matches in terminal output.
	MarkStyle = lipgloss.NewStyle().Reverse(true)
)

// barWidth is the number of cells used by a full mini bar.
const barWidth = 8

// TerminalOptions tunes Terminal output.
type TerminalOptions struct {
	// Bars appends a mini bar to cells of columns with a maximum.
	Bars bool
	// Selected underlines the header at this column index; -1 for none.
	Selected int
}

// Terminal renders a bordered table with status lines and the pager.
func Terminal(s tbl.Snapshot, opt TerminalOptions) string {
	headers := make([]string, len(s.Columns))
	for i, h := range s.Columns {
		headers[i] = headerLabel(h)
	}
	rows := make([][]string, len(s.Rows))
	for i, r := range s.Rows {
		cells := make([]string, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = c.Display
			if opt.Bars && c.Bar != nil {
				cells[j] = MiniBar(c.Bar.Percent) + " " + c.Display
			}
		}
		rows[i] = cells
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if col < len(s.Columns) && s.Columns[col].Numeric {
				base = base.Align(lipgloss.Right)
			}
			if row != table.HeaderRow {
				return base
			}
			st := headerStyle
			if col < len(s.Columns) && s.Columns[col].Sorted != tbl.Unsorted {
				st = sortedStyle
			}
			if col == opt.Selected {
				st = st.Inherit(selectedStyle)
			}
			return st.Inherit(base)
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	if len(s.Window) > 0 {
		b.WriteString(Pager(s.Window))
		b.WriteString("\n")
	}
	for _, l := range StatusLines(s) {
		b.WriteString(statusStyle.Render(l))
		b.WriteString("\n")
	}
	return b.String()
}

// MiniBar draws a fixed-width horizontal bar filled to percent.
func MiniBar(percent float64) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent/100*barWidth + 0.5)
	return barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("·", barWidth-filled)
}
