// Package tui is an interactive terminal browser for a dataset view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/tabula/internal/loader"
	"github.com/KaramelBytes/tabula/internal/render"
	"github.com/KaramelBytes/tabula/internal/schema"
	"github.com/KaramelBytes/tabula/internal/table"
)

// chromeLines is the height taken by everything except table body rows:
// title, table borders and header, pager, status lines, search and help.
const chromeLines = 10

const defaultPageSize = 10

var (
	colorCyan = lipgloss.Color("36")
	colorRed  = lipgloss.Color("167")
	colorDim  = lipgloss.Color("240")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	errStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// Options configures the browser.
type Options struct {
	Pending *loader.Pending
	Source  string
	// Columns is the schema; nil picks one from the header (schema.ForHeader).
	Columns []table.Column
	// PageSize fixes rows per page; 0 derives it from the terminal height.
	PageSize int
}

type loadedMsg struct {
	ds  *table.Dataset
	err error
}

// Model is the bubbletea model.
type Model struct {
	opts Options

	spin      spinner.Model
	search    textinput.Model
	searching bool

	ds       *table.Dataset
	view     table.View
	loadErr  error
	selected int
	height   int
	notice   string
}

// New returns a model waiting on opts.Pending.
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"
	ti.CharLimit = 256
	return Model{opts: opts, spin: s, search: ti}
}

// Run starts the program in the alternate screen and blocks until quit.
func Run(ctx context.Context, opts Options) error {
	_, err := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForLoad(m.opts.Pending, m.opts.Columns))
}

func waitForLoad(p *loader.Pending, cols []table.Column) tea.Cmd {
	return func() tea.Msg {
		res, err := p.Result()
		if err != nil {
			return loadedMsg{err: err}
		}
		if len(cols) == 0 {
			cols = schema.ForHeader(res.Header)
		}
		ds, err := table.Build(res.Source, res.Records, cols)
		return loadedMsg{ds: ds, err: err}
	}
}

func (m Model) pageSize() int {
	if m.opts.PageSize > 0 {
		return m.opts.PageSize
	}
	if m.height == 0 {
		return defaultPageSize
	}
	return table.PageSizeFor(float64(m.height-chromeLines), []float64{1})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.ds, m.loadErr = msg.ds, msg.err
		if m.loadErr == nil {
			m.view, m.loadErr = table.NewView(m.ds, m.pageSize())
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.height = msg.Height
		if m.ds != nil && m.loadErr == nil {
			if v, err := m.view.WithPageSize(m.pageSize()); err == nil {
				m.view = v
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.ds != nil || m.loadErr != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	prev := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != prev && m.ds != nil {
		m.view = m.view.Search(m.search.Value())
	}
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" || key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.ds == nil || m.loadErr != nil {
		return m, nil
	}
	m.notice = ""
	switch key {
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "esc":
		if m.view.Filter.Active() {
			m.search.SetValue("")
			m.view = m.view.Search("")
		}
	case "left", "h":
		if m.selected > 0 {
			m.selected--
		}
	case "right", "l":
		if m.selected < len(m.view.Columns)-1 {
			m.selected++
		}
	case "enter", "s":
		if len(m.view.Columns) > 0 {
			m.apply(m.view.ClickHeader(m.view.Columns[m.selected].Name))
		}
	case "n", "pgdown":
		m.apply(m.view.GoTo(m.view.Page + 1))
	case "p", "pgup":
		m.apply(m.view.GoTo(m.view.Page - 1))
	case "g", "home":
		m.apply(m.view.GoTo(0))
	case "G", "end":
		m.apply(m.view.GoTo(max(m.view.TotalPages()-1, 0)))
	case "a":
		if m.view.Page == table.AllPages {
			m.apply(m.view.GoTo(0))
		} else {
			m.view = m.view.ShowAll()
		}
	}
	return m, nil
}

// apply keeps the current view when an interaction is rejected and shows why.
func (m *Model) apply(v table.View, err error) {
	if err != nil {
		m.notice = err.Error()
		return
	}
	m.view = v
}

func (m Model) View() string {
	if m.loadErr != nil {
		return errStyle.Render("✗ "+m.loadErr.Error()) + "\n" + dimStyle.Render("q quit") + "\n"
	}
	if m.ds == nil {
		return fmt.Sprintf("%s Loading %s…\n", m.spin.View(), m.opts.Source)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.ds.Source))
	b.WriteString("\n")
	snap := m.view.Snapshot(table.FormatContext{Mark: func(s string) string { return render.MarkStyle.Render(s) }})
	b.WriteString(render.Terminal(snap, render.TerminalOptions{Bars: true, Selected: m.selected}))
	if m.notice != "" {
		b.WriteString(errStyle.Render("⚠ " + m.notice))
		b.WriteString("\n")
	}
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("/ search  ←/→ column  ⏎ sort  n/p page  g/G first/last  a all  q quit"))
	b.WriteString("\n")
	return b.String()
}
