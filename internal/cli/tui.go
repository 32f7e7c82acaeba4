package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// FunctionEntry is one row of the picker.
type FunctionEntry struct {
	Name     string
	Blocks   int
	Calls    int
	Throwing bool
}

// FunctionPicker is the bubbletea model behind `flowlens pick`. Typing
// filters by substring; enter selects.
type FunctionPicker struct {
	All      []FunctionEntry
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected *FunctionEntry
}

// NewFunctionPicker returns a picker over entries.
func NewFunctionPicker(entries []FunctionEntry) FunctionPicker {
	return FunctionPicker{All: entries, Height: 15}
}

// visible returns the entries matching the filter.
func (m FunctionPicker) visible() []FunctionEntry {
	if m.Filter == "" {
		return m.All
	}
	needle := strings.ToLower(m.Filter)
	var out []FunctionEntry
	for _, e := range m.All {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}

func (m FunctionPicker) Init() tea.Cmd { return nil }

func (m FunctionPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		rows := m.visible()
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
			}
		case tea.KeyDown:
			if m.Cursor < len(rows)-1 {
				m.Cursor++
			}
		case tea.KeyEnter:
			if len(rows) > 0 {
				sel := rows[m.Cursor]
				m.Selected = &sel
				return m, tea.Quit
			}
		case tea.KeyBackspace:
			if m.Filter != "" {
				m.Filter = m.Filter[:len(m.Filter)-1]
				m.Cursor, m.Offset = 0, 0
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.Cursor, m.Offset = 0, 0
		}
		if m.Cursor < m.Offset {
			m.Offset = m.Cursor
		}
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-8)
	}
	return m, nil
}

func (m FunctionPicker) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Select Function"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(StyleHighlight.Render("filter: " + m.Filter))
	}
	b.WriteString("\n")

	rows := m.visible()
	end := min(m.Offset+m.Height, len(rows))
	var cells [][]string
	for i := m.Offset; i < end; i++ {
		e := rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		panics := ""
		if e.Throwing {
			panics = "panics"
		}
		cells = append(cells, []string{cursor, e.Name, fmt.Sprint(e.Blocks), fmt.Sprint(e.Calls), panics})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(listDimStyle).
		Headers("", "Function", "Blocks", "Calls", "").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return listHeaderStyle
			case m.Offset+row == m.Cursor:
				return listSelectedStyle
			case col == 4:
				return StyleWarning
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(rows)), len(rows))))
	return b.String()
}
