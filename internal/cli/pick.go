package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/organigram/pkg/hierarchy"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// unitPicker - Interactive subtree root selection
// =============================================================================

type pickItem struct {
	record   hierarchy.Record
	level    int
	children int
}

// unitPicker lists every unit in chart order, indented by level.
type unitPicker struct {
	items    []pickItem
	cursor   int
	offset   int
	height   int
	selected *int64
}

func newUnitPicker(t *hierarchy.Tree) unitPicker {
	items := make([]pickItem, 0, t.Len())
	t.Walk(func(r hierarchy.Record, level int) bool {
		items = append(items, pickItem{record: r, level: level, children: t.ChildCount(r.ID)})
		return true
	})
	return unitPicker{items: items, height: 15}
}

func (m unitPicker) Init() tea.Cmd {
	return nil
}

func (m unitPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "home", "g":
			m.cursor, m.offset = 0, 0
		case "enter":
			id := m.items[m.cursor].record.ID
			m.selected = &id
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m unitPicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Chart Root"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.items))
	for i := m.offset; i < end; i++ {
		it := m.items[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%s%s", cursor, strings.Repeat("  ", it.level), it.record.Name)
		meta := fmt.Sprintf("  %s #%d", it.record.Type, it.record.ID)
		if it.children > 0 {
			meta += fmt.Sprintf(" · %d sub-units", it.children)
		}

		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString(listDimStyle.Render(meta))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.items))))
	return b.String()
}

// pickUnit runs the picker on stderr and returns the chosen unit id, or nil
// when the user quits without choosing.
func pickUnit(t *hierarchy.Tree) (*int64, error) {
	p := tea.NewProgram(newUnitPicker(t), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	return final.(unitPicker).selected, nil
}
