package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sketchtower/pkg/errors"
	"github.com/matzehuels/sketchtower/pkg/pipeline"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// ArtboardListModel - Interactive artboard selection
// =============================================================================

// ArtboardListModel is the bubbletea model for picking one artboard.
type ArtboardListModel struct {
	Targets  []pipeline.Target
	Cursor   int
	Offset   int
	Height   int
	Selected *pipeline.Target
}

// NewArtboardListModel creates a list over targets.
func NewArtboardListModel(targets []pipeline.Target) ArtboardListModel {
	return ArtboardListModel{Targets: targets, Height: 15}
}

func (m ArtboardListModel) Init() tea.Cmd {
	return nil
}

func (m ArtboardListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Targets)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Targets) > 0 {
				t := m.Targets[m.Cursor]
				m.Selected = &t
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ArtboardListModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Select Artboard"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Targets))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		t := m.Targets[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		f := t.Artboard.Frame
		rows = append(rows, []string{
			cursor,
			t.Artboard.Name,
			t.Page.Name,
			fmt.Sprintf("%g×%g", f.Width, f.Height),
			fmt.Sprint(len(t.Artboard.Layers)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Artboard", "Page", "Size", "Layers").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Targets))))
	return b.String()
}

// pickArtboard runs the picker on in/out and returns the chosen target.
func pickArtboard(targets []pipeline.Target, in io.Reader, out io.Writer) (pipeline.Target, error) {
	if len(targets) == 0 {
		return pipeline.Target{}, errors.New(errors.ErrCodeNotFound, "no artboards to choose from")
	}
	final, err := tea.NewProgram(NewArtboardListModel(targets), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return pipeline.Target{}, errors.Wrap(errors.ErrCodeInternal, err, "artboard picker")
	}
	m, ok := final.(ArtboardListModel)
	if !ok || m.Selected == nil {
		return pipeline.Target{}, errors.New(errors.ErrCodeInvalidInput, "no artboard selected")
	}
	return *m.Selected, nil
}
