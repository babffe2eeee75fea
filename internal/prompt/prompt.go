// Package prompt asks the user for the SELECT statement to script.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ErrCancelled is returned when the user leaves the prompt without a query
var ErrCancelled = errors.New("query was cancelled")

var (
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	styleHelp   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type model struct {
	input     textinput.Model
	title     string
	done      bool
	cancelled bool
}

func newModel(title, defaultQuery string) model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.SetValue(defaultQuery)
	ti.CursorEnd()
	ti.Focus()

	return model{input: ti, title: title}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n%s\n",
		styleHeader.Render(m.title),
		m.input.View(),
		styleHelp.Render("Press [Enter] to accept the default of all data or edit the SQL statement to select subsets of data. [Esc] cancels."),
	)
}

// query returns the accepted statement or ErrCancelled
func (m model) query() (string, error) {
	if m.cancelled || !m.done {
		return "", ErrCancelled
	}
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		return "", ErrCancelled
	}
	return q, nil
}

// Query runs the interactive prompt prefilled with defaultQuery
func Query(in io.Reader, out io.Writer, title, defaultQuery string) (string, error) {
	p := tea.NewProgram(newModel(title, defaultQuery), tea.WithInput(in), tea.WithOutput(out))

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("failed to run prompt: %w", err)
	}

	return final.(model).query()
}
