// Package status reports the progress of a scripting run.
package status

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// State is a task state transition
type State int

const (
	InProgress State = iota
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Reporter receives status transitions around a scripting run
type Reporter interface {
	Update(state State, message string)
}

// Discard drops every update
var Discard Reporter = discard{}

type discard struct{}

func (discard) Update(State, string) {}

var (
	styleProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	styleSuccess  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleFailure  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleTask     = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
)

// TerminalReporter writes one styled line per update
type TerminalReporter struct {
	mu   sync.Mutex
	w    io.Writer
	task string
}

// NewTerminalReporter creates a reporter for the named task
func NewTerminalReporter(w io.Writer, task string) *TerminalReporter {
	return &TerminalReporter{w: w, task: task}
}

// Update writes the transition, e.g. "Scripting Data for [dbo].[T]: Getting records..."
func (r *TerminalReporter) Update(state State, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var marker string
	switch state {
	case Succeeded:
		marker = styleSuccess.Render("✓")
	case Failed:
		marker = styleFailure.Render("✗")
	default:
		marker = styleProgress.Render("…")
	}

	if message == "" {
		message = state.String()
	}
	_, _ = fmt.Fprintf(r.w, "%s %s %s\n", marker, styleTask.Render(r.task+":"), message)
}

// Scripted formats the success message for a table
func Scripted(rows, failed int) string {
	msg := fmt.Sprintf("Scripted %s %s", humanize.Comma(int64(rows)), plural(rows, "row", "rows"))
	if failed > 0 {
		msg += fmt.Sprintf(" (%s could not be formatted)", humanize.Comma(int64(failed)))
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
