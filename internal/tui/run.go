package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/studio-ledger/internal/engine"
	"github.com/Veraticus/studio-ledger/internal/report"
	"github.com/Veraticus/studio-ledger/internal/tui/themes"
)

// Reviewer shows the review screen and reports the operator's decision.
type Reviewer struct {
	input  io.Reader
	output io.Writer
	layout report.Layout
	theme  themes.Theme
}

var _ engine.Confirmer = (*Reviewer)(nil)

// NewReviewer renders with layout on the given terminal streams. Nil streams
// use the process terminal.
func NewReviewer(layout report.Layout, input io.Reader, output io.Writer) *Reviewer {
	return &Reviewer{
		input:  input,
		output: output,
		layout: layout,
		theme:  themes.Default,
	}
}

// Confirm runs the screen until the operator confirms or cancels.
func (r *Reviewer) Confirm(ctx context.Context, result *engine.Result) (bool, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if r.input != nil {
		opts = append(opts, tea.WithInput(r.input))
	}
	if r.output != nil {
		opts = append(opts, tea.WithOutput(r.output))
	}

	final, err := tea.NewProgram(NewModel(result, r.layout, r.theme), opts...).Run()
	if err != nil {
		return false, fmt.Errorf("review screen failed: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return false, fmt.Errorf("review screen returned %T", final)
	}
	return m.Decision() == DecisionConfirm, nil
}
