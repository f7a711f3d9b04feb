// Package tui implements the terminal review screen shown before a run is
// written to the summary sheet.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/studio-ledger/internal/engine"
	"github.com/Veraticus/studio-ledger/internal/model"
	"github.com/Veraticus/studio-ledger/internal/register"
	"github.com/Veraticus/studio-ledger/internal/report"
	"github.com/Veraticus/studio-ledger/internal/tui/themes"
)

// Decision is the operator's answer.
type Decision int

// Possible decisions.
const (
	DecisionPending Decision = iota
	DecisionConfirm
	DecisionCancel
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	tableHeight   = 8
)

// Model is the bubbletea model of the review screen.
type Model struct {
	result   *engine.Result
	dayTexts []string
	totals   string
	keys     KeyMap
	theme    themes.Theme
	table    table.Model
	report   viewport.Model
	help     help.Model
	decision Decision
	width    int
	height   int
}

// NewModel builds the screen for result.
func NewModel(result *engine.Result, layout report.Layout, theme themes.Theme) Model {
	m := Model{
		result: result,
		keys:   DefaultKeyMap(),
		theme:  theme,
		help:   help.New(),
		width:  defaultWidth,
		height: defaultHeight,
	}

	rows := make([]table.Row, 0, len(result.Days))
	for _, s := range result.Days {
		var b strings.Builder
		_ = report.WriteDay(&b, s, layout)
		m.dayTexts = append(m.dayTexts, b.String())

		rows = append(rows, table.Row{
			s.Date.Format(register.DateLayout),
			report.FormatHours(s.HoursFor(model.CategoryPhoto)),
			report.FormatHours(s.HoursFor(model.CategoryVideoMaster)),
			strconv.Itoa(s.PrepayPhoto + s.PrepayVideo),
			strconv.Itoa(s.FactPhoto + s.FactVideo),
			strconv.Itoa(s.SchoolRevenue),
			strconv.Itoa(s.FactAncillary),
		})
	}

	var tb strings.Builder
	_ = report.WriteTotals(&tb, result.Totals)
	m.totals = tb.String()

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Day", Width: 12},
			{Title: "Photo h", Width: 8},
			{Title: "Video h", Width: 8},
			{Title: "Prepaid", Width: 9},
			{Title: "Fact", Width: 9},
			{Title: "School", Width: 8},
			{Title: "Extras", Width: 8},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)
	styles := table.DefaultStyles()
	styles.Header = theme.Header
	styles.Selected = theme.Selected
	t.SetStyles(styles)
	m.table = t

	m.report = viewport.New(defaultWidth, m.reportHeight())
	m.syncReport()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.report.Width = msg.Width
		m.report.Height = m.reportHeight()
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Cancel):
			m.decision = DecisionCancel
			return m, tea.Quit
		case key.Matches(msg, m.keys.Confirm):
			m.decision = DecisionConfirm
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.table.MoveUp(1)
			m.syncReport()
		case key.Matches(msg, m.keys.Down):
			m.table.MoveDown(1)
			m.syncReport()
		case key.Matches(msg, m.keys.ScrollUp):
			m.report.SetYOffset(m.report.YOffset - m.report.Height)
		case key.Matches(msg, m.keys.ScrollDown):
			m.report.SetYOffset(m.report.YOffset + m.report.Height)
		case key.Matches(msg, m.keys.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	title := m.theme.Title.Render("Review before writing")
	sub := m.theme.Subtitle.Render(fmt.Sprintf("%s – %s · run %s",
		m.result.Range.Start.Format(register.DateLayout),
		m.result.Range.End.Format(register.DateLayout),
		m.result.RunID))

	body := m.theme.BorderedBox.Render(m.report.View())
	if len(m.dayTexts) == 0 {
		body = m.theme.Warning.Render("No days in the period.")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		sub,
		m.table.View(),
		body,
		m.help.View(m.keys),
	)
}

// Decision returns the operator's answer.
func (m Model) Decision() Decision {
	return m.decision
}

// SelectedDay is the index of the highlighted day.
func (m Model) SelectedDay() int {
	return m.table.Cursor()
}

func (m *Model) syncReport() {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.dayTexts) {
		m.report.SetContent(m.totals)
		return
	}
	m.report.SetContent(m.dayTexts[i] + "\n" + m.totals)
	m.report.GotoTop()
}

func (m Model) reportHeight() int {
	h := m.height - tableHeight - 10
	if h < 5 {
		h = 5
	}
	return h
}
