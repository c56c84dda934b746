// Package tui renders a live view of a training run: the loss trajectory as
// it is evaluated, the running best, and the final status. It is fed through
// the loss observer hook and never touches the optimization itself.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	graphWidth  = 70
	graphHeight = 12
	historyCap  = 4096
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// EvalMsg carries one completed loss evaluation.
type EvalMsg struct {
	Eval  int
	Value float64
}

// DoneMsg signals the end of the run.
type DoneMsg struct {
	Status string
	Loss   float64
}

type Model struct {
	title   string
	history []float64
	best    float64
	evals   int
	done    bool
	status  string
}

func NewModel(title string) Model {
	return Model{title: title, best: math.Inf(1)}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case EvalMsg:
		m.evals = msg.Eval
		if msg.Value < m.best {
			m.best = msg.Value
		}
		m.history = append(m.history, msg.Value)
		if len(m.history) > historyCap {
			m.history = m.history[len(m.history)-historyCap:]
		}
	case DoneMsg:
		m.done = true
		m.status = msg.Status
		m.best = msg.Loss
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("qfit "+m.title) + "\n")

	if len(m.history) >= 2 {
		window := m.history
		if len(window) > graphWidth*4 {
			window = window[len(window)-graphWidth*4:]
		}
		plot := asciigraph.Plot(logScale(window),
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("log10 loss"))
		b.WriteString(graphStyle.Render(plot) + "\n")
	} else {
		b.WriteString(graphStyle.Render("waiting for evaluations...") + "\n")
	}

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("evaluations", fmt.Sprintf("%d", m.evals))
	if !math.IsInf(m.best, 1) {
		row("best loss", fmt.Sprintf("%.6g", m.best))
	}
	if m.done {
		b.WriteString(doneStyle.Render("finished: "+m.status) + "\n")
		b.WriteString(helpStyle.Render("press q to exit"))
	} else {
		b.WriteString(helpStyle.Render("training... press q to abort the view"))
	}
	return b.String()
}

// logScale maps losses to log10 so early large values do not flatten the
// tail of the plot; non-positive values clamp to the smallest positive seen.
func logScale(values []float64) []float64 {
	floor := math.Inf(1)
	for _, v := range values {
		if v > 0 && v < floor {
			floor = v
		}
	}
	if math.IsInf(floor, 1) {
		floor = 1e-16
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if v <= 0 {
			v = floor
		}
		out[i] = math.Log10(v)
	}
	return out
}
