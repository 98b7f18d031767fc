package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/odebench/internal/harness"
	"github.com/san-kum/odebench/internal/viz"
)

// ErrInterrupted is returned when the view is closed before the comparison
// finishes.
var ErrInterrupted = errors.New("tui: interrupted")

var (
	cyan  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type tickMsg time.Time

// doneMsg carries one method completion from the harness observer.
type doneMsg struct {
	policy  string
	outcome harness.Outcome
}

type finishedMsg struct {
	cmp *harness.Comparison
	err error
}

// Runner performs the comparison. Observers registered on the harness
// before the runner is called must see every completion.
type Runner func(ctx context.Context) (*harness.Comparison, error)

type model struct {
	title    string
	methods  []string
	done     map[string]map[string]harness.Outcome
	started  time.Time
	elapsed  time.Duration
	frame    int
	cmp      *harness.Comparison
	err      error
	finished bool
	quit     bool
}

func newModel(title string, methods []string) model {
	return model{
		title:   title,
		methods: methods,
		done: map[string]map[string]harness.Outcome{
			harness.PolicyConcurrent: {},
			harness.PolicySerial:     {},
		},
		started: time.Now(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.finished {
				m.quit = true
			}
			return m, tea.Quit
		}
	case tickMsg:
		if m.finished {
			return m, nil
		}
		m.frame++
		m.elapsed = time.Since(m.started)
		return m, tick()
	case doneMsg:
		if byMethod, ok := m.done[msg.policy]; ok {
			byMethod[msg.outcome.Method] = msg.outcome
		}
	case finishedMsg:
		m.finished = true
		m.cmp = msg.cmp
		m.err = msg.err
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	}
	return m, nil
}

// phase is the policy currently running, or "" once both have finished.
func (m model) phase() string {
	if m.finished {
		return ""
	}
	if len(m.done[harness.PolicyConcurrent]) < len(m.methods) {
		return harness.PolicyConcurrent
	}
	return harness.PolicySerial
}

func (m model) progress() float64 {
	total := 2 * len(m.methods)
	if total == 0 {
		return 1
	}
	n := len(m.done[harness.PolicyConcurrent]) + len(m.done[harness.PolicySerial])
	return float64(n) / float64(total)
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(cyan.Render(m.title))
	b.WriteString(dim.Render(fmt.Sprintf("  %.1fs", m.elapsed.Seconds())))
	b.WriteString("\n\n")

	if m.finished && m.cmp != nil {
		b.WriteString(viz.RenderReport(m.title, m.cmp))
		return b.String()
	}

	for _, pol := range []string{harness.PolicyConcurrent, harness.PolicySerial} {
		marker := " "
		if pol == m.phase() {
			marker = viz.Spinner(m.frame)
		}
		b.WriteString(marker + " " + white.Render(pol) + "\n")
		for _, name := range m.methods {
			o, ok := m.done[pol][name]
			switch {
			case !ok:
				b.WriteString(dim.Render(fmt.Sprintf("    %-8s waiting", name)))
			case !o.OK():
				b.WriteString(red.Render(fmt.Sprintf("    %-8s failed", name)))
			default:
				b.WriteString(green.Render(fmt.Sprintf("    %-8s %s", name, viz.FormatDuration(o.Result.Elapsed))))
				b.WriteString(dim.Render("  " + viz.FormatValue(o.Result.Value)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(viz.ProgressBar(m.progress(), 40))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(red.Render(m.err.Error()) + "\n")
	}
	b.WriteString(viz.KeyHint.Render("q quit"))
	return b.String()
}

// Watch runs run behind a live view fed by h's observer. It returns the
// comparison once both policies finish, or ErrInterrupted if the user quits
// first.
func Watch(ctx context.Context, title string, h *harness.Harness, run Runner, opts ...tea.ProgramOption) (*harness.Comparison, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(title, h.Methods()), opts...)
	h.AddObserver(func(policy string, o harness.Outcome) {
		p.Send(doneMsg{policy: policy, outcome: o})
	})

	go func() {
		cmp, err := run(ctx)
		p.Send(finishedMsg{cmp: cmp, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(model)
	if m.quit {
		return nil, ErrInterrupted
	}
	return m.cmp, m.err
}
