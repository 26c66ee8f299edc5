// Package tui provides a Bubble Tea progress view for long-running curator
// operations. The operation runs on a background goroutine and reports
// through an events.Channel the view subscribes to.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/events"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// maxLogs is the number of recent events kept on screen.
const maxLogs = 12

// State is the phase of the operation.
type State int

// Phases.
const (
	StateRunning State = iota
	StateComplete
	StateError
)

// Task is the operation shown by the view. It must report through emit.
type Task func(ctx context.Context, emit events.Emitter) error

type (
	// EventMsg carries one progress event.
	EventMsg struct{ Event events.Event }

	// DoneMsg is sent when the task returns.
	DoneMsg struct{ Err error }

	// closedMsg is sent once the event channel is drained.
	closedMsg struct{}
)

// Model is the Bubble Tea model.
type Model struct {
	title    string
	state    State
	spinner  spinner.Model
	progress progress.Model
	logs     []events.Event
	current  int
	total    int
	warnings int
	errors   int
	err      error
	cancel   context.CancelFunc
	source   <-chan events.Event
	start    tea.Cmd
	closed   bool
}

// NewModel creates the view for a task whose events arrive on source.
// start runs the task and returns a DoneMsg.
func NewModel(title string, source <-chan events.Event, start tea.Cmd, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		title:    title,
		spinner:  sp,
		progress: prog,
		source:   source,
		start:    start,
		cancel:   cancel,
	}
}

// Init starts the task, the spinner and the event subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start, waitForEvent(m.source))
}

func waitForEvent(ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return EventMsg{Event: e}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.state == StateRunning {
				if m.cancel != nil {
					m.cancel()
				}
				return m, nil
			}
			return m, tea.Quit
		case "q", "enter":
			if m.state != StateRunning {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case EventMsg:
		m.record(msg.Event)
		if m.total > 0 {
			cmds = append(cmds, m.progress.SetPercent(float64(m.current)/float64(m.total)))
		}
		cmds = append(cmds, waitForEvent(m.source))

	case closedMsg:
		m.closed = true

	case DoneMsg:
		m.err = msg.Err
		if msg.Err != nil {
			m.state = StateError
		} else {
			m.state = StateComplete
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) record(e events.Event) {
	switch e.Level {
	case events.LevelWarning:
		m.warnings++
	case events.LevelError:
		m.errors++
	}
	if e.Total > 0 {
		m.current, m.total = e.Current, e.Total
	}
	if e.Level == events.LevelDebug {
		return
	}
	m.logs = append(m.logs, e)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Err returns the task error once the task is done.
func (m Model) Err() error { return m.err }

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	switch m.state {
	case StateRunning:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		if m.total > 0 {
			b.WriteString(infoStyle.Render(fmt.Sprintf("%d/%d", m.current, m.total)))
			b.WriteString("\n")
			b.WriteString(m.progress.ViewAs(float64(m.current) / float64(m.total)))
		} else {
			b.WriteString(infoStyle.Render("working..."))
		}
		b.WriteString("\n\n")
	case StateComplete:
		b.WriteString(boxStyle.Render(fmt.Sprintf("Done\n\nWarnings: %d\nErrors: %d", m.warnings, m.errors)))
		b.WriteString("\n\n")
	case StateError:
		b.WriteString(errorStyle.Render("Failed: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())
	b.WriteString("\n")
	if m.state == StateRunning {
		b.WriteString(dimStyle.Render("esc: cancel"))
	} else {
		b.WriteString(dimStyle.Render("q: quit"))
	}
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder
	for _, e := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch e.Level {
		case events.LevelError:
			style, prefix = errorStyle, "✗"
		case events.LevelWarning:
			style, prefix = warningStyle, "!"
		case events.LevelSuccess:
			style, prefix = successStyle, "✓"
		case events.LevelInfo:
			style, prefix = infoStyle, "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + e.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// Run shows the view while task runs and returns the task's error.
func Run(ctx context.Context, title string, task Task) error {
	return run(ctx, title, task)
}

func run(ctx context.Context, title string, task Task, opts ...tea.ProgramOption) error {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := events.NewChannel(constants.EventBufferSize)
	finished := make(chan struct{})
	var taskErr error
	go func() {
		defer close(finished)
		taskErr = task(taskCtx, ch)
		ch.Close()
	}()
	wait := func() tea.Msg {
		<-finished
		return DoneMsg{Err: taskErr}
	}

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewModel(title, ch.Events(), wait, cancel), opts...).Run()

	// The view can exit before the task does; stop it and drain what it
	// still emits.
	cancel()
	for range ch.Events() {
	}
	<-finished

	if taskErr != nil {
		return taskErr
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
