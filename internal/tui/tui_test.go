package tui

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/events"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTracksProgress(t *testing.T) {
	m := NewModel("Copying ROMs", nil, nil, nil)

	m = update(t, m, EventMsg{Event: events.Infof("copied smb.zip").ForSystem("nes").Progress(1, 4)})
	m = update(t, m, EventMsg{Event: events.Warnf("placeholder for zelda").Progress(2, 4)})
	m = update(t, m, EventMsg{Event: events.Debugf("hidden")})

	assert.Equal(t, StateRunning, m.state)
	assert.Equal(t, 2, m.current)
	assert.Equal(t, 4, m.total)
	assert.Equal(t, 1, m.warnings)
	assert.Len(t, m.logs, 2, "debug events are not shown")

	view := m.View()
	assert.Contains(t, view, "Copying ROMs")
	assert.Contains(t, view, "2/4")
	assert.Contains(t, view, "placeholder for zelda")
	assert.Contains(t, view, "esc: cancel")
}

func TestModelKeepsRecentLogs(t *testing.T) {
	m := NewModel("Search", nil, nil, nil)
	for i := 0; i < maxLogs+5; i++ {
		m = update(t, m, EventMsg{Event: events.Infof("event %d", i)})
	}
	assert.Len(t, m.logs, maxLogs)
	assert.Equal(t, "event 5", m.logs[0].Message)
}

func TestModelDone(t *testing.T) {
	m := update(t, NewModel("Search", nil, nil, nil), DoneMsg{})
	assert.Equal(t, StateComplete, m.state)
	assert.NoError(t, m.Err())
	assert.Contains(t, m.View(), "q: quit")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)

	failed := update(t, NewModel("Search", nil, nil, nil), DoneMsg{Err: errors.New("emulator exited")})
	assert.Equal(t, StateError, failed.state)
	assert.EqualError(t, failed.Err(), "emulator exited")
	assert.Contains(t, failed.View(), "emulator exited")
}

func TestEscapeCancelsWhileRunning(t *testing.T) {
	canceled := false
	m := NewModel("Search", nil, nil, func() { canceled = true })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, canceled)
	assert.Nil(t, cmd)
	assert.Equal(t, StateRunning, next.(Model).state)
}

func TestWindowResizeClampsProgress(t *testing.T) {
	m := update(t, NewModel("Search", nil, nil, nil), tea.WindowSizeMsg{Width: 300})
	assert.Equal(t, 80, m.progress.Width)
	m = update(t, m, tea.WindowSizeMsg{Width: 10})
	assert.Equal(t, 20, m.progress.Width)
}

func TestRunWaitsForTaskAfterViewExits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var taskCanceled bool
	task := func(ctx context.Context, emit events.Emitter) error {
		// More events than the buffer holds; nothing renders them once the
		// view has exited.
		for i := 0; i < constants.EventBufferSize*2; i++ {
			emit.Emit(events.Infof("item %d", i))
		}
		taskCanceled = ctx.Err() != nil
		return errors.New("stopped")
	}

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, "Copying ROMs", task,
			tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutRenderer())
	}()

	select {
	case err := <-done:
		assert.EqualError(t, err, "stopped")
		assert.True(t, taskCanceled)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the view exited")
	}
}

func TestEscapeLeavesProgramRunning(t *testing.T) {
	taskCanceled := false
	m := NewModel("Search", nil, nil, func() { taskCanceled = true })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, taskCanceled)
	assert.Nil(t, cmd, "the view waits for the task to report done")

	done := update(t, next.(Model), DoneMsg{Err: errors.New("canceled")})
	assert.Equal(t, StateError, done.state)
	assert.Contains(t, done.View(), "canceled")
}
