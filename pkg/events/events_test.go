package events_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/agentstation/messcurator/pkg/events"
	"github.com/agentstation/messcurator/pkg/logging"
)

func TestEventString(t *testing.T) {
	e := events.Infof("fetching %s", "nes").ForSystem("nes").Progress(2, 5)
	assert.Equal(t, "[2/5] fetching nes", e.String())
	assert.Equal(t, "nes", e.System)

	e = events.Errorf("listsoftware failed").WithError(errors.New("exit status 1"))
	assert.Equal(t, "listsoftware failed: exit status 1", e.String())
	assert.Equal(t, events.LevelError, e.Level)
	assert.False(t, e.Time.IsZero())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", events.LevelDebug.String())
	assert.Equal(t, "success", events.LevelSuccess.String())
	assert.Equal(t, "warning", events.LevelWarning.String())
	assert.Equal(t, "unknown(42)", events.Level(42).String())
}

func TestChannel(t *testing.T) {
	ch := events.NewChannel(4)

	var got []string
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range ch.Events() {
			got = append(got, e.Message)
		}
	}()

	for i := 0; i < 10; i++ {
		ch.Emit(events.Infof("event %d", i))
	}
	ch.Close()
	ch.Close()
	ch.Emit(events.Infof("after close"))
	wg.Wait()

	require.Len(t, got, 10)
	assert.Equal(t, "event 0", got[0])
	assert.Equal(t, "event 9", got[9])
}

func TestMultiAndRecorder(t *testing.T) {
	a, b := &events.Recorder{}, &events.Recorder{}
	m := events.Multi(a, nil, b)
	m.Emit(events.Warnf("placeholder"))
	m.Emit(events.Successf("copied"))

	assert.Len(t, a.Events(), 2)
	assert.Equal(t, 1, b.Count(events.LevelWarning))
	assert.Equal(t, 1, b.Count(events.LevelSuccess))
	assert.NotPanics(t, func() { events.Or(nil).Emit(events.Infof("dropped")) })
}

func TestLogSink(t *testing.T) {
	tl := logging.NewTestLogger(t)
	sink := events.Log(tl.Logger)

	sink.Emit(events.Errorf("system failed").ForSystem("jak_totm").WithError(errors.New("boom")))
	sink.Emit(events.Successf("done"))

	assert.True(t, tl.Contains(`"level":"error"`))
	assert.True(t, tl.Contains(`"system":"jak_totm"`))
	assert.True(t, tl.Contains(`"error":"boom"`))
	assert.True(t, tl.Contains(`"success":true`))
}

func TestConsoleSink(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	sink := events.Console(&buf)
	sink.Emit(events.Infof("plain"))
	sink.Emit(events.Successf("copied smb"))
	sink.Emit(events.Errorf("bad"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "plain", lines[0])
	assert.Equal(t, "✓ copied smb", lines[1])
	assert.Equal(t, "✗ bad", lines[2])
}

func TestYAMLSink(t *testing.T) {
	var buf bytes.Buffer
	sink := events.YAML(&buf)
	sink.Emit(events.Infof("one").Progress(1, 2))
	sink.Emit(events.Warnf("two").ForSystem("nes"))

	dec := yaml.NewDecoder(&buf)
	var docs []map[string]any
	for {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			break
		}
		docs = append(docs, m)
	}
	require.Len(t, docs, 2)
	assert.Equal(t, "one", docs[0]["message"])
	assert.Equal(t, 2, docs[0]["total"])
	assert.Equal(t, "warning", docs[1]["level"])
	assert.Equal(t, "nes", docs[1]["system"])
}
