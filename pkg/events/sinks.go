package events

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Log writes each event as a zerolog line at the matching severity.
// Success events are logged at info level with success=true.
func Log(logger *zerolog.Logger) Emitter {
	return Func(func(e Event) {
		var ev *zerolog.Event
		switch e.Level {
		case LevelDebug:
			ev = logger.Debug()
		case LevelWarning:
			ev = logger.Warn()
		case LevelError:
			ev = logger.Error()
		case LevelSuccess:
			ev = logger.Info().Bool("success", true)
		default:
			ev = logger.Info()
		}
		if e.System != "" {
			ev = ev.Str("system", e.System)
		}
		if e.Total > 0 {
			ev = ev.Int("current", e.Current).Int("total", e.Total)
		}
		if e.Err != nil {
			ev = ev.Err(e.Err)
		}
		ev.Msg(e.Message)
	})
}

var (
	consoleSuccess = color.New(color.FgGreen)
	consoleWarning = color.New(color.FgYellow)
	consoleError   = color.New(color.FgRed, color.Bold)
	consoleDebug   = color.New(color.Faint)
)

// Console renders events as colored lines. Color follows fatih/color's
// terminal detection and NO_COLOR.
func Console(w io.Writer) Emitter {
	var mu sync.Mutex
	return Func(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		line := e.String()
		switch e.Level {
		case LevelSuccess:
			consoleSuccess.Fprintf(w, "✓ %s\n", line)
		case LevelWarning:
			consoleWarning.Fprintf(w, "⚠️  %s\n", line)
		case LevelError:
			consoleError.Fprintf(w, "✗ %s\n", line)
		case LevelDebug:
			consoleDebug.Fprintf(w, "%s\n", line)
		default:
			fmt.Fprintln(w, line)
		}
	})
}

// eventData is the structured form of an event.
type eventData struct {
	Time    string `yaml:"time"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
	System  string `yaml:"system,omitempty"`
	Current int    `yaml:"current,omitempty"`
	Total   int    `yaml:"total,omitempty"`
	Error   string `yaml:"error,omitempty"`
}

// YAML writes events as a stream of YAML documents, one per event.
// Encoding failures are ignored; the stream is best effort.
func YAML(w io.Writer) Emitter {
	var mu sync.Mutex
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return Func(func(e Event) {
		data := eventData{
			Time:    e.Time.Format("2006-01-02T15:04:05Z07:00"),
			Level:   e.Level.String(),
			Message: e.Message,
			System:  e.System,
			Current: e.Current,
			Total:   e.Total,
		}
		if e.Err != nil {
			data.Error = e.Err.Error()
		}
		mu.Lock()
		defer mu.Unlock()
		_ = enc.Encode(data)
	})
}
