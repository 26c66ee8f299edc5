// Package events carries structured progress notifications from the
// curation pipeline and the ROM reconciler to whatever renders them.
//
// Producers never write to stdout or stderr. They emit Events, each with an
// explicit severity, and a caller chooses the sinks: a zerolog logger, a
// colored console, a YAML stream or a Channel consumed by a terminal UI.
package events

import (
	"fmt"
	"time"
)

// Level is the severity of an event.
type Level int

const (
	// LevelDebug is detail only useful when diagnosing a run.
	LevelDebug Level = iota
	// LevelInfo is routine progress.
	LevelInfo
	// LevelSuccess marks a completed unit of work.
	LevelSuccess
	// LevelWarning is a recoverable problem, such as a placeholder archive.
	LevelWarning
	// LevelError is a failed unit of work. The batch continues.
	LevelError
)

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Event is one progress notification.
type Event struct {
	Time    time.Time
	Level   Level
	Message string
	// System is the machine the event concerns, if any.
	System string
	// Current and Total report i/total progress. Total is zero when the
	// event is not part of a counted sequence.
	Current int
	Total   int
	Err     error
}

// New creates an event stamped with the current time.
func New(level Level, format string, args ...any) Event {
	return Event{
		Time:    time.Now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	}
}

// Debugf creates a debug event.
func Debugf(format string, args ...any) Event { return New(LevelDebug, format, args...) }

// Infof creates an info event.
func Infof(format string, args ...any) Event { return New(LevelInfo, format, args...) }

// Successf creates a success event.
func Successf(format string, args ...any) Event { return New(LevelSuccess, format, args...) }

// Warnf creates a warning event.
func Warnf(format string, args ...any) Event { return New(LevelWarning, format, args...) }

// Errorf creates an error event.
func Errorf(format string, args ...any) Event { return New(LevelError, format, args...) }

// ForSystem returns a copy of the event scoped to a machine.
func (e Event) ForSystem(name string) Event {
	e.System = name
	return e
}

// Progress returns a copy of the event with i/total progress attached.
func (e Event) Progress(current, total int) Event {
	e.Current, e.Total = current, total
	return e
}

// WithError returns a copy of the event carrying an underlying error.
func (e Event) WithError(err error) Event {
	e.Err = err
	return e
}

// String renders the event as a single line.
func (e Event) String() string {
	msg := e.Message
	if e.Total > 0 {
		msg = fmt.Sprintf("[%d/%d] %s", e.Current, e.Total, msg)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}
