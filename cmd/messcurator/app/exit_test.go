package app

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/messcurator/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"partial", errors.NewPartialError("copy-roms", 2, 10), ExitPartial},
		{"wrapped partial", fmt.Errorf("run: %w", errors.NewPartialError("search", 1, 3)), ExitPartial},
		{"validation", errors.NewValidationError("format", "xml", "unknown"), ExitError},
		{"not found", errors.NewNotFoundError("platform", "snes"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.NewPartialError("copy-roms", 1, 4))
	assert.Contains(t, buf.String(), "Warning: ")

	buf.Reset()
	printError(&buf, errors.NewNotFoundError("platform", "snes"))
	assert.Contains(t, buf.String(), "Error: ")
	assert.Contains(t, buf.String(), "snes")
}

func TestExitOnErrorNil(_ *testing.T) {
	// returns instead of exiting
	ExitOnError(nil)
}
