// Package emulator produces the catalog documents the curator consumes:
// the full machine list and the per-system software catalog. Exec runs the
// emulator binary, Cached memoizes documents for the life of a process and
// Static serves canned documents for tests and offline runs.
package emulator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/logging"
)

// Runner returns catalog documents or fails.
type Runner interface {
	// ListXML returns the full machine-list document.
	ListXML(ctx context.Context) ([]byte, error)
	// ListSoftware returns the software-catalog document of one system.
	ListSoftware(ctx context.Context, system string) ([]byte, error)
}

// Document root markers by operation.
var (
	machineListMarkers = []string{"<mame", "<machine"}
	softwareMarkers    = []string{"<softwarelist", "<mame", "<softwarelists"}
	unknownMarkers     = []string{"unknown system", "not supported"}
)

const (
	// excerptLen bounds the output kept in a ProcessError.
	excerptLen = 500
	// waitDelay bounds how long a killed emulator may hold its output open.
	waitDelay = 2 * time.Second
)

// Exec runs the emulator binary with its own directory as the working
// directory.
type Exec struct {
	Path string
	// Timeout bounds each call. Zero means no limit.
	Timeout time.Duration
	logger  *zerolog.Logger
}

// NewExec creates an Exec runner for the binary at path.
func NewExec(path string, timeout time.Duration, logger *zerolog.Logger) *Exec {
	if logger == nil {
		logger = logging.Default()
	}
	return &Exec{Path: path, Timeout: timeout, logger: logger}
}

// ListXML runs `<emulator> -listxml`.
func (e *Exec) ListXML(ctx context.Context) ([]byte, error) {
	return e.run(ctx, "listxml", machineListMarkers, "-listxml")
}

// ListSoftware runs `<emulator> -listsoftware <system>`.
func (e *Exec) ListSoftware(ctx context.Context, system string) ([]byte, error) {
	if system == "" {
		return nil, errors.NewValidationError("system", system, "is required")
	}
	return e.run(ctx, "listsoftware", softwareMarkers, "-listsoftware", system)
}

func (e *Exec) run(ctx context.Context, op string, markers []string, args ...string) ([]byte, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	command := e.Path + " " + strings.Join(args, " ")
	e.logger.Debug().Str("command", command).Msg("running emulator")

	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Dir = filepath.Dir(e.Path)
	cmd.WaitDelay = waitDelay
	out, err := cmd.CombinedOutput()

	if ctx.Err() != nil && err != nil {
		return nil, &errors.ProcessError{
			Operation: op,
			Command:   command,
			Err:       fmt.Errorf("%w: %w", errors.ErrCanceled, ctx.Err()),
		}
	}

	if verr := validate(out, markers); verr != nil {
		perr := &errors.ProcessError{
			Operation: op,
			Command:   command,
			Output:    excerpt(out),
			Err:       verr,
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			perr.ExitCode = exitErr.ExitCode()
		} else if err != nil {
			perr.Err = fmt.Errorf("%w: %w", verr, err)
		}
		return nil, perr
	}
	return out, nil
}

// validate checks that out is a catalog document carrying one of the root
// markers. Empty output, marker-free output and unknown-system messages
// are failures.
func validate(out []byte, markers []string) error {
	if len(bytes.TrimSpace(out)) == 0 {
		return errors.New("empty output")
	}
	for _, m := range markers {
		if bytes.Contains(out, []byte(m)) {
			return nil
		}
	}
	lower := strings.ToLower(string(out))
	for _, m := range unknownMarkers {
		if strings.Contains(lower, m) {
			return errors.New("system not found or has no software lists")
		}
	}
	return errors.New("output is not a catalog document")
}

func excerpt(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > excerptLen {
		return s[:excerptLen] + "..."
	}
	return s
}
