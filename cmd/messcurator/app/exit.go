package app

import (
	"io"
	"os"

	"github.com/agentstation/messcurator/pkg/errors"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitPartial = 2
)

// ExitCode maps an error to the process exit status: 0 on success, 2 when
// the command completed with some items failed (missing ROMs, systems the
// emulator rejected), and 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsPartial(err):
		return ExitPartial
	default:
		return ExitError
	}
}

// ExitOnError prints err and exits with its exit code. It returns when err
// is nil. This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	printError(os.Stderr, err)
	os.Exit(ExitCode(err))
}

func printError(w io.Writer, err error) {
	prefix := "Error: "
	if errors.IsPartial(err) {
		prefix = "Warning: "
	}
	//nolint:errcheck // Ignoring write error since we're exiting anyway
	_, _ = io.WriteString(w, prefix+err.Error()+"\n")
}
