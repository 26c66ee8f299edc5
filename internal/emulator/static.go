package emulator

import (
	"context"
	"sync"

	"github.com/agentstation/messcurator/pkg/errors"
)

// Static serves canned documents. A system without a document fails the way
// the emulator does for an unknown system.
type Static struct {
	MachineList []byte
	Software    map[string][]byte
	// Failures forces an error for specific systems.
	Failures map[string]error

	mu    sync.Mutex
	calls []string
}

// ListXML returns MachineList.
func (s *Static) ListXML(context.Context) ([]byte, error) {
	s.record("-listxml")
	if err := validate(s.MachineList, machineListMarkers); err != nil {
		return nil, errors.NewProcessError("listxml", "static -listxml", excerpt(s.MachineList), err)
	}
	return s.MachineList, nil
}

// ListSoftware returns the document registered for system.
func (s *Static) ListSoftware(ctx context.Context, system string) ([]byte, error) {
	s.record(system)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.Failures[system]; ok {
		return nil, errors.NewProcessError("listsoftware", "static -listsoftware "+system, "", err)
	}
	out := s.Software[system]
	if err := validate(out, softwareMarkers); err != nil {
		return nil, errors.NewProcessError("listsoftware", "static -listsoftware "+system,
			"Unknown system '"+system+"'", err)
	}
	return out, nil
}

// Calls returns the systems requested so far, in order. A machine-list
// request is recorded as "-listxml".
func (s *Static) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Static) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}
