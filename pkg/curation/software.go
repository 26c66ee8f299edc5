package curation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/machines"
	"github.com/agentstation/messcurator/pkg/softlists"
)

// SoftwareFilter describes the stage B selection of a system's software.
type SoftwareFilter struct {
	IncludeSoftlists []string
	ExcludeSoftlists []string
	Term             string
}

// Apply returns the entries that pass the allow-list, the deny-list and the
// free-text term (case-insensitive match on id or title). Order is kept.
func (f SoftwareFilter) Apply(entries []softlists.Entry) []softlists.Entry {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	out := make([]softlists.Entry, 0, len(entries))
	for _, e := range entries {
		if len(f.IncludeSoftlists) > 0 && !slices.Contains(f.IncludeSoftlists, e.Softlist) {
			continue
		}
		if slices.Contains(f.ExcludeSoftlists, e.Softlist) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(e.ID), term) &&
			!strings.Contains(strings.ToLower(e.Title), term) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// StatusFilter gates machines on the emulator's driver and emulation status.
// Empty fields accept any status.
type StatusFilter struct {
	Driver    string
	Emulation string
}

// Validate rejects status values the emulator never reports.
func (f StatusFilter) Validate() error {
	for field, v := range map[string]string{"driver-status": f.Driver, "emulation-status": f.Emulation} {
		if v != "" && !slices.Contains(constants.Statuses, v) {
			return errors.NewValidationError(field, v, fmt.Sprintf("must be one of %s", strings.Join(constants.Statuses, ", ")))
		}
	}
	return nil
}

// Active reports whether any status is required.
func (f StatusFilter) Active() bool {
	return f.Driver != "" || f.Emulation != ""
}

// Admit reports whether rec passes the filter. A nil record, a machine
// unknown to the catalog, only passes an inactive filter. The reason
// describes a rejection.
func (f StatusFilter) Admit(rec *machines.Record) (bool, string) {
	if !f.Active() {
		return true, ""
	}
	if rec == nil {
		return false, "machine not in catalog"
	}
	if f.Driver != "" && rec.DriverStatus != f.Driver {
		return false, fmt.Sprintf("driver status %q does not match %q", rec.DriverStatus, f.Driver)
	}
	if f.Emulation != "" && rec.EmulationStatus != f.Emulation {
		return false, fmt.Sprintf("emulation status %q does not match %q", rec.EmulationStatus, f.Emulation)
	}
	return true, ""
}
