package platforms

import (
	"strings"

	"github.com/agentstation/messcurator/pkg/errors"
)

// Source tells where a resolved command came from.
type Source int

const (
	// SourceNone means no override applies.
	SourceNone Source = iota
	// SourceSoftlistDefault is the per-softlist default.
	SourceSoftlistDefault
	// SourceSoftware is a per-software override.
	SourceSoftware
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case SourceSoftlistDefault:
		return "softlist-default"
	case SourceSoftware:
		return "software"
	default:
		return "none"
	}
}

// Overrides holds the command-line overrides to attach while assembling
// system entries.
type Overrides struct {
	SoftlistDefaults map[string]string
	Software         map[string]map[string]string
}

// Empty reports whether no override is registered.
func (o *Overrides) Empty() bool {
	return o == nil || (len(o.SoftlistDefaults) == 0 && len(o.Software) == 0)
}

// SetDefault registers the default command of a softlist.
func (o *Overrides) SetDefault(softlist, cmd string) {
	if o.SoftlistDefaults == nil {
		o.SoftlistDefaults = make(map[string]string)
	}
	o.SoftlistDefaults[softlist] = cmd
}

// SetSoftware registers the command of one software id.
func (o *Overrides) SetSoftware(softlist, id, cmd string) {
	if o.Software == nil {
		o.Software = make(map[string]map[string]string)
	}
	if o.Software[softlist] == nil {
		o.Software[softlist] = make(map[string]string)
	}
	o.Software[softlist][id] = cmd
}

// Resolve returns the command for (softlist, id): the per-software override
// if present, else the softlist default, else none.
func (o *Overrides) Resolve(softlist, id string) (string, Source) {
	if o == nil {
		return "", SourceNone
	}
	if cmd, ok := o.Software[softlist][id]; ok {
		return cmd, SourceSoftware
	}
	if cmd, ok := o.SoftlistDefaults[softlist]; ok {
		return cmd, SourceSoftlistDefault
	}
	return "", SourceNone
}

// ParseSoftlistOverride parses "softlist=command".
func ParseSoftlistOverride(s string) (softlist, cmd string, err error) {
	softlist, cmd, ok := strings.Cut(s, "=")
	softlist = strings.TrimSpace(softlist)
	if !ok || softlist == "" {
		return "", "", errors.NewValidationError("softlist-command", s, `expected "softlist=command"`)
	}
	return softlist, cmd, nil
}

// ParseSoftwareOverride parses "softlist:id=command".
func ParseSoftwareOverride(s string) (softlist, id, cmd string, err error) {
	target, cmd, ok := strings.Cut(s, "=")
	softlist, id, ok2 := strings.Cut(target, ":")
	softlist, id = strings.TrimSpace(softlist), strings.TrimSpace(id)
	if !ok || !ok2 || softlist == "" || id == "" {
		return "", "", "", errors.NewValidationError("software-command", s, `expected "softlist:id=command"`)
	}
	return softlist, id, cmd, nil
}

// ResolveIn looks up the command for (softlist, id) in a stored system
// entry, with the same precedence as Resolve.
func (s *SystemEntry) ResolveIn(softlist, id string) (string, Source) {
	if s.Details == nil {
		return "", SourceNone
	}
	cmds := s.Details.SoftwareConfigs[softlist]
	if cmd, ok := cmds[id]; ok && id != DefaultConfigKey {
		return cmd, SourceSoftware
	}
	if cmd, ok := cmds[DefaultConfigKey]; ok {
		return cmd, SourceSoftlistDefault
	}
	return "", SourceNone
}
