package messcurator

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/events"
	"github.com/agentstation/messcurator/pkg/machines"
)

// Names of the documents written by Split.
const (
	SplitAll        = "mess.xml"
	SplitSoftlist   = "mess-softlist.xml"
	SplitNoSoftlist = "mess-nosoftlist.xml"
)

// SplitRequest configures Split.
type SplitRequest struct {
	// OutputDir receives the three documents. Empty means the directory of
	// the machine list.
	OutputDir string
	InputXML  string
}

// SplitReport counts the machines written to each document.
type SplitReport struct {
	Files      map[string]string `json:"files" yaml:"files"`
	All        int               `json:"all" yaml:"all"`
	Softlist   int               `json:"softlist" yaml:"softlist"`
	NoSoftlist int               `json:"nosoftlist" yaml:"nosoftlist"`
}

// Split filters the full machine list down to the machines named in the
// folder ini and writes it three times: all of them, those declaring a
// software list and those declaring none.
func (c *client) Split(ctx context.Context, req SplitRequest) (*SplitReport, error) {
	names, err := c.folderNames()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.NewValidationError("folder_ini", c.cfg.FolderINI, "lists no machines")
	}
	inIni := make(map[string]struct{}, len(names))
	for _, n := range names {
		inIni[n] = struct{}{}
	}

	ctx, logger := c.begin(ctx, "split")
	// loading generates the machine list when it is absent
	source := req.InputXML
	if source == "" {
		source = c.cfg.MachineXML
	}
	if _, err := c.catalog(ctx, logger, req.InputXML); err != nil {
		return nil, err
	}

	dir := req.OutputDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	if err := c.fs().MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("mkdir", dir, err)
	}

	in, err := c.fs().Open(source)
	if err != nil {
		return nil, errors.WrapIO("open", source, err)
	}
	defer in.Close()

	report := &SplitReport{Files: map[string]string{
		SplitAll:        filepath.Join(dir, SplitAll),
		SplitSoftlist:   filepath.Join(dir, SplitSoftlist),
		SplitNoSoftlist: filepath.Join(dir, SplitNoSoftlist),
	}}

	var files []afero.File
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	create := func(name string) (afero.File, error) {
		f, err := c.fs().Create(report.Files[name])
		if err != nil {
			return nil, errors.WrapIO("create", report.Files[name], err)
		}
		files = append(files, f)
		return f, nil
	}
	allW, err := create(SplitAll)
	if err != nil {
		return nil, err
	}
	withW, err := create(SplitSoftlist)
	if err != nil {
		return nil, err
	}
	withoutW, err := create(SplitNoSoftlist)
	if err != nil {
		return nil, err
	}

	listed := func(m machines.RawMachine) bool {
		_, ok := inIni[m.Name]
		return ok
	}
	all := &machines.SplitTarget{W: allW, Keep: listed}
	with := &machines.SplitTarget{W: withW, Keep: func(m machines.RawMachine) bool {
		return listed(m) && m.HasSoftlists
	}}
	without := &machines.SplitTarget{W: withoutW, Keep: func(m machines.RawMachine) bool {
		return listed(m) && !m.HasSoftlists
	}}
	if err := machines.Split(in, all, with, without); err != nil {
		return nil, err
	}

	report.All, report.Softlist, report.NoSoftlist = all.Count, with.Count, without.Count
	logger.Info().
		Int("all", report.All).
		Int("softlist", report.Softlist).
		Int("nosoftlist", report.NoSoftlist).
		Str("dir", dir).
		Msg("Machine list split")
	c.emit(events.Successf("wrote %d machines (%d with software lists, %d without) to %s",
		report.All, report.Softlist, report.NoSoftlist, dir))
	return report, nil
}
