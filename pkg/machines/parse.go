package machines

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/logging"
)

// Generator produces a machine-list document, normally by running the
// emulator with -listxml.
type Generator interface {
	ListXML(ctx context.Context) ([]byte, error)
}

type xmlMachine struct {
	Name         string `xml:"name,attr"`
	SourceFile   string `xml:"sourcefile,attr"`
	IsBIOS       string `xml:"isbios,attr"`
	IsDevice     string `xml:"isdevice,attr"`
	Description  string `xml:"description"`
	Year         string `xml:"year"`
	Manufacturer string `xml:"manufacturer"`
	Driver       *struct {
		Status    string `xml:"status,attr"`
		Emulation string `xml:"emulation,attr"`
	} `xml:"driver"`
	Softlists []struct {
		Name   string `xml:"name,attr"`
		Filter string `xml:"filter,attr"`
	} `xml:"softwarelist"`
}

func (m *xmlMachine) record() *Record {
	r := &Record{
		Name:            m.Name,
		Description:     orUnknown(m.Description),
		Manufacturer:    orUnknown(m.Manufacturer),
		Year:            orUnknown(m.Year),
		SourceFile:      orUnknown(m.SourceFile),
		DriverStatus:    constants.Unknown,
		EmulationStatus: constants.Unknown,
		IsBIOS:          m.IsBIOS == "yes",
		IsDevice:        m.IsDevice == "yes",
		Softlists:       make(map[string]string, len(m.Softlists)),
	}
	if m.Driver != nil {
		r.DriverStatus = orUnknown(m.Driver.Status)
		r.EmulationStatus = orUnknown(m.Driver.Emulation)
	}
	for _, sl := range m.Softlists {
		if sl.Name == "" {
			continue
		}
		if _, seen := r.Softlists[sl.Name]; !seen {
			r.SoftlistOrder = append(r.SoftlistOrder, sl.Name)
		}
		r.Softlists[sl.Name] = strings.ToUpper(strings.TrimSpace(sl.Filter))
	}
	return r
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return constants.Unknown
	}
	return s
}

// Parse reads a machine-list document. Machines without a name are ignored.
func Parse(r io.Reader) (*Catalog, error) {
	d := xml.NewDecoder(r)
	var (
		records []*Record
		sawRoot bool
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParseError("xml", "", "machine list", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if se.Name.Local != "machine" && se.Name.Local != "game" {
			continue
		}
		var m xmlMachine
		if err := d.DecodeElement(&m, &se); err != nil {
			return nil, errors.NewParseError("xml", "", "machine element", err)
		}
		if m.Name != "" {
			records = append(records, m.record())
		}
	}
	if !sawRoot {
		return nil, errors.NewParseError("xml", "", "document has no root element", nil)
	}
	return NewCatalog(records), nil
}

// Load reads the machine-list document at path. When the file does not
// exist it is generated with gen and written to path first.
func Load(ctx context.Context, fs afero.Fs, path string, gen Generator) (*Catalog, error) {
	logger := logging.FromContext(ctx)

	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		logger.Debug().Str("path", path).Msg("Loading machine list")
	case os.IsNotExist(err) && gen != nil:
		logger.Info().Str("path", path).Msg("Machine list not found, generating it with the emulator")
		data, err = gen.ListXML(ctx)
		if err != nil {
			return nil, err
		}
		if err := fs.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("mkdir", filepath.Dir(path), err)
		}
		if err := afero.WriteFile(fs, path, data, constants.FilePermissions); err != nil {
			return nil, errors.WrapIO("write", path, err)
		}
	default:
		return nil, errors.WrapIO("read", path, err)
	}

	cat, err := Parse(bytes.NewReader(data))
	if err != nil {
		if perr, ok := err.(*errors.ParseError); ok {
			perr.File = path
		}
		return nil, err
	}
	logger.Info().Int("machines", cat.Len()).Msg("Machine list loaded")
	return cat, nil
}
