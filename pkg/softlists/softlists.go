// Package softlists parses the emulator's software-catalog documents and
// extracts the software a machine can run, honoring the machine's per-list
// compatibility tags.
package softlists

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/errors"
)

// Entry is one piece of software a machine can run.
type Entry struct {
	Softlist  string `json:"softlist" yaml:"softlist"`
	Machine   string `json:"machine" yaml:"machine"`
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Publisher string `json:"publisher" yaml:"publisher"`
}

// Document is a parsed software-catalog document.
type Document struct {
	Lists []List
}

// List is one software list within a catalog document.
type List struct {
	Name        string     `xml:"name,attr"`
	Description string     `xml:"description,attr"`
	Software    []Software `xml:"software"`
}

// Software is one item of a software list.
type Software struct {
	Name        string       `xml:"name,attr"`
	Description string       `xml:"description"`
	Year        string       `xml:"year"`
	Publisher   string       `xml:"publisher"`
	SharedFeats []SharedFeat `xml:"sharedfeat"`
}

// SharedFeat is a name/value feature shared by all parts of an item.
type SharedFeat struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Feature returns the value of the named shared feature.
func (s *Software) Feature(name string) (string, bool) {
	for _, f := range s.SharedFeats {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Parse reads a software-catalog document whose root is mame, softwarelists
// or softwarelist.
func Parse(r io.Reader) (*Document, error) {
	d := xml.NewDecoder(r)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, errors.NewParseError("xml", "", "software catalog has no root element", nil)
		}
		if err != nil {
			return nil, errors.NewParseError("xml", "", "software catalog", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "softwarelist":
			var l List
			if err := d.DecodeElement(&l, &se); err != nil {
				return nil, errors.NewParseError("xml", "", "softwarelist element", err)
			}
			return &Document{Lists: []List{l}}, nil
		case "mame", "softwarelists":
			var root struct {
				Lists []List `xml:"softwarelist"`
			}
			if err := d.DecodeElement(&root, &se); err != nil {
				return nil, errors.NewParseError("xml", "", se.Name.Local+" element", err)
			}
			return &Document{Lists: root.Lists}, nil
		default:
			return nil, errors.NewParseError("xml", "", "unexpected root element "+se.Name.Local, nil)
		}
	}
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// Compatible reports whether item may be offered on a machine whose
// declaration of the item's list carries tag. An empty tag accepts every
// item; otherwise the item's compatibility feature, split on commas, must
// contain tag exactly.
func Compatible(tag string, item *Software) bool {
	if tag == "" {
		return true
	}
	value, ok := item.Feature("compatibility")
	if !ok {
		return false
	}
	for _, v := range strings.Split(strings.ToUpper(value), ",") {
		if strings.TrimSpace(v) == tag {
			return true
		}
	}
	return false
}

// Extract returns the entries of doc runnable on machine. tags maps the
// softlists the machine declares to their compatibility tags; lists the
// machine does not declare are emitted without compatibility filtering.
// Entries keep document order.
func Extract(machine string, doc *Document, tags map[string]string) []Entry {
	var entries []Entry
	for i := range doc.Lists {
		list := &doc.Lists[i]
		if list.Name == "" {
			continue
		}
		tag := strings.ToUpper(tags[list.Name])
		for j := range list.Software {
			item := &list.Software[j]
			if item.Name == "" || !Compatible(tag, item) {
				continue
			}
			publisher := strings.TrimSpace(item.Publisher)
			if publisher == "" {
				publisher = constants.Unknown
			}
			entries = append(entries, Entry{
				Softlist:  list.Name,
				Machine:   machine,
				ID:        item.Name,
				Title:     strings.TrimSpace(item.Description),
				Publisher: publisher,
			})
		}
	}
	return entries
}
