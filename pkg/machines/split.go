package machines

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/agentstation/messcurator/pkg/errors"
)

// rootAttrs are the machine-list root attributes carried into split output.
var rootAttrs = []string{"build", "debug", "emulator", "mameconfig"}

// RawMachine is the view of a machine element available to split predicates.
type RawMachine struct {
	Name         string
	HasSoftlists bool
}

// SplitTarget receives the machines accepted by Keep as a standalone
// machine-list document.
type SplitTarget struct {
	W     io.Writer
	Keep  func(RawMachine) bool
	Count int

	started bool
}

type rawElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   []byte     `xml:",innerxml"`
}

func (e *rawElement) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Split streams the machine-list document in r once and writes each machine
// element, verbatim, to every target whose Keep accepts it.
func Split(r io.Reader, targets ...*SplitTarget) error {
	d := xml.NewDecoder(r)
	var root []xml.Attr

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.NewParseError("xml", "", "machine list", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "machine" {
			if root == nil {
				root = filterRootAttrs(se.Attr)
			}
			continue
		}

		var el rawElement
		if err := d.DecodeElement(&el, &se); err != nil {
			return errors.NewParseError("xml", "", "machine element", err)
		}
		m := RawMachine{
			Name:         el.attr("name"),
			HasSoftlists: bytes.Contains(el.Inner, []byte("<softwarelist")),
		}
		for _, t := range targets {
			if !t.Keep(m) {
				continue
			}
			if err := t.open(root); err != nil {
				return err
			}
			if err := writeMachine(t.W, &el); err != nil {
				return err
			}
			t.Count++
		}
	}

	for _, t := range targets {
		if err := t.open(root); err != nil {
			return err
		}
		if _, err := io.WriteString(t.W, "</mame>\n"); err != nil {
			return errors.WrapIO("write", "", err)
		}
	}
	return nil
}

func filterRootAttrs(attrs []xml.Attr) []xml.Attr {
	out := []xml.Attr{}
	for _, name := range rootAttrs {
		for _, a := range attrs {
			if a.Name.Local == name {
				out = append(out, a)
			}
		}
	}
	return out
}

func (t *SplitTarget) open(root []xml.Attr) error {
	if t.started {
		return nil
	}
	t.started = true
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<mame")
	writeAttrs(&buf, root)
	buf.WriteString(">\n")
	if _, err := t.W.Write(buf.Bytes()); err != nil {
		return errors.WrapIO("write", "", err)
	}
	return nil
}

func writeMachine(w io.Writer, el *rawElement) error {
	var buf bytes.Buffer
	buf.WriteString("\t<machine")
	writeAttrs(&buf, el.Attrs)
	fmt.Fprintf(&buf, ">%s</machine>\n", el.Inner)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.WrapIO("write", "", err)
	}
	return nil
}

func writeAttrs(buf *bytes.Buffer, attrs []xml.Attr) {
	for _, a := range attrs {
		buf.WriteString(" ")
		buf.WriteString(a.Name.Local)
		buf.WriteString(`="`)
		_ = xml.EscapeText(buf, []byte(a.Value))
		buf.WriteString(`"`)
	}
}
