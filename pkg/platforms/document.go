// Package platforms reads, merges and writes the curated platform document:
// a key-ordered YAML mapping from platform key to the platform's metadata
// and system list. Entries an operation does not target are written back in
// the ordered form they were read in, so hand edits and unknown keys of
// other platforms survive every update.
package platforms

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/spf13/afero"

	"github.com/agentstation/messcurator/pkg/constants"
	"github.com/agentstation/messcurator/pkg/errors"
)

// Document is the curated platform document.
type Document struct {
	keys    []string
	entries map[string]interface{}
}

// New returns an empty document.
func New() *Document {
	return &Document{entries: make(map[string]interface{})}
}

// Keys returns the platform keys in document order.
func (d *Document) Keys() []string {
	return slices.Clone(d.keys)
}

// Len returns the number of platforms.
func (d *Document) Len() int {
	return len(d.keys)
}

// Has reports whether the platform key exists.
func (d *Document) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Entry decodes the platform entry for key.
func (d *Document) Entry(key string) (*Entry, error) {
	raw, ok := d.entries[key]
	if !ok {
		return nil, errors.NewNotFoundError("platform", key)
	}
	entry, err := decodeEntry(raw)
	if err != nil {
		return nil, errors.NewParseError("yaml", "", fmt.Sprintf("platform %s", key), err)
	}
	return entry, nil
}

// Decode parses a curated document. Empty input is an empty document.
func Decode(data []byte) (*Document, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, errors.NewParseError("yaml", "", "curated document", err)
	}
	var top yaml.MapSlice
	if len(file.Docs) > 0 && file.Docs[0].Body != nil {
		body := file.Docs[0].Body
		ast.Walk(idsAsWritten{}, body)
		if err := yaml.NodeToValue(body, &top, yaml.UseOrderedMap()); err != nil {
			return nil, errors.NewParseError("yaml", "", "curated document", err)
		}
	}
	doc := New()
	for _, item := range top {
		key := fmt.Sprint(item.Key)
		if _, dup := doc.entries[key]; dup {
			return nil, errors.NewParseError("yaml", "", "duplicate platform key "+key, nil)
		}
		if _, ok := item.Value.(yaml.MapSlice); !ok {
			return nil, errors.NewParseError("yaml", "", fmt.Sprintf("platform %s is not a mapping", key), nil)
		}
		doc.keys = append(doc.keys, key)
		doc.entries[key] = item.Value
	}
	return doc, nil
}

// idsAsWritten turns plain numeric or boolean software ids, and the
// software_configs keys naming them, into strings holding their source
// text, so a hand-written 007 stays "007".
type idsAsWritten struct{}

func (v idsAsWritten) Visit(n ast.Node) ast.Visitor {
	mv, ok := n.(*ast.MappingValueNode)
	if !ok || mv.Key == nil || mv.Key.GetToken() == nil {
		return v
	}
	switch mv.Key.GetToken().Value {
	case keySoftwareID:
		if seq, ok := mv.Value.(*ast.SequenceNode); ok {
			for i, item := range seq.Values {
				if isNonStringScalar(item) {
					seq.Values[i] = ast.String(item.GetToken())
				}
			}
		}
	case keySoftwareConfigs:
		for _, list := range mappingPairs(mv.Value) {
			for _, p := range mappingPairs(list.Value) {
				if isNonStringScalar(p.Key) {
					p.Key = ast.String(p.Key.GetToken())
				}
			}
		}
	}
	return v
}

func mappingPairs(n ast.Node) []*ast.MappingValueNode {
	switch m := n.(type) {
	case *ast.MappingNode:
		return m.Values
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{m}
	}
	return nil
}

func isNonStringScalar(n ast.Node) bool {
	switch n.(type) {
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.InfinityNode, *ast.NanNode:
		return true
	}
	return false
}

// Encode renders the document with two-space indentation and sequences
// flush with their parent key.
func (d *Document) Encode() ([]byte, error) {
	top := make(yaml.MapSlice, 0, len(d.keys))
	for _, k := range d.keys {
		top = append(top, yaml.MapItem{Key: k, Value: d.entries[k]})
	}
	if len(top) == 0 {
		return []byte{}, nil
	}
	return yaml.MarshalWithOptions(top, yaml.Indent(2), yaml.IndentSequence(false))
}

// Load reads the document at path. A missing file is an empty document.
func Load(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		if perr, ok := err.(*errors.ParseError); ok {
			perr.File = path
		}
		return nil, err
	}
	return doc, nil
}

// Save writes the whole document to path through a temporary file in the
// same directory, so readers never observe a partial document.
func Save(fs afero.Fs, path string, doc *Document) error {
	data, err := doc.Encode()
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", dir, err)
	}
	tmp, err := afero.TempFile(fs, dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(name)
		return errors.WrapIO("write", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(name)
		return errors.WrapIO("close", name, err)
	}
	if err := fs.Rename(name, path); err != nil {
		_ = fs.Remove(name)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
