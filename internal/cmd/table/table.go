// Package table converts curator results into rows for table and csv output.
package table

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// acronyms keep their casing in headers.
var acronyms = map[string]string{"id": "ID", "ids": "IDs", "xml": "XML", "ini": "INI"}

var titleCaser = cases.Title(language.English)

// Header turns a column key such as "software_id" into "Software ID".
func Header(key string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(key))
	for i, w := range words {
		if a, ok := acronyms[strings.ToLower(w)]; ok {
			words[i] = a
			continue
		}
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

// Headers applies Header to every key.
func Headers(keys ...string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = Header(k)
	}
	return out
}

// SortBy sorts rows case-insensitively on the column whose key is column.
// Ties keep their order.
func (d *Data) SortBy(keys []string, column string) error {
	idx := -1
	for i, k := range keys {
		if k == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("column %q is not shown", column)
	}
	sort.SliceStable(d.Rows, func(i, j int) bool {
		return strings.ToLower(d.Rows[i][idx]) < strings.ToLower(d.Rows[j][idx])
	})
	return nil
}

// Records returns one map per row keyed by the given column keys, for
// structured output of tabular results.
func (d *Data) Records(keys []string) []map[string]string {
	out := make([]map[string]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		rec := make(map[string]string, len(keys))
		for i, k := range keys {
			if i < len(row) {
				rec[k] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
