package roms

import (
	"fmt"
	"io"

	md "github.com/nao1215/markdown"
)

// WriteMissingReport renders the summary and its missing list as Markdown.
func WriteMissingReport(w io.Writer, s *Summary) error {
	doc := md.NewMarkdown(w)
	doc.H1("ROM reconciliation report").LF()

	doc.BulletList(
		fmt.Sprintf("Platforms processed: %d", s.Platforms),
		fmt.Sprintf("Systems processed: %d", s.Systems),
		fmt.Sprintf("Archives copied: %d", s.Copied),
		fmt.Sprintf("Placeholders created: %d", s.Placeholders),
		fmt.Sprintf("Empty system archives: %d", s.SystemPlaceholders),
		fmt.Sprintf("Failed: %d", s.Failed),
	).LF()

	doc.H2("Missing ROMs").LF()
	if len(s.Missing) == 0 {
		doc.PlainText("No missing ROMs.").LF()
		return doc.Build()
	}

	rows := make([][]string, 0, len(s.Missing))
	for _, m := range s.Missing {
		rows = append(rows, []string{md.Code(m.SoftwareID), m.Softlist, m.System, m.Platform})
	}
	doc.Table(md.TableSet{
		Header: []string{"Software ID", "From Softlist", "For System", "In Platform"},
		Rows:   rows,
	})
	return doc.Build()
}
