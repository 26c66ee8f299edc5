package table

import (
	"strconv"
	"strings"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/pkg/machines"
	"github.com/agentstation/messcurator/pkg/platforms"
	"github.com/agentstation/messcurator/pkg/roms"
)

// SortKeys maps the accepted --sort-by values to column keys.
var SortKeys = map[string]string{
	"system_name":      "system",
	"system_desc":      "description",
	"manufacturer":     "manufacturer",
	"year":             "year",
	"softlist":         "softlist",
	"software_id":      "software_id",
	"title":            "title",
	"publisher":        "publisher",
	"driver_status":    "driver_status",
	"emulation_status": "emulation_status",
	"sourcefile":       "source_file",
}

// SystemOptions controls the software table layout.
type SystemOptions struct {
	// SystemsOnly prints one row per system.
	SystemsOnly bool
	// ExtraInfo adds machine description, manufacturer, year, publisher
	// and source file columns.
	ExtraInfo bool
	// SourceFile adds the source file column without the other extras.
	SourceFile bool
	// SortBy is one of SortKeys.
	SortBy string
}

// Columns returns the column keys shown for o, in order.
func (o SystemOptions) Columns() []string {
	cols := []string{"system"}
	if o.ExtraInfo {
		cols = append(cols, "description", "manufacturer", "year")
	}
	cols = append(cols, "softlist", "software_id", "title")
	if o.ExtraInfo {
		cols = append(cols, "publisher")
	}
	cols = append(cols, "driver_status", "emulation_status")
	if o.ExtraInfo || o.SourceFile {
		cols = append(cols, "source_file")
	}
	return cols
}

type softwareRow struct {
	system    string
	rec       *machines.Record
	softlist  string
	id        string
	title     string
	publisher string
}

func (r softwareRow) cells(cols []string) []string {
	rec := r.rec
	if rec == nil {
		rec = &machines.Record{}
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		var v string
		switch c {
		case "system":
			v = r.system
		case "description":
			v = rec.Description
		case "manufacturer":
			v = rec.Manufacturer
		case "year":
			v = rec.Year
		case "softlist":
			v = r.softlist
		case "software_id":
			v = r.id
		case "title":
			v = r.title
		case "publisher":
			v = r.publisher
		case "driver_status":
			v = rec.DriverStatus
		case "emulation_status":
			v = rec.EmulationStatus
		case "source_file":
			v = rec.SourceFile
		}
		out[i] = orNA(v)
	}
	return out
}

// bareRow stands for a system shown without software: the title column
// carries the machine description.
func bareRow(name string, rec *machines.Record) softwareRow {
	row := softwareRow{system: name, rec: rec}
	if rec != nil {
		row.title = rec.Description
	}
	return row
}

func build(rows []softwareRow, o SystemOptions) (Data, error) {
	cols := o.Columns()
	data := Data{Headers: Headers(cols...), Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		data.Rows = append(data.Rows, r.cells(cols))
	}
	if o.SortBy != "" {
		key, ok := SortKeys[strings.ToLower(o.SortBy)]
		if !ok {
			key = o.SortBy
		}
		if err := data.SortBy(cols, key); err != nil {
			return data, err
		}
	}
	return data, nil
}

// SearchToTableData converts a search result to one row per software entry,
// or one row per system when SystemsOnly is set or a system has none.
func SearchToTableData(result *messcurator.SearchResult, o SystemOptions) (Data, error) {
	var rows []softwareRow
	for i := range result.Systems {
		s := &result.Systems[i]
		if o.SystemsOnly || len(s.Entries) == 0 {
			rows = append(rows, bareRow(s.Name(), s.Record))
			continue
		}
		for _, e := range s.Entries {
			rows = append(rows, softwareRow{
				system:    s.Name(),
				rec:       s.Record,
				softlist:  e.Softlist,
				id:        e.ID,
				title:     e.Title,
				publisher: e.Publisher,
			})
		}
	}
	return build(rows, o)
}

// PlatformToTableData converts curated platform entries to rows joined with
// machine metadata from cat, which may be nil. The document carries no
// titles, so software rows show "N/A".
func PlatformToTableData(entries []*platforms.Entry, cat *machines.Catalog, o SystemOptions) (Data, error) {
	lookup := func(name string) *machines.Record {
		if cat == nil {
			return nil
		}
		rec, _ := cat.Lookup(name)
		return rec
	}
	var rows []softwareRow
	for _, e := range entries {
		for _, s := range e.Systems {
			rec := lookup(s.Name)
			if o.SystemsOnly || s.Bare() {
				rows = append(rows, bareRow(s.Name, rec))
				continue
			}
			for _, block := range s.Details.SoftwareLists {
				if len(block.SoftwareIDs) == 0 {
					rows = append(rows, softwareRow{system: s.Name, rec: rec, softlist: block.Softlist})
					continue
				}
				for _, id := range block.SoftwareIDs {
					rows = append(rows, softwareRow{system: s.Name, rec: rec, softlist: block.Softlist, id: id})
				}
			}
		}
	}
	return build(rows, o)
}

// DriverColumns are the column keys of DriversToTableData.
var DriverColumns = []string{"name", "description", "year", "manufacturer", "driver_status", "emulation_status", "softlists"}

// DriversToTableData converts machine records to a listing.
func DriversToTableData(recs []*machines.Record) Data {
	data := Data{
		Headers:         Headers(DriverColumns...),
		Rows:            make([][]string, 0, len(recs)),
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
	for _, r := range recs {
		softlists := "-"
		if r.HasSoftlists() {
			softlists = strings.Join(r.SoftlistOrder, ", ")
		}
		data.Rows = append(data.Rows, []string{
			r.Name, orNA(r.Description), orNA(r.Year), orNA(r.Manufacturer),
			orNA(r.DriverStatus), orNA(r.EmulationStatus), softlists,
		})
	}
	return data
}

// PlatformSummariesToTableData converts platform summaries to a listing.
func PlatformSummariesToTableData(sums []platforms.Summary) Data {
	cols := []string{"key", "name", "categories", "media_type", "emulator", "systems", "softlists", "software_ids"}
	data := Data{
		Headers:         Headers(cols...),
		Rows:            make([][]string, 0, len(sums)),
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight},
	}
	for _, s := range sums {
		emu := "-"
		if s.Emulator.Name != "" {
			emu = s.Emulator.Name
			if s.Emulator.Default {
				emu += " (default)"
			}
		}
		cats := "-"
		if len(s.Categories) > 0 {
			cats = strings.Join(s.Categories, ", ")
		}
		data.Rows = append(data.Rows, []string{
			s.Key, s.Name, cats, s.MediaType, emu,
			strconv.Itoa(s.Systems), strconv.Itoa(s.Softlists), strconv.Itoa(s.SoftwareIDs),
		})
	}
	return data
}

// MissingToTableData converts missing ROM rows, already sorted.
func MissingToTableData(items []roms.MissingItem) Data {
	data := Data{
		Headers: []string{"Software ID", "From Softlist", "For System", "In Platform"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, m := range items {
		data.Rows = append(data.Rows, []string{m.SoftwareID, m.Softlist, m.System, m.Platform})
	}
	return data
}

// SummaryToTableData renders reconciliation totals as property rows.
func SummaryToTableData(s *roms.Summary) Data {
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Platforms", strconv.Itoa(s.Platforms)},
			{"Systems", strconv.Itoa(s.Systems)},
			{"ROMs copied", strconv.Itoa(s.Copied)},
			{"ROMs missing (placeholder created)", strconv.Itoa(s.Placeholders)},
			{"Empty system archives", strconv.Itoa(s.SystemPlaceholders)},
			{"Failed", strconv.Itoa(s.Failed)},
		},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// SplitToTableData lists the documents written by a split with their
// machine counts.
func SplitToTableData(r *messcurator.SplitReport) Data {
	return Data{
		Headers: []string{"Document", "Machines"},
		Rows: [][]string{
			{r.Files[messcurator.SplitAll], strconv.Itoa(r.All)},
			{r.Files[messcurator.SplitSoftlist], strconv.Itoa(r.Softlist)},
			{r.Files[messcurator.SplitNoSoftlist], strconv.Itoa(r.NoSoftlist)},
		},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}
