package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/messcurator"
	"github.com/agentstation/messcurator/pkg/machines"
	"github.com/agentstation/messcurator/pkg/platforms"
	"github.com/agentstation/messcurator/pkg/roms"
	"github.com/agentstation/messcurator/pkg/softlists"
)

func TestHeader(t *testing.T) {
	tests := map[string]string{
		"system":           "System",
		"software_id":      "Software ID",
		"emulation_status": "Emulation Status",
		"software_ids":     "Software IDs",
		"media-type":       "Media Type",
	}
	for in, want := range tests {
		assert.Equal(t, want, Header(in), in)
	}
}

func searchResult() *messcurator.SearchResult {
	montr := &machines.Record{Name: "jak_montr", Description: "Monster Truck", Manufacturer: "JAKKS", Year: "2004",
		SourceFile: "spg2xx_jakks_gamekey.cpp", DriverStatus: "good", EmulationStatus: "good"}
	totm := &machines.Record{Name: "jak_totm", Description: "Toy Story", DriverStatus: "preliminary", EmulationStatus: "preliminary"}
	return &messcurator.SearchResult{Systems: []messcurator.SystemResult{
		{Record: montr, Entries: []softlists.Entry{
			{Softlist: "jakks_gamekey_cart", Machine: "jak_montr", ID: "zz", Title: "Zed", Publisher: "JAKKS"},
			{Softlist: "jakks_gamekey_cart", Machine: "jak_montr", ID: "aa", Title: "Alpha"},
		}},
		{Record: totm},
	}}
}

func TestSearchToTableData(t *testing.T) {
	data, err := SearchToTableData(searchResult(), SystemOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"System", "Softlist", "Software ID", "Title", "Driver Status", "Emulation Status"}, data.Headers)
	require.Len(t, data.Rows, 3)
	assert.Equal(t, []string{"jak_montr", "jakks_gamekey_cart", "zz", "Zed", "good", "good"}, data.Rows[0])
	assert.Equal(t, []string{"jak_totm", "N/A", "N/A", "Toy Story", "preliminary", "preliminary"}, data.Rows[2])
}

func TestSearchToTableDataOptions(t *testing.T) {
	data, err := SearchToTableData(searchResult(), SystemOptions{ExtraInfo: true, SortBy: "software_id"})
	require.NoError(t, err)
	assert.Len(t, data.Headers, 11)
	assert.Equal(t, "Source File", data.Headers[10])
	assert.Equal(t, "aa", data.Rows[0][5])
	assert.Equal(t, "N/A", data.Rows[0][7], "missing publisher")

	data, err = SearchToTableData(searchResult(), SystemOptions{SystemsOnly: true, SourceFile: true})
	require.NoError(t, err)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "spg2xx_jakks_gamekey.cpp", data.Rows[0][6])

	_, err = SearchToTableData(searchResult(), SystemOptions{SortBy: "publisher"})
	assert.Error(t, err, "publisher is only shown with extra info")
}

func TestPlatformToTableData(t *testing.T) {
	cat := machines.NewCatalog([]*machines.Record{{Name: "nes", Description: "NES", DriverStatus: "good", EmulationStatus: "good"}})
	entries := []*platforms.Entry{{
		Metadata: platforms.Metadata{Name: "Nintendo", MediaType: "cart"},
		Systems: []platforms.SystemEntry{
			{Name: "nes", Details: &platforms.SystemDetails{SoftwareLists: []platforms.SoftwareListBlock{
				{Softlist: "nes", SoftwareIDs: []string{"smb", "zelda"}},
				{Softlist: "nes_datach"},
			}}},
			{Name: "famicom"},
		},
	}}

	data, err := PlatformToTableData(entries, cat, SystemOptions{})
	require.NoError(t, err)
	require.Len(t, data.Rows, 4)
	assert.Equal(t, []string{"nes", "nes", "smb", "N/A", "good", "good"}, data.Rows[0])
	assert.Equal(t, []string{"nes", "nes_datach", "N/A", "N/A", "good", "good"}, data.Rows[2])
	assert.Equal(t, []string{"famicom", "N/A", "N/A", "N/A", "N/A", "N/A"}, data.Rows[3])
}

func TestListings(t *testing.T) {
	drivers := DriversToTableData([]*machines.Record{
		{Name: "nes", SoftlistOrder: []string{"nes", "nes_ade"}},
		{Name: "pacman"},
	})
	assert.Equal(t, "nes, nes_ade", drivers.Rows[0][6])
	assert.Equal(t, "-", drivers.Rows[1][6])

	sums := PlatformSummariesToTableData([]platforms.Summary{{
		Key: "nes", Name: "Nintendo", MediaType: "cart", Systems: 2, Softlists: 1, SoftwareIDs: 3,
		Emulator: platforms.Emulator{Name: "mame", Default: true},
	}})
	assert.Equal(t, []string{"nes", "Nintendo", "-", "cart", "mame (default)", "2", "1", "3"}, sums.Rows[0])

	missing := MissingToTableData([]roms.MissingItem{{SoftwareID: "smb", Softlist: "nes", System: "nes", Platform: "nes"}})
	assert.Equal(t, "Software ID", missing.Headers[0])
	assert.Len(t, missing.Rows, 1)

	summary := SummaryToTableData(&roms.Summary{Copied: 4})
	assert.Equal(t, "4", summary.Rows[2][1])
}
