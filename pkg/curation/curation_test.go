package curation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/messcurator/pkg/curation"
	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/machines"
	"github.com/agentstation/messcurator/pkg/softlists"
)

func testCatalog() *machines.Catalog {
	return machines.NewCatalog([]*machines.Record{
		{Name: "jak_montr", Description: "Monster Truck (JAKKS Pacific TV Game)", SourceFile: "tvgames/spg2xx_jakks_gamekey.cpp",
			DriverStatus: "good", EmulationStatus: "good",
			Softlists: map[string]string{"jakks_gamekey_cart": "MONTR"}, SoftlistOrder: []string{"jakks_gamekey_cart"}},
		{Name: "jak_totm", Description: "Toy Story (JAKKS Pacific TV Game)", SourceFile: "tvgames/spg2xx_jakks_gamekey.cpp",
			DriverStatus: "imperfect", EmulationStatus: "good"},
		{Name: "jak_sith", Description: "Star Wars (JAKKS Pacific TV Game)", SourceFile: "tvgames/spg2xx_jakks.cpp",
			DriverStatus: "good", EmulationStatus: "preliminary"},
		{Name: "nes", Description: "Nintendo Entertainment System", SourceFile: "nes.cpp",
			DriverStatus: "good", EmulationStatus: "good",
			Softlists: map[string]string{"nes": ""}, SoftlistOrder: []string{"nes"}},
	})
}

func TestSelectMachines(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		name    string
		query   curation.MachineQuery
		want    []string
		unknown []string
		ignored bool
	}{
		{
			name:  "no seed no predicate selects everything",
			query: curation.MachineQuery{},
			want:  []string{"jak_montr", "jak_sith", "jak_totm", "nes"},
		},
		{
			name:  "description terms must all match",
			query: curation.MachineQuery{DescriptionTerms: []string{"jakks", "TOY"}},
			want:  []string{"jak_totm"},
		},
		{
			name:  "source file substring",
			query: curation.MachineQuery{SourceFile: "jakks_gamekey"},
			want:  []string{"jak_montr", "jak_totm"},
		},
		{
			name:  "predicates intersect",
			query: curation.MachineQuery{SourceFile: "jakks", SoftlistCapable: true},
			want:  []string{"jak_montr"},
		},
		{
			name:  "fuzzy prefix seed",
			query: curation.MachineQuery{Fuzzy: "jak_"},
			want:  []string{"jak_montr", "jak_sith", "jak_totm"},
		},
		{
			name:    "seed bypasses predicates",
			query:   curation.MachineQuery{Systems: []string{"nes"}, DescriptionTerms: []string{"jakks"}},
			want:    []string{"nes"},
			ignored: true,
		},
		{
			name:    "include only is a seed",
			query:   curation.MachineQuery{Include: []string{"nes", "zzz"}, SourceFile: "jakks"},
			want:    []string{"nes", "zzz"},
			unknown: []string{"zzz"},
			ignored: true,
		},
		{
			name:  "include unioned after predicates then exclude subtracted",
			query: curation.MachineQuery{SourceFile: "gamekey", Include: nil, Exclude: []string{"jak_totm"}},
			want:  []string{"jak_montr"},
		},
		{
			name:  "exclude wins over seed",
			query: curation.MachineQuery{Systems: []string{"nes", "jak_sith"}, Include: []string{"jak_totm"}, Exclude: []string{"nes"}},
			want:  []string{"jak_sith", "jak_totm"},
		},
		{
			name:  "limit applies after sorting",
			query: curation.MachineQuery{Fuzzy: "jak_", Limit: 2},
			want:  []string{"jak_montr", "jak_sith"},
		},
		{
			name:  "empty result",
			query: curation.MachineQuery{DescriptionTerms: []string{"sega"}},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := curation.SelectMachines(cat, tt.query)
			assert.Equal(t, tt.want, sel.Names)
			assert.Equal(t, tt.unknown, sel.Unknown)
			assert.Equal(t, tt.ignored, sel.IgnoredPredicates)
		})
	}
}

func TestApplyPredicatesIdempotent(t *testing.T) {
	cat := testCatalog()
	q := curation.MachineQuery{DescriptionTerms: []string{"jakks"}, SoftlistCapable: false, SourceFile: "spg2xx"}

	once := curation.ApplyPredicates(cat, cat.Names(), q)
	twice := curation.ApplyPredicates(cat, once, q)
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"jak_montr", "jak_sith", "jak_totm"}, once)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d"}, curation.SplitList("a,b c", " ,d,"))
	assert.Empty(t, curation.SplitList(""))
}

func TestSoftwareFilter(t *testing.T) {
	entries := []softlists.Entry{
		{Softlist: "nes", ID: "smb", Title: "Super Mario Bros."},
		{Softlist: "nes", ID: "zelda", Title: "The Legend of Zelda"},
		{Softlist: "nes_ade", ID: "aladdin", Title: "Aladdin"},
		{Softlist: "famicom_flop", ID: "zeldad", Title: "Zelda no Densetsu"},
	}

	ids := func(es []softlists.Entry) []string {
		out := []string{}
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}

	assert.Equal(t, []string{"smb", "zelda", "aladdin", "zeldad"}, ids(curation.SoftwareFilter{}.Apply(entries)))
	assert.Equal(t, []string{"smb", "zelda"}, ids(curation.SoftwareFilter{IncludeSoftlists: []string{"nes"}}.Apply(entries)))
	assert.Equal(t, []string{"smb", "zelda", "zeldad"}, ids(curation.SoftwareFilter{ExcludeSoftlists: []string{"nes_ade"}}.Apply(entries)))
	assert.Equal(t, []string{"zelda", "zeldad"}, ids(curation.SoftwareFilter{Term: "ZELDA"}.Apply(entries)))
	assert.Equal(t, []string{"smb"}, ids(curation.SoftwareFilter{Term: "mario"}.Apply(entries)), "term matches title")
	assert.Equal(t, []string{"zelda"}, ids(curation.SoftwareFilter{IncludeSoftlists: []string{"nes", "famicom_flop"}, ExcludeSoftlists: []string{"famicom_flop"}, Term: "zel"}.Apply(entries)))
}

func TestStatusFilter(t *testing.T) {
	cat := testCatalog()
	montr, _ := cat.Lookup("jak_montr")
	totm, _ := cat.Lookup("jak_totm")
	sith, _ := cat.Lookup("jak_sith")

	f := curation.StatusFilter{Driver: "good", Emulation: "good"}
	ok, _ := f.Admit(montr)
	assert.True(t, ok)

	ok, reason := f.Admit(totm)
	assert.False(t, ok)
	assert.Contains(t, reason, "driver status")

	ok, reason = f.Admit(sith)
	assert.False(t, ok)
	assert.Contains(t, reason, "emulation status")

	ok, _ = f.Admit(nil)
	assert.False(t, ok)

	ok, _ = curation.StatusFilter{}.Admit(nil)
	assert.True(t, ok, "inactive filter admits unknown machines")
}

func TestStatusFilterValidate(t *testing.T) {
	require.NoError(t, curation.StatusFilter{Driver: "good", Emulation: "preliminary"}.Validate())
	err := curation.StatusFilter{Emulation: "great"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
