package platforms_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/messcurator/pkg/errors"
	"github.com/agentstation/messcurator/pkg/platforms"
	"github.com/agentstation/messcurator/pkg/softlists"
)

const handWritten = `sega-pico:
  platform:
    name: Sega Pico
  media_type: cart
  enable_custom_command_line_param_per_software_id: false
  notes: kept by hand
  system:
  - pico
jakks-tv:
  platform:
    name: JAKKS Pacific TV Games
  platform_category:
  - TV Games
  media_type: cart
  enable_custom_command_line_param_per_software_id: true
  emulator:
    name: MAME (Cartridge)
    default_emulator: true
  system:
  - jak_montr:
      software_lists:
      - softlist_name: jakks_gamekey_cart
        software_id:
        - totmdash
      software_configs:
        jakks_gamekey_cart:
          _default_config: -cart totmdash
          totmdash: -cart totmdash -nothrottle
  - jak_totm
`

func metadata(name string) platforms.Metadata {
	return platforms.Metadata{Name: name, MediaType: "cart"}
}

// blocks splits an encoded document into its top-level platform blocks.
func blocks(t *testing.T, doc *platforms.Document) map[string]string {
	t.Helper()
	data, err := doc.Encode()
	require.NoError(t, err)
	out := map[string]string{}
	var key string
	for _, line := range strings.SplitAfter(string(data), "\n") {
		if line != "" && line[0] != ' ' && line[0] != '-' {
			key = strings.TrimSuffix(strings.TrimSpace(line), ":")
		}
		out[key] += line
	}
	return out
}

func systemSection(block string) string {
	return block[strings.Index(block, "  system:"):]
}

func TestDecodeEntry(t *testing.T) {
	doc, err := platforms.Decode([]byte(handWritten))
	require.NoError(t, err)
	assert.Equal(t, []string{"sega-pico", "jakks-tv"}, doc.Keys())

	e, err := doc.Entry("jakks-tv")
	require.NoError(t, err)
	assert.Equal(t, "JAKKS Pacific TV Games", e.Name)
	assert.Equal(t, []string{"TV Games"}, e.Categories)
	assert.True(t, e.CustomCommandPerSoftware)
	require.NotNil(t, e.Emulator)
	assert.Equal(t, "MAME (Cartridge)", e.Emulator.Name)
	require.Len(t, e.Systems, 2)

	montr := e.Systems[0]
	assert.Equal(t, "jak_montr", montr.Name)
	assert.False(t, montr.Bare())
	assert.Equal(t, 1, montr.SoftwareCount())
	cmd, src := montr.ResolveIn("jakks_gamekey_cart", "totmdash")
	assert.Equal(t, "-cart totmdash -nothrottle", cmd)
	assert.Equal(t, platforms.SourceSoftware, src)
	cmd, src = montr.ResolveIn("jakks_gamekey_cart", "other")
	assert.Equal(t, "-cart totmdash", cmd)
	assert.Equal(t, platforms.SourceSoftlistDefault, src)

	assert.Equal(t, "jak_totm", e.Systems[1].Name)
	assert.True(t, e.Systems[1].Bare())

	_, err = doc.Entry("nope")
	assert.True(t, errors.IsNotFound(err))
}

func TestDecodeErrors(t *testing.T) {
	for _, in := range []string{"a: [unclosed", "a: scalar\n", "- list\n"} {
		_, err := platforms.Decode([]byte(in))
		assert.True(t, errors.IsParseError(err), in)
	}
	doc, err := platforms.Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Len())
}

func TestEncodeRoundTripIsStable(t *testing.T) {
	doc, err := platforms.Decode([]byte(handWritten))
	require.NoError(t, err)
	first, err := doc.Encode()
	require.NoError(t, err)

	again, err := platforms.Decode(first)
	require.NoError(t, err)
	second, err := again.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), "notes: kept by hand")
}

func TestFullRescan(t *testing.T) {
	doc, err := platforms.Decode([]byte(handWritten))
	require.NoError(t, err)
	before := blocks(t, doc)

	entry := &platforms.Entry{
		Metadata: metadata("JAKKS Rescanned"),
		Systems: platforms.Assemble([]string{"jak_montr", "jak_sith"},
			[]softlists.Entry{{Softlist: "jakks_gamekey_cart", Machine: "jak_montr", ID: "nicktoon"}}, nil),
	}
	report, err := doc.FullRescan("jakks-tv", entry, platforms.MergeOptions{AllowDowngrade: true})
	require.NoError(t, err)
	assert.False(t, report.Created)
	assert.Empty(t, report.Protected)

	after := blocks(t, doc)
	assert.Equal(t, before["sega-pico"], after["sega-pico"], "other platforms are untouched")
	assert.NotContains(t, after["jakks-tv"], "software_configs", "prior overrides are discarded")
	assert.NotContains(t, after["jakks-tv"], "platform_category")
	assert.NotContains(t, after["jakks-tv"], "emulator:")

	got, err := doc.Entry("jakks-tv")
	require.NoError(t, err)
	want := []platforms.SystemEntry{
		{Name: "jak_montr", Details: &platforms.SystemDetails{SoftwareLists: []platforms.SoftwareListBlock{
			{Softlist: "jakks_gamekey_cart", SoftwareIDs: []string{"nicktoon"}},
		}}},
		{Name: "jak_sith"},
	}
	assert.Empty(t, cmp.Diff(want, got.Systems))
	assert.Equal(t, []string{"sega-pico", "jakks-tv"}, doc.Keys())
}

func TestFullRescanCreatesAndAppends(t *testing.T) {
	doc, err := platforms.Decode([]byte(handWritten))
	require.NoError(t, err)

	report, err := doc.FullRescan("nes", &platforms.Entry{Metadata: metadata("NES"), Systems: []platforms.SystemEntry{{Name: "nes"}}}, platforms.MergeOptions{})
	require.NoError(t, err)
	assert.True(t, report.Created)
	assert.Equal(t, []string{"sega-pico", "jakks-tv", "nes"}, doc.Keys())
}

func TestFullRescanIdempotent(t *testing.T) {
	entry := &platforms.Entry{
		Metadata: metadata("NES"),
		Systems: platforms.Assemble([]string{"nes"}, []softlists.Entry{
			{Softlist: "nes", Machine: "nes", ID: "zelda"},
			{Softlist: "nes", Machine: "nes", ID: "smb"},
		}, nil),
	}
	doc := platforms.New()
	_, err := doc.FullRescan("nes", entry, platforms.MergeOptions{})
	require.NoError(t, err)
	once, err := doc.Encode()
	require.NoError(t, err)

	_, err = doc.FullRescan("nes", entry, platforms.MergeOptions{})
	require.NoError(t, err)
	twice, err := doc.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(once), string(twice))
}

func TestFullRescanDowngradeGuard(t *testing.T) {
	bare := &platforms.Entry{
		Metadata: metadata("JAKKS"),
		Systems:  []platforms.SystemEntry{{Name: "jak_montr"}, {Name: "jak_totm"}},
	}

	t.Run("protected by default", func(t *testing.T) {
		doc, err := platforms.Decode([]byte(handWritten))
		require.NoError(t, err)
		report, err := doc.FullRescan("jakks-tv", bare, platforms.MergeOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"jak_montr"}, report.Protected)

		e, err := doc.Entry("jakks-tv")
		require.NoError(t, err)
		assert.Equal(t, 1, e.Systems[0].SoftwareCount())
		assert.Equal(t, "JAKKS", e.Name)
	})

	t.Run("downgrade allowed", func(t *testing.T) {
		doc, err := platforms.Decode([]byte(handWritten))
		require.NoError(t, err)
		report, err := doc.FullRescan("jakks-tv", bare, platforms.MergeOptions{AllowDowngrade: true})
		require.NoError(t, err)
		assert.Empty(t, report.Protected)

		e, err := doc.Entry("jakks-tv")
		require.NoError(t, err)
		assert.True(t, e.Systems[0].Bare())
	})
}

func TestFullRescanValidation(t *testing.T) {
	doc := platforms.New()
	_, err := doc.FullRescan("", &platforms.Entry{Metadata: metadata("x")}, platforms.MergeOptions{})
	assert.True(t, errors.IsValidationError(err))

	_, err = doc.FullRescan("k", &platforms.Entry{Metadata: platforms.Metadata{Name: "x"}}, platforms.MergeOptions{})
	assert.True(t, errors.IsValidationError(err), "media type required")

	m := metadata("x")
	m.Emulator = &platforms.Emulator{Default: true}
	_, err = doc.FullRescan("k", &platforms.Entry{Metadata: m}, platforms.MergeOptions{})
	assert.True(t, errors.IsValidationError(err), "default emulator requires a name")
	assert.Equal(t, 0, doc.Len())
}

func TestUpdateMetadata(t *testing.T) {
	doc, err := platforms.Decode([]byte(handWritten))
	require.NoError(t, err)
	before := blocks(t, doc)

	err = doc.UpdateMetadata("jakks-tv", platforms.Metadata{
		Name:       "JAKKS Pacific",
		Categories: []string{"TV Games", "Plug and Play"},
		MediaType:  "cartridge",
		Emulator:   &platforms.Emulator{Name: "MAME", Parameters: "-window"},
	})
	require.NoError(t, err)
	after := blocks(t, doc)

	assert.Equal(t, systemSection(before["jakks-tv"]), systemSection(after["jakks-tv"]), "system list is byte-for-byte unchanged")
	assert.Equal(t, before["sega-pico"], after["sega-pico"])

	e, err := doc.Entry("jakks-tv")
	require.NoError(t, err)
	assert.Equal(t, "JAKKS Pacific", e.Name)
	assert.Equal(t, []string{"TV Games", "Plug and Play"}, e.Categories)
	assert.Equal(t, "cartridge", e.MediaType)
	assert.False(t, e.CustomCommandPerSoftware)
	assert.Equal(t, &platforms.Emulator{Name: "MAME", Parameters: "-window"}, e.Emulator)

	require.NoError(t, doc.UpdateMetadata("sega-pico", metadata("Pico")))
	after = blocks(t, doc)
	assert.Contains(t, after["sega-pico"], "notes: kept by hand")
	assert.NotContains(t, after["sega-pico"], "emulator")
}

func TestUpdateMetadataRemovesOptionalKeys(t *testing.T) {
	doc, err := platforms.Decode([]byte(handWritten))
	require.NoError(t, err)
	require.NoError(t, doc.UpdateMetadata("jakks-tv", metadata("JAKKS")))

	block := blocks(t, doc)["jakks-tv"]
	assert.NotContains(t, block, "platform_category")
	assert.NotContains(t, block, "emulator:")
}

func TestUpdateMetadataUnknownKey(t *testing.T) {
	doc, err := platforms.Decode([]byte(handWritten))
	require.NoError(t, err)
	before, err := doc.Encode()
	require.NoError(t, err)

	err = doc.UpdateMetadata("missing", metadata("x"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	after, err := doc.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestDeleteAndSummaries(t *testing.T) {
	doc, err := platforms.Decode([]byte(handWritten))
	require.NoError(t, err)

	sums, err := doc.Summaries()
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, platforms.Summary{
		Key:                      "jakks-tv",
		Name:                     "JAKKS Pacific TV Games",
		Categories:               []string{"TV Games"},
		MediaType:                "cart",
		CustomCommandPerSoftware: true,
		Emulator:                 platforms.Emulator{Name: "MAME (Cartridge)", Default: true},
		Systems:                  2,
		Softlists:                1,
		SoftwareIDs:              1,
	}, sums[1])

	assert.Equal(t, []string{"sega-pico"}, doc.Delete("sega-pico", "missing", "sega-pico"))
	assert.Equal(t, []string{"jakks-tv"}, doc.Keys())

	_, err = doc.Summaries("sega-pico")
	assert.True(t, errors.IsNotFound(err))
}

func TestLoadSave(t *testing.T) {
	fs := afero.NewMemMapFs()

	doc, err := platforms.Load(fs, "/curated/platforms.yaml")
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Len())

	_, err = doc.FullRescan("nes", &platforms.Entry{Metadata: metadata("NES"), Systems: []platforms.SystemEntry{{Name: "nes"}}}, platforms.MergeOptions{})
	require.NoError(t, err)
	require.NoError(t, platforms.Save(fs, "/curated/platforms.yaml", doc))

	files, err := afero.ReadDir(fs, "/curated")
	require.NoError(t, err)
	require.Len(t, files, 1, "temporary file is renamed into place")

	loaded, err := platforms.Load(fs, "/curated/platforms.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"nes"}, loaded.Keys())

	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("a: [x"), 0o644))
	_, err = platforms.Load(fs, "/bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/bad.yaml")
}

func TestDecodeKeepsNumericIDsAsWritten(t *testing.T) {
	const numeric = `arcade-ports:
  platform:
    name: Arcade Ports
  media_type: cart
  enable_custom_command_line_param_per_software_id: true
  system:
  - nes:
      software_lists:
      - softlist_name: nes
        software_id: [1942, 007]
      - softlist_name: nes_ade
        software_id:
        - 0100
        - true
      software_configs:
        nes:
          007: -cart 007 -nothrottle
`
	doc, err := platforms.Decode([]byte(numeric))
	require.NoError(t, err)
	e, err := doc.Entry("arcade-ports")
	require.NoError(t, err)
	require.Len(t, e.Systems, 1)

	nes := e.Systems[0]
	require.NotNil(t, nes.Details)
	require.Len(t, nes.Details.SoftwareLists, 2)
	assert.Equal(t, []string{"1942", "007"}, nes.Details.SoftwareLists[0].SoftwareIDs)
	assert.Equal(t, []string{"0100", "true"}, nes.Details.SoftwareLists[1].SoftwareIDs)

	cmd, src := nes.ResolveIn("nes", "007")
	assert.Equal(t, "-cart 007 -nothrottle", cmd)
	assert.Equal(t, platforms.SourceSoftware, src)

	out, err := doc.Encode()
	require.NoError(t, err)
	again, err := platforms.Decode(out)
	require.NoError(t, err)
	e2, err := again.Entry("arcade-ports")
	require.NoError(t, err)
	if diff := cmp.Diff(e.Systems, e2.Systems); diff != "" {
		t.Errorf("systems changed across save (-first +second):\n%s", diff)
	}
}
