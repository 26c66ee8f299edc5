package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/messcurator/internal/cmd/table"
)

func sample() table.Data {
	return table.Data{
		Headers: []string{"System", "Software ID"},
		Rows:    [][]string{{"nes", "smb"}, {"nes", "zelda, the legend"}},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", "csv", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatCSV).Format(&buf, sample()))
	assert.Equal(t, "System,Software ID\nnes,smb\nnes,\"zelda, the legend\"\n", buf.String())

	assert.Error(t, NewFormatter(FormatCSV).Format(&buf, map[string]int{"a": 1}))
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, sample()))
	out := strings.ToUpper(buf.String())
	assert.Contains(t, out, "SOFTWARE ID")
	assert.Contains(t, out, "ZELDA")
}

func TestTableFormatterReflection(t *testing.T) {
	type row struct {
		Key     string `json:"key"`
		Systems int    `json:"systems"`
	}
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, []row{{Key: "nes", Systems: 2}}))
	assert.Contains(t, buf.String(), "nes")
}

func TestYAMLAndJSON(t *testing.T) {
	data := map[string]int{"copied": 3}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, data))
	assert.Equal(t, "copied: 3\n", buf.String())

	buf.Reset()
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, data))
	assert.JSONEq(t, `{"copied":3}`, buf.String())
}

func TestWriteToFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	var stdout bytes.Buffer

	require.NoError(t, Write(fs, &stdout, "/out.csv", FormatCSV, sample()))
	assert.Empty(t, stdout.String())

	data, err := afero.ReadFile(fs, "/out.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "System,Software ID\n"))

	require.NoError(t, Write(fs, &stdout, "", FormatCSV, sample()))
	assert.Contains(t, stdout.String(), "smb")
}

func TestIsTabular(t *testing.T) {
	assert.True(t, FormatTable.IsTabular())
	assert.True(t, FormatCSV.IsTabular())
	assert.False(t, FormatYAML.IsTabular())
}
