package serialize

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/regexport/pkg/types"
)

const host = "WS01"

func rec(name string, v types.Value, kind types.ValueKind) types.Record {
	return types.Record{
		Path:         `HKEY_CURRENT_USER\SOFTWARE\Test`,
		Name:         name,
		Value:        v,
		Type:         kind,
		TypeString:   kind.String(),
		Computername: host,
	}
}

func sampleRecords() []types.Record {
	return []types.Record{
		rec("Alpha", types.StringValue(`say "hi", then go`), types.KindString),
		rec("List", types.StringsValue([]string{"a", "b"}), types.KindMultiString),
		rec("Count", types.DWordValue(42), types.KindDWord),
		rec("Big", types.QWordValue(1<<40), types.KindQWord),
		rec("Blob", types.BytesValue([]byte{0xde, 0xad}), types.KindBinary),
		types.PlaceholderRecord(`HKEY_CURRENT_USER\SOFTWARE\Empty`, host),
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"csv": CSV, "CSV": CSV, " xml ": XML, "Json": JSON, "yaml": YAML, "REG": Reg,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("html")
	assert.True(t, errors.Is(err, types.ErrConfig))

	assert.True(t, CSV.Supported())
	assert.False(t, Reg.Supported())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Computername", "Path", "Name", "Value", "Type"}, rows[0])
	assert.Equal(t, []string{host, `HKEY_CURRENT_USER\SOFTWARE\Test`, "Alpha", `say "hi", then go`, "String"}, rows[1])
	assert.Equal(t, "a;b", rows[2][3])
	assert.Equal(t, "42", rows[3][3])
	assert.Equal(t, "1099511627776", rows[4][3])
	assert.Equal(t, "dead", rows[5][3])
	assert.Equal(t, "Binary", rows[5][4])
	assert.Equal(t, []string{host, `HKEY_CURRENT_USER\SOFTWARE\Empty`, "(Default)", "", "String"}, rows[6])
}

func TestWriteCSV_Escaping(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sampleRecords()[:1]))
	assert.Contains(t, buf.String(), `"say ""hi"", then go"`)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, sampleRecords()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 6)

	assert.Equal(t, map[string]any{
		"Computername": host,
		"Path":         `HKEY_CURRENT_USER\SOFTWARE\Test`,
		"Name":         "Alpha",
		"Value":        `say "hi", then go`,
		"Type":         "String",
	}, got[0])
	assert.Equal(t, []any{"a", "b"}, got[1]["Value"])
	assert.Equal(t, float64(42), got[2]["Value"])
	assert.Equal(t, "dead", got[4]["Value"])
	assert.Nil(t, got[5]["Value"])
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {"), "indented output")
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, nil))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, YAML, sampleRecords()[:2]))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "String", got[0]["Type"])
	assert.Equal(t, []any{"a", "b"}, got[1]["Value"])
	assert.Equal(t, host, got[1]["Computername"])
}

func TestWriteXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XML, sampleRecords()))
	assert.True(t, strings.HasPrefix(buf.String(), xml.Header))

	var doc xmlDocument
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, host, doc.Computername)
	assert.Equal(t, 6, doc.Count)
	require.Len(t, doc.Records, 6)

	alpha := doc.Records[0]
	assert.Equal(t, "Alpha", alpha.Name)
	assert.Equal(t, "String", alpha.Value.Kind)
	assert.Equal(t, `say "hi", then go`, alpha.Value.Text)
	assert.Equal(t, "String", alpha.Type.Name)
	assert.Equal(t, int32(1), alpha.Type.Code)
	assert.Equal(t, "String", alpha.TypeString)

	assert.Equal(t, []string{"a", "b"}, doc.Records[1].Value.Items)
	assert.Equal(t, "UInt32", doc.Records[2].Value.Kind)
	assert.Equal(t, "dead", doc.Records[4].Value.Text)
	assert.Equal(t, "Bytes", doc.Records[4].Value.Kind)
	assert.True(t, doc.Records[5].Value.Nil)
}

func TestWrite_RegUnsupported(t *testing.T) {
	err := Write(&bytes.Buffer{}, Reg, sampleRecords())
	assert.True(t, errors.Is(err, types.ErrUnsupported))

	err = Write(&bytes.Buffer{}, Format("html"), sampleRecords())
	assert.True(t, errors.Is(err, types.ErrConfig))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the export\n"+strings.Repeat("x", 4096)), 0o644))

	require.NoError(t, WriteFile(path, CSV, sampleRecords()[:2]))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale", "existing file is truncated")
	assert.Equal(t, 3, strings.Count(string(data), "\n"))

	regPath := filepath.Join(dir, "out.reg")
	err = WriteFile(regPath, Reg, sampleRecords())
	assert.True(t, errors.Is(err, types.ErrUnsupported))
	_, statErr := os.Stat(regPath)
	assert.True(t, os.IsNotExist(statErr), "no file for unsupported formats")

	err = WriteFile(filepath.Join(dir, "missing", "out.csv"), CSV, sampleRecords())
	assert.Error(t, err)
}
