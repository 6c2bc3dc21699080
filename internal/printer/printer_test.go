package printer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regexport/pkg/types"
)

func record(name string, v types.Value, kind types.ValueKind) types.Record {
	return types.Record{
		Path:         `HKEY_CURRENT_USER\SOFTWARE\Test`,
		Name:         name,
		Value:        v,
		Type:         kind,
		TypeString:   kind.String(),
		Computername: "WS01",
	}
}

func TestParseStyle(t *testing.T) {
	for in, want := range map[string]Style{"": StyleTable, "TABLE": StyleTable, " list": StyleList} {
		got, err := ParseStyle(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseStyle("grid")
	assert.True(t, errors.Is(err, types.ErrConfig))
}

func TestRender_Table(t *testing.T) {
	records := []types.Record{
		record("Alpha", types.StringValue("x"), types.KindString),
		record("Count", types.DWordValue(42), types.KindDWord),
		types.PlaceholderRecord(`HKEY_CURRENT_USER\SOFTWARE\Empty`, "WS01"),
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, records, Options{Style: StyleTable}))
	out := buf.String()

	for _, want := range []string{"Path", "Name", "Value", "TypeString", "Alpha", "42", "DWord", `HKEY_CURRENT_USER\SOFTWARE\Empty`, "(Default)"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
	assert.NotContains(t, out, "WS01", "table omits the host column")
}

func TestRender_List(t *testing.T) {
	records := []types.Record{
		record("Alpha", types.StringValue("x"), types.KindString),
		record("List", types.StringsValue([]string{"a", "b"}), types.KindMultiString),
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, records, Options{Style: StyleList}))
	blocks := strings.Split(strings.TrimSpace(buf.String()), "\n\n")
	require.Len(t, blocks, 2)

	assert.Contains(t, blocks[0], "Name         : Alpha")
	assert.Contains(t, blocks[0], "Computername : WS01")
	assert.Contains(t, blocks[1], "Value        : {a, b}")
	assert.Contains(t, blocks[1], "TypeString   : MultiString")
}

func TestRender_EmptyAndUnknownStyle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil, Options{}))
	assert.Empty(t, buf.String())

	err := Render(&buf, []types.Record{record("a", types.StringValue("b"), types.KindString)}, Options{Style: "grid"})
	assert.True(t, errors.Is(err, types.ErrConfig))
}

func TestDisplayValue_TruncatesBinary(t *testing.T) {
	long := bytes.Repeat([]byte{0xab}, 40)
	got := DisplayValue(record("Blob", types.BytesValue(long), types.KindBinary))
	assert.Equal(t, strings.Repeat("ab", MaxBinaryBytes)+"…", got)

	short := DisplayValue(record("Blob", types.BytesValue([]byte{1, 2}), types.KindBinary))
	assert.Equal(t, "0102", short)

	assert.Equal(t, "", DisplayValue(types.PlaceholderRecord("HKEY_USERS", "x")))
}
