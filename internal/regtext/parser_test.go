package regtext

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/regexport/internal/regpath"
	"github.com/joshuapare/regexport/pkg/types"
)

const sample = `Windows Registry Editor Version 5.00

; exported settings
[HKEY_CURRENT_USER\SOFTWARE\Test]
@="default text"
"Name"="C:\\Program Files\\\"App\""
"Count"=dword:0000002a
"Blob"=hex:de,ad,\
  be,ef
"Path"=hex(2):25,00,41,00,25,00,00,00
"List"=hex(7):61,00,00,00,62,00,00,00,00,00
"Big"=hex(b):01,00,00,00,00,00,00,00

[HKEY_CURRENT_USER\SOFTWARE\Test\Empty]
`

func TestParse_Statements(t *testing.T) {
	ops, err := Parse([]byte(sample), Options{})
	require.NoError(t, err)
	require.Len(t, ops, 9)

	key := regpath.MustParse(`HKCU\SOFTWARE\Test`)
	assert.Equal(t, OpCreateKey, ops[0].Kind)
	assert.True(t, key.Equal(ops[0].Path))

	def := ops[1]
	assert.Equal(t, "", def.Name)
	assert.Equal(t, types.REG_SZ, def.Type)
	assert.Equal(t, types.EncodeString("default text"), def.Data)

	assert.Equal(t, "Name", ops[2].Name)
	assert.Equal(t, types.EncodeString(`C:\Program Files\"App"`), ops[2].Data)

	assert.Equal(t, types.REG_DWORD, ops[3].Type)
	assert.Equal(t, []byte{0x2a, 0, 0, 0}, ops[3].Data)

	assert.Equal(t, types.REG_BINARY, ops[4].Type)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, ops[4].Data, "continuation lines join")

	assert.Equal(t, types.REG_EXPAND_SZ, ops[5].Type)
	assert.Equal(t, types.REG_MULTI_SZ, ops[6].Type)
	assert.Equal(t, types.REG_QWORD, ops[7].Type)

	assert.Equal(t, OpCreateKey, ops[8].Kind)
	assert.Equal(t, `HKEY_CURRENT_USER\SOFTWARE\Test\Empty`, ops[8].Path.String())
}

func TestParse_Deletions(t *testing.T) {
	in := `Windows Registry Editor Version 5.00

[-HKEY_LOCAL_MACHINE\SOFTWARE\Old]
"ignored"="x"

[HKLM\SOFTWARE\Keep]
"gone"=-
`
	ops, err := Parse([]byte(in), Options{})
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, OpDeleteKey, ops[0].Kind)
	assert.Equal(t, OpCreateKey, ops[1].Kind)
	assert.Equal(t, OpDeleteValue, ops[2].Kind)
	assert.Equal(t, "gone", ops[2].Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing header", "[HKCU\\X]\n"},
		{"empty", ""},
		{"value before section", "REGEDIT4\n\"a\"=\"b\"\n"},
		{"bad dword", "REGEDIT4\n[HKCU\\X]\n\"a\"=dword:12\n"},
		{"bad hex", "REGEDIT4\n[HKCU\\X]\n\"a\"=hex:zz\n"},
		{"unterminated string", "REGEDIT4\n[HKCU\\X]\n\"a\"=\"b\n"},
		{"unknown payload", "REGEDIT4\n[HKCU\\X]\n\"a\"=word:1\n"},
		{"unknown root", "REGEDIT4\n[HKEY_NOWHERE\\X]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in), Options{})
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("REGEDIT4\n"), Options{Encoding: "EBCDIC"})
	assert.True(t, errors.Is(err, types.ErrUnsupported))
}

func TestParse_UTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("Windows Registry Editor Version 5.00\r\n\r\n[HKCU\\Über]\r\n\"Grüße\"=\"ja\"\r\n"))
	require.NoError(t, err)

	ops, err := Parse(data, Options{})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, `HKEY_CURRENT_USER\Über`, ops[0].Path.String())
	assert.Equal(t, "Grüße", ops[1].Name)
}

func TestParse_LegacyANSIStrings(t *testing.T) {
	// REGEDIT4 stores hex(2) string data as single-byte ANSI.
	name, err := charmap.Windows1252.NewEncoder().String("café")
	require.NoError(t, err)
	hexName := ""
	for i := 0; i < len(name); i++ {
		hexName += fmt.Sprintf("%02x,", name[i])
	}
	in := "REGEDIT4\n\n[HKCU\\X]\n\"p\"=hex(2):" + hexName + "00\n"

	ops, err := Parse([]byte(in), Options{})
	require.NoError(t, err)
	require.Len(t, ops, 2)

	kind, v, err := types.DecodeValue(ops[1].Type, ops[1].Data)
	require.NoError(t, err)
	assert.Equal(t, types.KindExpandString, kind)
	assert.Equal(t, "café", v.String())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.reg")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	tree, err := LoadFile(path, Options{})
	require.NoError(t, err)

	key := regpath.MustParse(`HKCU\SOFTWARE\Test`)
	info, err := tree.Stat(key)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Name", "Count", "Blob", "Path", "List", "Big"}, info.ValueNames)
	assert.Equal(t, 1, info.SubkeyCount)

	typ, data, err := tree.GetValue(key, "Count")
	require.NoError(t, err)
	assert.Equal(t, types.REG_DWORD, typ)
	assert.Equal(t, []byte{0x2a, 0, 0, 0}, data)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.reg"), Options{})
	assert.Error(t, err)
}

func TestLoad_DeletionsApply(t *testing.T) {
	in := `Windows Registry Editor Version 5.00

[HKCU\A\B]
"v"="1"
"w"="2"

[HKCU\A\B]
"v"=-

[-HKCU\A\C]
`
	tree, err := Load([]byte(in), Options{})
	require.NoError(t, err)

	info, err := tree.Stat(regpath.MustParse(`HKCU\A\B`))
	require.NoError(t, err)
	assert.Equal(t, []string{"w"}, info.ValueNames)
}

func TestLoad_SlashInKeyName(t *testing.T) {
	in := `Windows Registry Editor Version 5.00

[HKEY_CLASSES_ROOT\MIME\Database\Content Type\application/json]
"Extension"=".json"
`
	tree, err := Load([]byte(in), Options{})
	require.NoError(t, err)

	parent := types.NewKeyPath(types.RootClassesRoot, "MIME", "Database", "Content Type")
	names, err := tree.Subkeys(parent)
	require.NoError(t, err)
	assert.Equal(t, []string{"application/json"}, names)

	info, err := tree.Stat(parent.Child("application/json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Extension"}, info.ValueNames)

	exists, err := tree.KeyExists(parent.Child("application"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLoad_ValueNameTooLong(t *testing.T) {
	in := "Windows Registry Editor Version 5.00\n\n[HKCU\\A]\n\"" +
		strings.Repeat("n", types.WindowsMaxValueNameLen+1) + "\"=\"x\"\n"
	_, err := Load([]byte(in), Options{})
	require.Error(t, err)
	kind, ok := types.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindFormat, kind)
}

func TestUnescapeRegString(t *testing.T) {
	assert.Equal(t, `plain`, unescapeRegString(`plain`))
	assert.Equal(t, `C:\`, unescapeRegString(`C:\\`))
	assert.Equal(t, `a"b`, unescapeRegString(`a\"b`))
	assert.Equal(t, `\"`, unescapeRegString(`\\\"`))
	assert.Equal(t, `\n`, unescapeRegString(`\n`))
}

func TestFindClosingQuote(t *testing.T) {
	assert.Equal(t, 5, findClosingQuote(`"C:\\"=x`))
	assert.Equal(t, 4, findClosingQuote(`"a\""=x`))
	assert.Equal(t, -1, findClosingQuote(`"abc`))
}
