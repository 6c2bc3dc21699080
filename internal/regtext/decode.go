package regtext

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/regexport/pkg/types"
)

// decodeInput converts raw file bytes to UTF-8 text. A byte order mark
// always wins over the requested encoding.
func decodeInput(data []byte, enc string) (string, error) {
	switch {
	case bytes.HasPrefix(data, UTF16LEBOM):
		return transformString(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data)
	case bytes.HasPrefix(data, UTF8BOM):
		return string(data[len(UTF8BOM):]), nil
	}

	switch strings.ToUpper(enc) {
	case "", EncodingUTF8:
		return string(data), nil
	case EncodingUTF16LE:
		return transformString(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), data)
	case EncodingWindows1252, "CP1252":
		return transformString(charmap.Windows1252, data)
	default:
		return "", types.Errorf(types.ErrKindUnsupported, "regtext: unsupported input encoding %q", enc)
	}
}

func transformString(e encoding.Encoding, data []byte) (string, error) {
	out, _, err := transform.Bytes(e.NewDecoder(), data)
	if err != nil {
		return "", types.Wrap(types.ErrKindFormat, err, "regtext: decode input")
	}
	return string(out), nil
}

// ansiToUTF16 re-encodes the string payload of a REGEDIT4 hex(2)/hex(7)
// value. Those files store string data as single-byte ANSI, while the rest
// of the tool expects the UTF-16LE layout the registry itself uses.
func ansiToUTF16(typ types.RegType, data []byte) ([]byte, error) {
	text, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return nil, types.Wrap(types.ErrKindFormat, err, "regtext: decode ANSI string data")
	}

	if typ == types.REG_MULTI_SZ {
		parts := strings.Split(strings.TrimRight(string(text), "\x00"), "\x00")
		if len(parts) == 1 && parts[0] == "" {
			parts = nil
		}
		return types.EncodeMultiString(parts), nil
	}
	return types.EncodeString(strings.TrimRight(string(text), "\x00")), nil
}
