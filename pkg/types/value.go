package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// DataKind tags which member of the Value union is populated.
type DataKind uint8

const (
	DataNull DataKind = iota
	DataString
	DataStrings
	DataUint32
	DataUint64
	DataBytes
)

func (k DataKind) String() string {
	switch k {
	case DataString:
		return "String"
	case DataStrings:
		return "Strings"
	case DataUint32:
		return "UInt32"
	case DataUint64:
		return "UInt64"
	case DataBytes:
		return "Bytes"
	default:
		return "Null"
	}
}

// MultiStringSeparator joins REG_MULTI_SZ members in flat text output.
const MultiStringSeparator = ";"

// Value is the typed data of a registry value: null, string, string list,
// 32-bit integer, 64-bit integer, or raw bytes.
type Value struct {
	kind DataKind
	str  string
	strs []string
	num  uint64
	raw  []byte
}

func NullValue() Value              { return Value{kind: DataNull} }
func StringValue(s string) Value    { return Value{kind: DataString, str: s} }
func DWordValue(v uint32) Value     { return Value{kind: DataUint32, num: uint64(v)} }
func QWordValue(v uint64) Value     { return Value{kind: DataUint64, num: v} }
func StringsValue(s []string) Value { return Value{kind: DataStrings, strs: append([]string{}, s...)} }
func BytesValue(b []byte) Value     { return Value{kind: DataBytes, raw: append([]byte{}, b...)} }

// Kind returns which union member is set.
func (v Value) Kind() DataKind { return v.kind }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == DataNull }

// Interface returns the Go value: nil, string, []string, uint32, uint64 or []byte.
func (v Value) Interface() any {
	switch v.kind {
	case DataString:
		return v.str
	case DataStrings:
		return append([]string{}, v.strs...)
	case DataUint32:
		return uint32(v.num)
	case DataUint64:
		return v.num
	case DataBytes:
		return append([]byte{}, v.raw...)
	default:
		return nil
	}
}

// String renders the value as flat text: strings as-is, lists joined with
// MultiStringSeparator, integers in decimal, bytes as lowercase hex, null as "".
func (v Value) String() string {
	switch v.kind {
	case DataString:
		return v.str
	case DataStrings:
		return strings.Join(v.strs, MultiStringSeparator)
	case DataUint32, DataUint64:
		return strconv.FormatUint(v.num, 10)
	case DataBytes:
		return hex.EncodeToString(v.raw)
	default:
		return ""
	}
}

// Equal compares kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case DataString:
		return v.str == o.str
	case DataStrings:
		if len(v.strs) != len(o.strs) {
			return false
		}
		for i := range v.strs {
			if v.strs[i] != o.strs[i] {
				return false
			}
		}
		return true
	case DataUint32, DataUint64:
		return v.num == o.num
	case DataBytes:
		return bytes.Equal(v.raw, o.raw)
	default:
		return true
	}
}

// jsonable returns the representation shared by the JSON and YAML encoders.
// Bytes are hex so binary payloads stay readable in both.
func (v Value) jsonable() any {
	switch v.kind {
	case DataBytes:
		return hex.EncodeToString(v.raw)
	case DataStrings:
		if v.strs == nil {
			return []string{}
		}
		return v.strs
	default:
		return v.Interface()
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.jsonable())
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.jsonable(), nil
}

// -----------------------------------------------------------------------------
// Decoding raw registry data
// -----------------------------------------------------------------------------

const (
	dwordSize = 4
	qwordSize = 8
)

// DecodeValue converts raw registry bytes into a kind and typed Value.
// Strings and lists are UTF-16LE; integers are little-endian. Integer data
// whose length differs from its declared width is reported as ErrKindCorrupt
// rather than guessed at.
func DecodeValue(t RegType, raw []byte) (ValueKind, Value, error) {
	kind := t.Kind()
	switch kind {
	case KindString, KindExpandString:
		s, err := decodeUTF16(raw)
		if err != nil {
			return kind, Value{}, err
		}
		// Anything after the first NUL is slack, not data.
		if i := strings.IndexByte(s, 0); i >= 0 {
			s = s[:i]
		}
		return kind, StringValue(s), nil

	case KindMultiString:
		s, err := decodeUTF16(raw)
		if err != nil {
			return kind, Value{}, err
		}
		return kind, StringsValue(splitMultiString(s)), nil

	case KindDWord:
		if len(raw) != dwordSize {
			return kind, Value{}, Errorf(ErrKindCorrupt, "dword payload is %d bytes", len(raw))
		}
		return kind, DWordValue(binary.LittleEndian.Uint32(raw)), nil

	case KindQWord:
		if len(raw) != qwordSize {
			return kind, Value{}, Errorf(ErrKindCorrupt, "qword payload is %d bytes", len(raw))
		}
		return kind, QWordValue(binary.LittleEndian.Uint64(raw)), nil

	default:
		return kind, BytesValue(raw), nil
	}
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func decodeUTF16(raw []byte) (string, error) {
	if len(raw)%2 == 1 {
		// Odd trailing byte is padding left by some writers.
		raw = raw[:len(raw)-1]
	}
	if len(raw) == 0 {
		return "", nil
	}
	out, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", Wrap(ErrKindCorrupt, err, "decode utf-16 data")
	}
	return string(out), nil
}

// splitMultiString splits a decoded REG_MULTI_SZ payload at NULs, stopping at
// the first empty member (the double-NUL terminator).
func splitMultiString(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, "\x00") {
		if part == "" {
			break
		}
		out = append(out, part)
	}
	return out
}

// EncodeString encodes s as NUL-terminated UTF-16LE, the on-disk form of REG_SZ.
func EncodeString(s string) []byte {
	out, _ := utf16le.NewEncoder().Bytes([]byte(s))
	return append(out, 0, 0)
}

// EncodeMultiString encodes a REG_MULTI_SZ payload with its double-NUL terminator.
func EncodeMultiString(values []string) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		buf.Write(EncodeString(v))
	}
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}
