package regtext

import (
	"strings"

	"github.com/joshuapare/regexport/pkg/types"
)

// unescapeRegString undoes the \\ and \" escapes regedit writes in quoted
// names and string data. Other backslashes pass through unchanged.
func unescapeRegString(s string) string {
	if strings.IndexByte(s, '\\') == -1 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '"') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// findClosingQuote finds the closing quote of a string that opens at
// position 0, skipping quotes preceded by an odd number of backslashes.
func findClosingQuote(line string) int {
	for i := 1; i < len(line); i++ {
		if line[i] != '"' {
			continue
		}
		n := 0
		for j := i - 1; j >= 1 && line[j] == '\\'; j-- {
			n++
		}
		if n%2 == 0 {
			return i
		}
	}
	return -1
}

// parseHexBytes decodes comma-separated hex bytes. Whitespace and the
// backslashes left by line continuations are skipped; a single digit is
// read as a low nibble.
func parseHexBytes(s string) ([]byte, error) {
	out := make([]byte, 0, len(s)/3+1)
	for _, part := range strings.Split(s, ",") {
		part = strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\t', '\r', '\n', '\\':
				return -1
			}
			return r
		}, part)
		if part == "" {
			continue
		}
		if len(part) > 2 {
			return nil, types.Errorf(types.ErrKindFormat, "invalid hex byte %q", part)
		}
		var v byte
		for i := 0; i < len(part); i++ {
			n := hexNibble(part[i])
			if n == 0xFF {
				return nil, types.Errorf(types.ErrKindFormat, "invalid hex byte %q", part)
			}
			v = v<<4 | n
		}
		out = append(out, v)
	}
	return out, nil
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0xFF
	}
}
