// Package regtext reads .reg files, the text format regedit imports and
// exports, and loads them into an in-memory registry tree so they can be
// traversed like any other backend.
package regtext

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/regexport/internal/regpath"
	"github.com/joshuapare/regexport/pkg/types"
)

// OpKind identifies what a parsed .reg statement does.
type OpKind uint8

const (
	OpCreateKey OpKind = iota
	OpDeleteKey
	OpSetValue
	OpDeleteValue
)

// Op is one statement of a .reg file.
type Op struct {
	Kind OpKind
	Path types.KeyPath
	Name string        // value name; "" is the default value
	Type types.RegType // OpSetValue only
	Data []byte        // OpSetValue only
}

// Options controls parsing.
type Options struct {
	// Encoding applies when the input carries no BOM: "", "UTF-8",
	// "UTF-16LE" or "Windows-1252".
	Encoding string
}

// Parse converts .reg text into an ordered list of operations.
func Parse(data []byte, opts Options) ([]Op, error) {
	text, err := decodeInput(data, opts.Encoding)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, ScannerInitialBufferSize), ScannerMaxLineSize)

	var (
		ops        []Op
		legacy     bool
		seenHeader bool
		current    *types.KeyPath
		lineNo     int
		pending    strings.Builder
		startLine  int
	)

	handle := func(line string, at int) error {
		if !seenHeader {
			switch line {
			case HeaderV5:
			case HeaderV4:
				legacy = true
			default:
				return types.Errorf(types.ErrKindFormat, "regtext: line %d: missing header, got %q", at, line)
			}
			seenHeader = true
			return nil
		}

		if strings.HasPrefix(line, KeyOpenBracket) {
			op, err := parseSection(line)
			if err != nil {
				return fmt.Errorf("regtext: line %d: %w", at, err)
			}
			ops = append(ops, op)
			if op.Kind == OpDeleteKey {
				current = nil
			} else {
				p := op.Path
				current = &p
			}
			return nil
		}

		if current == nil {
			// Values under a deleted key are ignored by regedit too.
			if len(ops) > 0 && ops[len(ops)-1].Kind == OpDeleteKey {
				return nil
			}
			return types.Errorf(types.ErrKindFormat, "regtext: line %d: value outside a key section", at)
		}

		op, err := parseValueLine(*current, line, legacy)
		if err != nil {
			return fmt.Errorf("regtext: line %d: %w", at, err)
		}
		ops = append(ops, op)
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r"))

		if pending.Len() > 0 {
			pending.WriteString(line)
			if strings.HasSuffix(line, Backslash) {
				continue
			}
			joined := pending.String()
			pending.Reset()
			if err := handle(joined, startLine); err != nil {
				return nil, err
			}
			continue
		}

		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}

		// Long hex payloads wrap with a trailing backslash.
		if !strings.HasPrefix(line, KeyOpenBracket) && isContinued(line) {
			pending.WriteString(line)
			startLine = lineNo
			continue
		}

		if err := handle(line, lineNo); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, types.Wrap(types.ErrKindFormat, err, "regtext: scan input")
	}
	if pending.Len() > 0 {
		if err := handle(pending.String(), startLine); err != nil {
			return nil, err
		}
	}
	if !seenHeader {
		return nil, types.Errorf(types.ErrKindFormat, "regtext: empty input")
	}
	return ops, nil
}

// isContinued reports whether a value line wraps onto the next line. Only
// hex payloads wrap; a quoted string ending in an escaped backslash does not.
func isContinued(line string) bool {
	if !strings.HasSuffix(line, Backslash) {
		return false
	}
	eq := valuePayloadStart(line)
	if eq < 0 {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(line[eq:]), "hex")
}

// valuePayloadStart returns the index just after the '=' that separates a
// value name from its payload, or -1.
func valuePayloadStart(line string) int {
	if strings.HasPrefix(line, DefaultValuePrefix) {
		return len(DefaultValuePrefix)
	}
	if !strings.HasPrefix(line, Quote) {
		return -1
	}
	end := findClosingQuote(line)
	if end < 0 || end+1 >= len(line) || line[end+1] != '=' {
		return -1
	}
	return end + 2
}

func parseSection(line string) (Op, error) {
	if !strings.HasSuffix(line, KeyCloseBracket) {
		return Op{}, types.Errorf(types.ErrKindFormat, "malformed section %q", line)
	}
	section := strings.TrimSuffix(strings.TrimPrefix(line, KeyOpenBracket), KeyCloseBracket)

	kind := OpCreateKey
	if strings.HasPrefix(section, DeleteKeyPrefix) {
		kind = OpDeleteKey
		section = section[len(DeleteKeyPrefix):]
	}

	path, err := regpath.ParseLiteral(section)
	if err != nil {
		return Op{}, fmt.Errorf("section %q: %w", line, err)
	}
	return Op{Kind: kind, Path: path}, nil
}

func parseValueLine(path types.KeyPath, line string, legacy bool) (Op, error) {
	start := valuePayloadStart(line)
	if start < 0 {
		return Op{}, types.Errorf(types.ErrKindFormat, "malformed value line %q", line)
	}

	name := ""
	if !strings.HasPrefix(line, DefaultValuePrefix) {
		name = unescapeRegString(line[1 : start-2])
	}

	payload := strings.TrimSpace(line[start:])
	if payload == DeleteValueToken {
		return Op{Kind: OpDeleteValue, Path: path, Name: name}, nil
	}

	typ, data, err := parsePayload(payload, legacy)
	if err != nil {
		return Op{}, err
	}
	return Op{Kind: OpSetValue, Path: path, Name: name, Type: typ, Data: data}, nil
}

func parsePayload(payload string, legacy bool) (types.RegType, []byte, error) {
	switch {
	case strings.HasPrefix(payload, Quote):
		if len(payload) < 2 || !strings.HasSuffix(payload, Quote) || findClosingQuote(payload) != len(payload)-1 {
			return 0, nil, types.Errorf(types.ErrKindFormat, "unterminated string %q", payload)
		}
		return types.REG_SZ, types.EncodeString(unescapeRegString(payload[1 : len(payload)-1])), nil

	case strings.HasPrefix(strings.ToLower(payload), DWORDPrefix):
		digits := payload[len(DWORDPrefix):]
		if len(digits) != DWORDHexLength {
			return 0, nil, types.Errorf(types.ErrKindFormat, "invalid dword %q", payload)
		}
		n, err := strconv.ParseUint(digits, 16, 32)
		if err != nil {
			return 0, nil, types.Wrap(types.ErrKindFormat, err, "invalid dword %q", payload)
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(n))
		return types.REG_DWORD, buf, nil

	case strings.HasPrefix(strings.ToLower(payload), HexPrefix):
		data, err := parseHexBytes(payload[len(HexPrefix):])
		if err != nil {
			return 0, nil, err
		}
		return types.REG_BINARY, data, nil

	case strings.HasPrefix(strings.ToLower(payload), HexTypedPrefix):
		closeParen := strings.Index(payload, "):")
		if closeParen < 0 {
			return 0, nil, types.Errorf(types.ErrKindFormat, "malformed typed hex %q", payload)
		}
		n, err := strconv.ParseUint(payload[len(HexTypedPrefix):closeParen], 16, 32)
		if err != nil {
			return 0, nil, types.Wrap(types.ErrKindFormat, err, "invalid hex type in %q", payload)
		}
		typ := types.RegType(n)
		data, err := parseHexBytes(payload[closeParen+2:])
		if err != nil {
			return 0, nil, err
		}
		if legacy && (typ == types.REG_EXPAND_SZ || typ == types.REG_MULTI_SZ) {
			data, err = ansiToUTF16(typ, data)
			if err != nil {
				return 0, nil, err
			}
		}
		return typ, data, nil

	default:
		return 0, nil, types.Errorf(types.ErrKindFormat, "unsupported value payload %q", payload)
	}
}
