package hivefile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/regexport/pkg/types"
)

func corruptf(format string, args ...any) error {
	return types.Errorf(types.ErrKindCorrupt, "hivefile: "+format, args...)
}

// cell returns the payload of the allocated cell at the hive-relative
// offset off. Free cells (positive size) are never valid targets.
func (h *Hive) cell(off uint32) ([]byte, error) {
	if off == invalidOffset {
		return nil, corruptf("reference to invalid cell offset")
	}
	abs := int64(HeaderSize) + int64(off)
	if abs+cellHeaderSize > int64(len(h.data)) {
		return nil, corruptf("cell 0x%x out of bounds", off)
	}
	size := int32(binary.LittleEndian.Uint32(h.data[abs:]))
	if size >= 0 {
		return nil, corruptf("cell 0x%x is not allocated", off)
	}
	n := -int64(size)
	if n < cellHeaderSize || abs+n > int64(len(h.data)) {
		return nil, corruptf("cell 0x%x size %d exceeds hive", off, n)
	}
	return h.data[abs+cellHeaderSize : abs+n], nil
}

// typedCell returns a cell payload after checking its two-byte signature.
func (h *Hive) typedCell(off uint32, sig string, min int) ([]byte, error) {
	p, err := h.cell(off)
	if err != nil {
		return nil, err
	}
	if len(p) < min || string(p[:2]) != sig {
		return nil, corruptf("cell 0x%x: expected %q record", off, sig)
	}
	return p, nil
}

// nk is a decoded key node.
type nk struct {
	name        string
	subkeyCount uint32
	subkeyList  uint32
	valueCount  uint32
	valueList   uint32
}

func (h *Hive) readNK(off uint32) (nk, error) {
	p, err := h.typedCell(off, sigNK, nkNameOffset)
	if err != nil {
		return nk{}, err
	}
	nameLen := int(binary.LittleEndian.Uint16(p[nkNameLenOffset:]))
	if nkNameOffset+nameLen > len(p) {
		return nk{}, corruptf("nk 0x%x: name overruns cell", off)
	}
	compressed := binary.LittleEndian.Uint16(p[nkFlagsOffset:])&nkFlagCompressedName != 0
	name, err := decodeName(p[nkNameOffset:nkNameOffset+nameLen], compressed)
	if err != nil {
		return nk{}, fmt.Errorf("nk 0x%x: %w", off, err)
	}
	k := nk{
		name:        name,
		subkeyCount: binary.LittleEndian.Uint32(p[nkSubkeyCountOffset:]),
		subkeyList:  binary.LittleEndian.Uint32(p[nkSubkeyListOffset:]),
		valueCount:  binary.LittleEndian.Uint32(p[nkValueCountOffset:]),
		valueList:   binary.LittleEndian.Uint32(p[nkValueListOffset:]),
	}
	if k.subkeyCount > types.WindowsMaxSubkeysAbsolute {
		return nk{}, corruptf("nk 0x%x: %d subkeys exceeds %d", off, k.subkeyCount, types.WindowsMaxSubkeysAbsolute)
	}
	if k.valueCount > types.WindowsMaxValues {
		return nk{}, corruptf("nk 0x%x: %d values exceeds %d", off, k.valueCount, types.WindowsMaxValues)
	}
	return k, nil
}

// vk is a decoded value record. Data is resolved lazily.
type vk struct {
	name    string
	typ     types.RegType
	dataLen uint32
	dataOff uint32
	inline  []byte
}

func (h *Hive) readVK(off uint32) (vk, error) {
	p, err := h.typedCell(off, sigVK, vkNameOffset)
	if err != nil {
		return vk{}, err
	}
	nameLen := int(binary.LittleEndian.Uint16(p[vkNameLenOffset:]))
	if vkNameOffset+nameLen > len(p) {
		return vk{}, corruptf("vk 0x%x: name overruns cell", off)
	}
	ascii := binary.LittleEndian.Uint16(p[vkFlagsOffset:])&vkFlagASCIIName != 0
	name, err := decodeName(p[vkNameOffset:vkNameOffset+nameLen], ascii)
	if err != nil {
		return vk{}, fmt.Errorf("vk 0x%x: %w", off, err)
	}
	if n := utf8.RuneCountInString(name); n > types.WindowsMaxValueNameLen {
		return vk{}, corruptf("vk 0x%x: value name is %d characters, limit %d", off, n, types.WindowsMaxValueNameLen)
	}

	v := vk{
		name:    name,
		typ:     types.RegType(binary.LittleEndian.Uint32(p[vkTypeOffset:])),
		dataLen: binary.LittleEndian.Uint32(p[vkDataLenOffset:]),
		dataOff: binary.LittleEndian.Uint32(p[vkDataOffOffset:]),
	}
	if v.dataLen&vkDataInlineFlag != 0 {
		n := v.dataLen &^ vkDataInlineFlag
		if n > vkInlineMax {
			return vk{}, corruptf("vk 0x%x: inline length %d", off, n)
		}
		v.dataLen = n
		v.inline = p[vkDataOffOffset : vkDataOffOffset+int(n)]
	}
	return v, nil
}

// valueData returns a copy of the value's bytes.
func (h *Hive) valueData(v vk) ([]byte, error) {
	if v.inline != nil || v.dataLen == 0 {
		return bytes.Clone(v.inline), nil
	}
	p, err := h.cell(v.dataOff)
	if err != nil {
		return nil, err
	}
	if v.dataLen > dbChunkSize && len(p) >= dbHeaderSize && string(p[:2]) == sigDB {
		return h.bigData(p, v.dataLen)
	}
	if int(v.dataLen) > len(p) {
		return nil, corruptf("value data 0x%x: length %d exceeds cell", v.dataOff, v.dataLen)
	}
	return bytes.Clone(p[:v.dataLen]), nil
}

// bigData reassembles a value split across db blocks.
func (h *Hive) bigData(db []byte, length uint32) ([]byte, error) {
	count := int(binary.LittleEndian.Uint16(db[dbCountOffset:]))
	list, err := h.cell(binary.LittleEndian.Uint32(db[dbListOffset:]))
	if err != nil {
		return nil, err
	}
	if count*4 > len(list) {
		return nil, corruptf("db block list holds %d entries, want %d", len(list)/4, count)
	}

	out := make([]byte, 0, length)
	for i := 0; i < count && uint32(len(out)) < length; i++ {
		block, err := h.cell(binary.LittleEndian.Uint32(list[i*4:]))
		if err != nil {
			return nil, err
		}
		take := min(int(length)-len(out), dbChunkSize, len(block))
		out = append(out, block[:take]...)
	}
	if uint32(len(out)) != length {
		return nil, corruptf("db blocks hold %d bytes, want %d", len(out), length)
	}
	return out, nil
}

// subkeyOffsets flattens a subkey list (lf, lh, li or ri) into nk offsets.
func (h *Hive) subkeyOffsets(off uint32, depth int) ([]uint32, error) {
	if depth > maxListDepth {
		return nil, corruptf("subkey list 0x%x nested too deeply", off)
	}
	p, err := h.cell(off)
	if err != nil {
		return nil, err
	}
	if len(p) < listHeaderSize {
		return nil, corruptf("subkey list 0x%x truncated", off)
	}
	count := int(binary.LittleEndian.Uint16(p[2:]))

	var stride int
	switch string(p[:2]) {
	case sigLF, sigLH:
		stride = lfEntrySize
	case sigLI, sigRI:
		stride = liEntrySize
	default:
		return nil, corruptf("cell 0x%x: unknown subkey list %q", off, p[:2])
	}
	if listHeaderSize+count*stride > len(p) {
		return nil, corruptf("subkey list 0x%x: %d entries overrun cell", off, count)
	}

	out := make([]uint32, 0, count)
	for i := 0; i < count; i++ {
		entry := binary.LittleEndian.Uint32(p[listHeaderSize+i*stride:])
		if string(p[:2]) != sigRI {
			out = append(out, entry)
			continue
		}
		sub, err := h.subkeyOffsets(entry, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// valueOffsets reads a key's value list.
func (h *Hive) valueOffsets(k nk) ([]uint32, error) {
	if k.valueCount == 0 || k.valueList == invalidOffset {
		return nil, nil
	}
	p, err := h.cell(k.valueList)
	if err != nil {
		return nil, err
	}
	if int(k.valueCount)*4 > len(p) {
		return nil, corruptf("value list 0x%x: %d entries overrun cell", k.valueList, k.valueCount)
	}
	out := make([]uint32, k.valueCount)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(p[i*4:])
	}
	return out, nil
}

var (
	utf16Name = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// decodeName decodes a key or value name. Compressed names are
// Windows-1252; the rest are UTF-16LE.
func decodeName(raw []byte, compressed bool) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var (
		out []byte
		err error
	)
	if compressed {
		out, err = charmap.Windows1252.NewDecoder().Bytes(raw)
	} else {
		if len(raw)%2 != 0 {
			return "", corruptf("odd-length UTF-16 name")
		}
		out, err = utf16Name.NewDecoder().Bytes(raw)
	}
	if err != nil {
		return "", types.Wrap(types.ErrKindCorrupt, err, "hivefile: decode name")
	}
	return string(out), nil
}
