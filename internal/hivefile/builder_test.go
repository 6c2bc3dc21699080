package hivefile

import (
	"encoding/binary"

	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/regexport/pkg/types"
)

// testHive assembles a minimal single-bin regf image. Cells are appended in
// call order, so children must be built before their parents.
type testHive struct {
	cells []byte
}

// alloc appends an allocated cell and returns its hive-relative offset.
func (b *testHive) alloc(payload []byte) uint32 {
	off := uint32(hbinHeaderSize + len(b.cells))
	size := (len(payload) + cellHeaderSize + 7) &^ 7
	cell := make([]byte, size)
	binary.LittleEndian.PutUint32(cell, uint32(-int32(size)))
	copy(cell[cellHeaderSize:], payload)
	b.cells = append(b.cells, cell...)
	return off
}

// free appends an unallocated cell.
func (b *testHive) free(size int) uint32 {
	off := uint32(hbinHeaderSize + len(b.cells))
	cell := make([]byte, size)
	binary.LittleEndian.PutUint32(cell, uint32(size))
	b.cells = append(b.cells, cell...)
	return off
}

func encodeTestName(name string, compressed bool) []byte {
	if compressed {
		out, err := charmap.Windows1252.NewEncoder().Bytes([]byte(name))
		if err != nil {
			panic(err)
		}
		return out
	}
	raw := types.EncodeString(name)
	return raw[:len(raw)-2]
}

type listKind string

// key builds an nk cell. Subkeys are referenced through a list of the
// given kind; for "ri" the entries are split across an li and an lh list.
func (b *testHive) key(name string, compressed bool, kind listKind, subkeys, values []uint32) uint32 {
	subList := uint32(invalidOffset)
	if len(subkeys) > 0 {
		subList = b.list(kind, subkeys)
	}
	valList := uint32(invalidOffset)
	if len(values) > 0 {
		raw := make([]byte, 4*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint32(raw[i*4:], v)
		}
		valList = b.alloc(raw)
	}

	nameRaw := encodeTestName(name, compressed)
	p := make([]byte, nkNameOffset+len(nameRaw))
	copy(p, sigNK)
	var flags uint16
	if compressed {
		flags |= nkFlagCompressedName
	}
	binary.LittleEndian.PutUint16(p[nkFlagsOffset:], flags)
	binary.LittleEndian.PutUint32(p[nkSubkeyCountOffset:], uint32(len(subkeys)))
	binary.LittleEndian.PutUint32(p[nkSubkeyListOffset:], subList)
	binary.LittleEndian.PutUint32(p[nkValueCountOffset:], uint32(len(values)))
	binary.LittleEndian.PutUint32(p[nkValueListOffset:], valList)
	binary.LittleEndian.PutUint16(p[nkNameLenOffset:], uint16(len(nameRaw)))
	copy(p[nkNameOffset:], nameRaw)
	return b.alloc(p)
}

func (b *testHive) list(kind listKind, offs []uint32) uint32 {
	if kind == sigRI {
		half := len(offs) / 2
		return b.rawList(sigRI, liEntrySize, []uint32{
			b.rawList(sigLI, liEntrySize, offs[:half]),
			b.rawList(sigLH, lfEntrySize, offs[half:]),
		})
	}
	if kind == sigLI {
		return b.rawList(sigLI, liEntrySize, offs)
	}
	return b.rawList(string(kind), lfEntrySize, offs)
}

func (b *testHive) rawList(sig string, stride int, offs []uint32) uint32 {
	p := make([]byte, listHeaderSize+stride*len(offs))
	copy(p, sig)
	binary.LittleEndian.PutUint16(p[2:], uint16(len(offs)))
	for i, off := range offs {
		binary.LittleEndian.PutUint32(p[listHeaderSize+i*stride:], off)
	}
	return b.alloc(p)
}

// value builds a vk cell, storing data inline, in a data cell, or across
// db blocks depending on its size.
func (b *testHive) value(name string, typ types.RegType, data []byte) uint32 {
	ascii := true
	for _, r := range name {
		if r > 0x7f {
			ascii = false
		}
	}
	nameRaw := encodeTestName(name, ascii)

	p := make([]byte, vkNameOffset+len(nameRaw))
	copy(p, sigVK)
	binary.LittleEndian.PutUint16(p[vkNameLenOffset:], uint16(len(nameRaw)))
	binary.LittleEndian.PutUint32(p[vkTypeOffset:], uint32(typ))
	if ascii && name != "" {
		binary.LittleEndian.PutUint16(p[vkFlagsOffset:], vkFlagASCIIName)
	}
	copy(p[vkNameOffset:], nameRaw)

	switch {
	case len(data) <= vkInlineMax:
		binary.LittleEndian.PutUint32(p[vkDataLenOffset:], uint32(len(data))|vkDataInlineFlag)
		copy(p[vkDataOffOffset:], data)
	case len(data) > dbChunkSize:
		var blocks []uint32
		for rest := data; len(rest) > 0; {
			n := min(len(rest), dbChunkSize)
			blocks = append(blocks, b.alloc(rest[:n]))
			rest = rest[n:]
		}
		raw := make([]byte, 4*len(blocks))
		for i, off := range blocks {
			binary.LittleEndian.PutUint32(raw[i*4:], off)
		}
		listOff := b.alloc(raw)
		db := make([]byte, dbHeaderSize)
		copy(db, sigDB)
		binary.LittleEndian.PutUint16(db[dbCountOffset:], uint16(len(blocks)))
		binary.LittleEndian.PutUint32(db[dbListOffset:], listOff)
		binary.LittleEndian.PutUint32(p[vkDataLenOffset:], uint32(len(data)))
		binary.LittleEndian.PutUint32(p[vkDataOffOffset:], b.alloc(db))
	default:
		binary.LittleEndian.PutUint32(p[vkDataLenOffset:], uint32(len(data)))
		binary.LittleEndian.PutUint32(p[vkDataOffOffset:], b.alloc(data))
	}
	return b.alloc(p)
}

// bytes renders the image with root as the root cell.
func (b *testHive) bytes(root uint32) []byte {
	binSize := (hbinHeaderSize + len(b.cells) + HeaderSize - 1) &^ (HeaderSize - 1)
	out := make([]byte, HeaderSize+binSize)
	copy(out, regfSignature)
	binary.LittleEndian.PutUint32(out[regfRootCellOffset:], root)
	binary.LittleEndian.PutUint32(out[regfDataSizeOffset:], uint32(binSize))

	bin := out[HeaderSize:]
	copy(bin, hbinSignature)
	binary.LittleEndian.PutUint32(bin[8:], uint32(binSize))
	copy(bin[hbinHeaderSize:], b.cells)
	return out
}
