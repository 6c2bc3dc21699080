package hivefile

var (
	regfSignature = []byte{'r', 'e', 'g', 'f'}
	hbinSignature = []byte{'h', 'b', 'i', 'n'}
)

// Two-byte cell signatures.
const (
	sigNK = "nk"
	sigVK = "vk"
	sigLF = "lf"
	sigLH = "lh"
	sigLI = "li"
	sigRI = "ri"
	sigDB = "db"
)

const (
	// HeaderSize is the size of the base block; the first hive bin follows it
	// and every cell offset is relative to it.
	HeaderSize = 0x1000

	// REGF header fields.
	regfRootCellOffset = 0x24
	regfDataSizeOffset = 0x28

	hbinHeaderSize = 0x20
	cellHeaderSize = 4

	// NK field offsets (from the start of the cell payload).
	nkFlagsOffset       = 0x02
	nkSubkeyCountOffset = 0x14
	nkSubkeyListOffset  = 0x1C
	nkValueCountOffset  = 0x24
	nkValueListOffset   = 0x28
	nkNameLenOffset     = 0x48
	nkNameOffset        = 0x4C

	// nkFlagCompressedName marks an NK name stored as single-byte characters.
	nkFlagCompressedName = 0x0020

	// VK field offsets.
	vkNameLenOffset  = 0x02
	vkDataLenOffset  = 0x04
	vkDataOffOffset  = 0x08
	vkTypeOffset     = 0x0C
	vkFlagsOffset    = 0x10
	vkNameOffset     = 0x14
	vkFlagASCIIName  = 0x0001
	vkDataInlineFlag = 0x80000000
	vkInlineMax      = 4

	// List headers: signature (2) + count (2).
	listHeaderSize = 4
	lfEntrySize    = 8 // offset + name hash
	liEntrySize    = 4

	// Big data.
	dbCountOffset = 0x02
	dbListOffset  = 0x04
	dbHeaderSize  = 0x0C
	dbChunkSize   = 16344

	invalidOffset = 0xFFFFFFFF

	// maxListDepth bounds ri -> lf/lh/li indirection; ri never nests in
	// hives written by Windows.
	maxListDepth = 2
)
