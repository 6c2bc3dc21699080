package regtext

const (
	// ============================================================================
	// Headers
	// ============================================================================

	// HeaderV5 is the header of Unicode .reg files written by regedit.
	HeaderV5 = "Windows Registry Editor Version 5.00"

	// HeaderV4 is the header of legacy ANSI .reg files.
	HeaderV4 = "REGEDIT4"

	// ============================================================================
	// Structural tokens
	// ============================================================================

	KeyOpenBracket     = "["
	KeyCloseBracket    = "]"
	DeleteKeyPrefix    = "-"
	ValueAssignment    = "="
	DefaultValuePrefix = "@="
	CommentPrefix      = ";"
	DeleteValueToken   = "-"
	Quote              = `"`
	Backslash          = `\`

	// ============================================================================
	// Value prefixes
	// ============================================================================

	DWORDPrefix    = "dword:"
	HexPrefix      = "hex:"
	HexTypedPrefix = "hex("

	// DWORDHexLength is the exact digit count regedit writes after dword:.
	DWORDHexLength = 8

	// ============================================================================
	// Encodings accepted by Options.Encoding
	// ============================================================================

	EncodingUTF8        = "UTF-8"
	EncodingUTF16LE     = "UTF-16LE"
	EncodingWindows1252 = "WINDOWS-1252"

	// ============================================================================
	// Scanner sizing
	// ============================================================================

	// ScannerInitialBufferSize is the initial scanner buffer.
	ScannerInitialBufferSize = 64 * 1024

	// ScannerMaxLineSize bounds a single physical line; large binary values
	// are usually split with continuations well below this.
	ScannerMaxLineSize = 1024 * 1024
)

var (
	// UTF16LEBOM is the byte order mark for UTF-16 little-endian.
	UTF16LEBOM = []byte{0xFF, 0xFE}

	// UTF8BOM is the byte order mark for UTF-8.
	UTF8BOM = []byte{0xEF, 0xBB, 0xBF}
)
