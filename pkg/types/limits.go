package types

// ============================================================================
// Windows Registry Limits Constants
// ============================================================================
// These constants define the official limits imposed by Windows Registry.
// Readers use them to reject nonsense coming from corrupt hives or
// hand-written .reg files before it turns into a record.

const (
	// WindowsMaxValues is the hard limit for the number of values per key
	// in Windows Registry.
	WindowsMaxValues = 16384

	// WindowsMaxSubkeysAbsolute is the absolute maximum number of subkeys
	// that can exist under a single key.
	WindowsMaxSubkeysAbsolute = 65535

	// WindowsMaxKeyNameLen is the hard limit for registry key names
	// in Windows (measured in characters, not bytes).
	WindowsMaxKeyNameLen = 255

	// WindowsMaxValueNameLen is the hard limit for registry value names
	// in Windows (measured in characters, not bytes).
	WindowsMaxValueNameLen = 16383

	// WindowsMaxTreeDepthPractical is the practical limit for registry
	// tree depth. Deeper trees only show up in corrupt hives with cycles.
	WindowsMaxTreeDepthPractical = 512

	// WindowsMaxValueSize10MB is a relaxed maximum for large binary data.
	WindowsMaxValueSize10MB = 10 << 20 // 10,485,760 bytes
)

// Limits bounds what a traversal is willing to read.
type Limits struct {
	// MaxTreeDepth is the deepest descendant level visited below an input key.
	MaxTreeDepth int

	// MaxValueSize is the largest value payload a backend will return.
	MaxValueSize int
}

// DefaultLimits returns the standard Windows registry limits.
func DefaultLimits() Limits {
	return Limits{
		MaxTreeDepth: WindowsMaxTreeDepthPractical,
		MaxValueSize: WindowsMaxValueSize10MB,
	}
}
