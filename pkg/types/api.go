package types

import (
	"fmt"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat        ErrKind = iota // malformed input (bad regf header, bad .reg syntax)
	ErrKindCorrupt                      // structural corruption (bad sizes/offsets/tags)
	ErrKindUnsupported                  // valid option we don't support (yet)
	ErrKindNotFound                     // missing key/value/path
	ErrKindWrongProvider                // path is addressed to a non-registry provider
	ErrKindEmptyResult                  // nothing collected, nothing to export
	ErrKindBackend                      // registry backend failed on a validated key
	ErrKindConfig                       // invalid configuration or flag combination
)

// String returns a short, stable name for the kind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindFormat:
		return "format"
	case ErrKindCorrupt:
		return "corrupt"
	case ErrKindUnsupported:
		return "unsupported"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindWrongProvider:
		return "wrong_provider"
	case ErrKindEmptyResult:
		return "empty_result"
	case ErrKindBackend:
		return "backend"
	case ErrKindConfig:
		return "config"
	default:
		return fmt.Sprintf("kind_%d", int(k))
	}
}

// MarshalText renders the kind by name.
func (k ErrKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Errorf builds a typed error of the given kind.
func Errorf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind ErrKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the ErrKind carried by err, if any.
func KindOf(err error) (ErrKind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}

// Sentinels commonly returned by implementations.
var (
	// ErrNotHive indicates the file lacks a valid "regf" header.
	ErrNotHive = &Error{Kind: ErrKindFormat, Msg: "not a registry hive (bad regf header)"}
	// ErrCorrupt indicates non-recoverable structural inconsistency.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt hive structure"}
	// ErrUnsupported indicates a recognized but unsupported feature/option.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported"}
	// ErrNotFound indicates a missing key/value/path.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrWrongProvider indicates a path that belongs to another provider (filesystem, env, ...).
	ErrWrongProvider = &Error{Kind: ErrKindWrongProvider, Msg: "not a registry path"}
	// ErrEmptyResult indicates that no records were collected.
	ErrEmptyResult = &Error{Kind: ErrKindEmptyResult, Msg: "nothing to export"}
	// ErrBackend indicates the registry backend failed while reading a validated key.
	ErrBackend = &Error{Kind: ErrKindBackend, Msg: "registry backend failure"}
	// ErrConfig indicates an invalid configuration.
	ErrConfig = &Error{Kind: ErrKindConfig, Msg: "invalid configuration"}
)

// -----------------------------------------------------------------------------
// Raw registry types
// -----------------------------------------------------------------------------

// RegType enumerates Windows registry value types as stored on disk and
// returned by the Win32 API. (The numbers align with Windows definitions.)
type RegType uint32

const (
	REG_NONE                       RegType = 0
	REG_SZ                         RegType = 1
	REG_EXPAND_SZ                  RegType = 2
	REG_BINARY                     RegType = 3
	REG_DWORD                      RegType = 4
	REG_DWORD_BE                   RegType = 5
	REG_LINK                       RegType = 6
	REG_MULTI_SZ                   RegType = 7
	REG_RESOURCE_LIST              RegType = 8
	REG_FULL_RESOURCE_DESCRIPTOR   RegType = 9
	REG_RESOURCE_REQUIREMENTS_LIST RegType = 10
	REG_QWORD                      RegType = 11
)

// String implements the Stringer interface for RegType
func (t RegType) String() string {
	switch t {
	case REG_NONE:
		return "REG_NONE"
	case REG_SZ:
		return "REG_SZ"
	case REG_EXPAND_SZ:
		return "REG_EXPAND_SZ"
	case REG_BINARY:
		return "REG_BINARY"
	case REG_DWORD:
		return "REG_DWORD"
	case REG_DWORD_BE:
		return "REG_DWORD_BE"
	case REG_LINK:
		return "REG_LINK"
	case REG_MULTI_SZ:
		return "REG_MULTI_SZ"
	case REG_RESOURCE_LIST:
		return "REG_RESOURCE_LIST"
	case REG_FULL_RESOURCE_DESCRIPTOR:
		return "REG_FULL_RESOURCE_DESCRIPTOR"
	case REG_RESOURCE_REQUIREMENTS_LIST:
		return "REG_RESOURCE_REQUIREMENTS_LIST"
	case REG_QWORD:
		return "REG_QWORD"
	default:
		// Signed, so 0xFFFFFFFF shows up as -1 like other registry tools print it
		return fmt.Sprintf("UNKNOWN_TYPE_%d", int32(t))
	}
}

// Kind maps the raw type onto the closed ValueKind set.
func (t RegType) Kind() ValueKind {
	switch t {
	case REG_NONE:
		return KindNone
	case REG_SZ:
		return KindString
	case REG_EXPAND_SZ:
		return KindExpandString
	case REG_BINARY:
		return KindBinary
	case REG_DWORD:
		return KindDWord
	case REG_MULTI_SZ:
		return KindMultiString
	case REG_QWORD:
		return KindQWord
	default:
		return KindUnknown
	}
}

// -----------------------------------------------------------------------------
// Value kinds (the record-level type tag)
// -----------------------------------------------------------------------------

// ValueKind is the closed set of value types a record can carry. The numeric
// values follow RegistryValueKind so exports line up with tooling that
// already speaks that enumeration.
type ValueKind int32

const (
	KindNone         ValueKind = -1
	KindUnknown      ValueKind = 0
	KindString       ValueKind = 1
	KindExpandString ValueKind = 2
	KindBinary       ValueKind = 3
	KindDWord        ValueKind = 4
	KindMultiString  ValueKind = 7
	KindQWord        ValueKind = 11
)

// String returns the display name used for TypeString.
func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindString:
		return "String"
	case KindExpandString:
		return "ExpandString"
	case KindBinary:
		return "Binary"
	case KindDWord:
		return "DWord"
	case KindMultiString:
		return "MultiString"
	case KindQWord:
		return "QWord"
	default:
		return "Unknown"
	}
}

// MarshalText renders the kind by name.
func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a display name back into a kind.
func (k *ValueKind) UnmarshalText(b []byte) error {
	kind, ok := ParseValueKind(string(b))
	if !ok {
		return Errorf(ErrKindFormat, "unknown value kind %q", string(b))
	}
	*k = kind
	return nil
}

// ParseValueKind resolves a display name (case-sensitive, as produced by String).
func ParseValueKind(s string) (ValueKind, bool) {
	for _, k := range []ValueKind{
		KindNone, KindUnknown, KindString, KindExpandString,
		KindBinary, KindDWord, KindMultiString, KindQWord,
	} {
		if k.String() == s {
			return k, true
		}
	}
	return KindUnknown, false
}

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

// DefaultValueName is the display name of a key's unnamed value slot.
const DefaultValueName = "(Default)"

// Record is one flattened row: a single value of a single key.
type Record struct {
	Path         string    // canonical key path, e.g. HKEY_CURRENT_USER\SOFTWARE\Test
	Name         string    // value name, or DefaultValueName
	Value        Value     // typed data; null for placeholders and unset defaults
	Type         ValueKind // closed value kind
	TypeString   string    // Type.String(), carried for text output
	Computername string    // host the traversal ran on
}

// PlaceholderRecord asserts the existence of a key that has neither values
// nor subkeys.
func PlaceholderRecord(path, computername string) Record {
	return Record{
		Path:         path,
		Name:         DefaultValueName,
		Value:        NullValue(),
		Type:         KindString,
		TypeString:   KindString.String(),
		Computername: computername,
	}
}

// IsPlaceholder reports whether r has the placeholder shape.
func (r Record) IsPlaceholder() bool {
	return r.Name == DefaultValueName && r.Value.IsNull() && r.Type == KindString
}

// -----------------------------------------------------------------------------
// Backend contract
// -----------------------------------------------------------------------------

// KeyInfo is what a backend reports when a key is opened.
type KeyInfo struct {
	ValueNames  []string // native enumeration order; "" is the default value
	SubkeyCount int
}

// Backend is a read-only view over some registry store (the live registry,
// an offline hive file, a parsed .reg file). Every call addresses the key by
// path; implementations must not hand out cached key handles.
type Backend interface {
	// KeyExists reports whether the key exists. Absence is (false, nil).
	KeyExists(path KeyPath) (bool, error)

	// Stat opens the key and lists its value names and subkey count.
	Stat(path KeyPath) (KeyInfo, error)

	// Subkeys lists the names of the direct children of the key.
	Subkeys(path KeyPath) ([]string, error)

	// GetValue returns the raw type and data of a value. name "" addresses
	// the default value.
	GetValue(path KeyPath, name string) (RegType, []byte, error)

	// Close releases backend resources.
	Close() error
}
