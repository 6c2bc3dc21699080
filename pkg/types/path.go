package types

import (
	"strings"
)

// ProviderPrefix qualifies a path as belonging to the registry provider.
const ProviderPrefix = "Registry::"

// Root identifies one of the predefined registry root keys.
type Root uint8

const (
	RootUnknown Root = iota
	RootClassesRoot
	RootCurrentUser
	RootLocalMachine
	RootUsers
	RootCurrentConfig
	RootPerformanceData
)

var rootNames = map[Root][2]string{
	RootClassesRoot:     {"HKEY_CLASSES_ROOT", "HKCR"},
	RootCurrentUser:     {"HKEY_CURRENT_USER", "HKCU"},
	RootLocalMachine:    {"HKEY_LOCAL_MACHINE", "HKLM"},
	RootUsers:           {"HKEY_USERS", "HKU"},
	RootCurrentConfig:   {"HKEY_CURRENT_CONFIG", "HKCC"},
	RootPerformanceData: {"HKEY_PERFORMANCE_DATA", "HKPD"},
}

// String returns the long root name (HKEY_LOCAL_MACHINE).
func (r Root) String() string {
	if n, ok := rootNames[r]; ok {
		return n[0]
	}
	return "UNKNOWN_ROOT"
}

// Short returns the abbreviated root name (HKLM).
func (r Root) Short() string {
	if n, ok := rootNames[r]; ok {
		return n[1]
	}
	return "UNKNOWN_ROOT"
}

// LookupRoot resolves a long or short root name, case-insensitively.
func LookupRoot(name string) (Root, bool) {
	for r, n := range rootNames {
		if strings.EqualFold(name, n[0]) || strings.EqualFold(name, n[1]) {
			return r, true
		}
	}
	return RootUnknown, false
}

// KeyPath is a parsed registry key location: a root plus the subkey names
// beneath it. The zero value is not a valid path.
type KeyPath struct {
	Root     Root
	Elements []string
}

// NewKeyPath builds a path from a root and subkey names.
func NewKeyPath(root Root, elements ...string) KeyPath {
	return KeyPath{Root: root, Elements: append([]string(nil), elements...)}
}

// String renders the canonical form, e.g. HKEY_CURRENT_USER\SOFTWARE\Test.
func (p KeyPath) String() string {
	if len(p.Elements) == 0 {
		return p.Root.String()
	}
	return p.Root.String() + `\` + p.Subpath()
}

// Qualified renders the provider-qualified form (Registry::HKEY_...).
func (p KeyPath) Qualified() string {
	return ProviderPrefix + p.String()
}

// Subpath joins the elements below the root.
func (p KeyPath) Subpath() string {
	return strings.Join(p.Elements, `\`)
}

// IsRoot reports whether p addresses a root key itself.
func (p KeyPath) IsRoot() bool { return len(p.Elements) == 0 }

// Valid reports whether p names a known root.
func (p KeyPath) Valid() bool {
	_, ok := rootNames[p.Root]
	return ok
}

// Child returns a new path one level below p. p is not modified.
func (p KeyPath) Child(name string) KeyPath {
	elems := make([]string, len(p.Elements), len(p.Elements)+1)
	copy(elems, p.Elements)
	return KeyPath{Root: p.Root, Elements: append(elems, name)}
}

// Rel reports whether q is p or lies beneath p, returning the remaining
// elements of q below p. Comparison is case-insensitive like the registry.
func (p KeyPath) Rel(q KeyPath) ([]string, bool) {
	if p.Root != q.Root || len(q.Elements) < len(p.Elements) {
		return nil, false
	}
	for i, e := range p.Elements {
		if !strings.EqualFold(e, q.Elements[i]) {
			return nil, false
		}
	}
	return q.Elements[len(p.Elements):], true
}

// Equal compares two paths case-insensitively.
func (p KeyPath) Equal(q KeyPath) bool {
	rest, ok := p.Rel(q)
	return ok && len(rest) == 0
}
