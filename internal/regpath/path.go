// Package regpath turns the many spellings of a registry location into a
// types.KeyPath. It accepts provider-qualified paths (Registry::HKEY_...),
// registry drives (HKCU:\...), and bare roots (HKLM\...), and rejects paths
// addressed to other providers such as the filesystem.
package regpath

import (
	"strings"

	"github.com/joshuapare/regexport/pkg/types"
)

const (
	providerSep   = "::"
	providerName  = "Registry"
	moduleQualPfx = `Microsoft.PowerShell.Core\`
)

// Parse normalizes s into a KeyPath. Paths without a provider qualifier are
// treated as registry paths (the provider prefix is implied). Errors are
// typed: ErrKindWrongProvider for another provider's path, ErrKindNotFound
// for a registry path whose root is unknown.
func Parse(s string) (types.KeyPath, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return types.KeyPath{}, types.Errorf(types.ErrKindNotFound, "empty registry path")
	}

	if len(s) > len(moduleQualPfx) && strings.EqualFold(s[:len(moduleQualPfx)], moduleQualPfx) {
		s = s[len(moduleQualPfx):]
	}

	if provider, rest, ok := strings.Cut(s, providerSep); ok {
		if !strings.EqualFold(provider, providerName) {
			return types.KeyPath{}, types.Errorf(types.ErrKindWrongProvider,
				"path %q belongs to provider %q", raw, provider)
		}
		s = rest
	}

	segments := split(s)
	if len(segments) == 0 {
		return types.KeyPath{}, types.Errorf(types.ErrKindNotFound, "path %q names no registry root", raw)
	}

	head := segments[0]
	var root types.Root
	if drive, after, ok := strings.Cut(head, ":"); ok {
		// HKCU:, HKLM: ... are registry drives; C:, Env:, Cert: are not.
		r, known := types.LookupRoot(drive)
		if !known {
			return types.KeyPath{}, types.Errorf(types.ErrKindWrongProvider,
				"drive %q in %q is not a registry drive", drive+":", raw)
		}
		root = r
		segments = segments[1:]
		if after != "" {
			segments = append([]string{after}, segments...)
		}
	} else {
		r, known := types.LookupRoot(head)
		if !known {
			return types.KeyPath{}, types.Errorf(types.ErrKindNotFound, "unknown registry root %q in %q", head, raw)
		}
		root = r
		segments = segments[1:]
	}

	return build(root, segments, raw)
}

// ParseLiteral parses a full key name the way regedit writes it in a .reg
// section header: a root name followed by backslash-separated key names.
// Forward slashes are part of a key name there (HKCR MIME types such as
// "application/json"), and no provider qualifier or drive is recognized.
func ParseLiteral(s string) (types.KeyPath, error) {
	raw := s
	var segments []string
	for _, p := range strings.Split(s, `\`) {
		if p != "" {
			segments = append(segments, p)
		}
	}
	if len(segments) == 0 {
		return types.KeyPath{}, types.Errorf(types.ErrKindNotFound, "empty registry path")
	}
	root, known := types.LookupRoot(segments[0])
	if !known {
		return types.KeyPath{}, types.Errorf(types.ErrKindNotFound, "unknown registry root %q in %q", segments[0], raw)
	}
	return build(root, segments[1:], raw)
}

func build(root types.Root, segments []string, raw string) (types.KeyPath, error) {
	for _, seg := range segments {
		if len([]rune(seg)) > types.WindowsMaxKeyNameLen {
			return types.KeyPath{}, types.Errorf(types.ErrKindNotFound,
				"key name exceeds %d characters in %q", types.WindowsMaxKeyNameLen, raw)
		}
	}
	return types.NewKeyPath(root, segments...), nil
}

// MustParse is Parse for literals in tests and defaults; it panics on error.
func MustParse(s string) types.KeyPath {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// split breaks a path at backslashes or forward slashes and drops empty
// segments, so "HKLM\\Software\\" and "HKLM/Software" are the same key.
func split(s string) []string {
	s = strings.ReplaceAll(s, "/", `\`)
	parts := strings.Split(s, `\`)
	out := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
