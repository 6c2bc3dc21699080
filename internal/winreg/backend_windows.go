//go:build windows

package winreg

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/sys/windows/registry"

	"github.com/joshuapare/regexport/pkg/types"
)

const access = registry.QUERY_VALUE | registry.ENUMERATE_SUB_KEYS

var rootKeys = map[types.Root]registry.Key{
	types.RootClassesRoot:     registry.CLASSES_ROOT,
	types.RootCurrentUser:     registry.CURRENT_USER,
	types.RootLocalMachine:    registry.LOCAL_MACHINE,
	types.RootUsers:           registry.USERS,
	types.RootCurrentConfig:   registry.CURRENT_CONFIG,
	types.RootPerformanceData: registry.PERFORMANCE_DATA,
}

// Backend reads the local registry.
type Backend struct{}

// Open returns the live registry backend.
func Open() (*Backend, error) {
	return &Backend{}, nil
}

func (b *Backend) open(path types.KeyPath) (registry.Key, error) {
	root, ok := rootKeys[path.Root]
	if !ok {
		return 0, types.Errorf(types.ErrKindNotFound, "unknown root in %s", path)
	}
	k, err := registry.OpenKey(root, path.Subpath(), access)
	if err != nil {
		return 0, classify(err, "open %s", path)
	}
	return k, nil
}

// classify maps a Win32 error onto the typed error kinds.
func classify(err error, format string, args ...any) error {
	if errors.Is(err, registry.ErrNotExist) {
		return types.Wrap(types.ErrKindNotFound, err, format, args...)
	}
	return types.Wrap(types.ErrKindBackend, err, format, args...)
}

// KeyExists implements types.Backend.
func (b *Backend) KeyExists(path types.KeyPath) (bool, error) {
	k, err := b.open(path)
	if errors.Is(err, types.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, k.Close()
}

// Stat implements types.Backend.
func (b *Backend) Stat(path types.KeyPath) (types.KeyInfo, error) {
	k, err := b.open(path)
	if err != nil {
		return types.KeyInfo{}, err
	}
	defer k.Close()

	info, err := k.Stat()
	if err != nil {
		return types.KeyInfo{}, classify(err, "stat %s", path)
	}
	names, err := k.ReadValueNames(0)
	if err != nil && !errors.Is(err, io.EOF) {
		return types.KeyInfo{}, classify(err, "list values of %s", path)
	}
	return types.KeyInfo{ValueNames: names, SubkeyCount: int(info.SubKeyCount)}, nil
}

// Subkeys implements types.Backend.
func (b *Backend) Subkeys(path types.KeyPath) ([]string, error) {
	k, err := b.open(path)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, classify(err, "list subkeys of %s", path)
	}
	return names, nil
}

// GetValue implements types.Backend. The first call sizes the buffer; the
// loop covers values that grow between the two reads.
func (b *Backend) GetValue(path types.KeyPath, name string) (types.RegType, []byte, error) {
	k, err := b.open(path)
	if err != nil {
		return 0, nil, err
	}
	defer k.Close()

	n, typ, err := k.GetValue(name, nil)
	if err != nil {
		return 0, nil, classify(err, "read value %q of %s", displayName(name), path)
	}
	for {
		buf := make([]byte, n)
		n, typ, err = k.GetValue(name, buf)
		if errors.Is(err, registry.ErrShortBuffer) {
			continue
		}
		if err != nil {
			return 0, nil, classify(err, "read value %q of %s", displayName(name), path)
		}
		return types.RegType(typ), buf[:n], nil
	}
}

// Close implements types.Backend.
func (b *Backend) Close() error { return nil }

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return types.DefaultValueName
	}
	return name
}

var _ types.Backend = (*Backend)(nil)
