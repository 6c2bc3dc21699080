//go:build !windows

package winreg

import (
	"runtime"

	"github.com/joshuapare/regexport/pkg/types"
)

// Backend is unavailable off Windows.
type Backend struct{}

// Open reports that the live registry cannot be read on this platform.
func Open() (*Backend, error) {
	return nil, types.Errorf(types.ErrKindUnsupported,
		"live registry access requires windows (running on %s); use --source hive or --source reg", runtime.GOOS)
}

func (b *Backend) KeyExists(types.KeyPath) (bool, error) { return false, types.ErrUnsupported }

func (b *Backend) Stat(types.KeyPath) (types.KeyInfo, error) {
	return types.KeyInfo{}, types.ErrUnsupported
}

func (b *Backend) Subkeys(types.KeyPath) ([]string, error) { return nil, types.ErrUnsupported }

func (b *Backend) GetValue(types.KeyPath, string) (types.RegType, []byte, error) {
	return 0, nil, types.ErrUnsupported
}

func (b *Backend) Close() error { return nil }

var _ types.Backend = (*Backend)(nil)
