// Package hivefile reads offline registry hive files (the regf format used
// for SYSTEM, SOFTWARE, NTUSER.DAT and friends) and serves them as a
// types.Backend. The hive's root key is mounted at a registry path so the
// same paths work against a live system and a copied hive.
package hivefile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joshuapare/regexport/internal/mmfile"
	"github.com/joshuapare/regexport/pkg/types"
)

// Hive is a read-only view over hive bytes.
type Hive struct {
	data    []byte
	root    uint32
	mount   types.KeyPath
	release func() error
}

// Options configures Open and New.
type Options struct {
	// Mount is where the hive root appears in the registry namespace. The
	// zero value selects DefaultMount.
	Mount types.KeyPath
}

// DefaultMount places a hive under HKEY_LOCAL_MACHINE, named after the
// file with its extension removed: ./hives/SOFTWARE -> HKLM\SOFTWARE,
// NTUSER.DAT -> HKLM\NTUSER.
func DefaultMount(path string) types.KeyPath {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return types.NewKeyPath(types.RootLocalMachine, strings.ToUpper(base))
}

// Open maps the hive file at path.
func Open(path string, opts Options) (*Hive, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("hivefile: open %s: %w", path, err)
	}
	if !opts.Mount.Valid() {
		opts.Mount = DefaultMount(path)
	}
	h, err := New(data, opts)
	if err != nil {
		_ = release()
		return nil, fmt.Errorf("hivefile: %s: %w", path, err)
	}
	h.release = release
	return h, nil
}

// New wraps hive bytes already in memory. data must stay unmodified for the
// lifetime of the Hive.
func New(data []byte, opts Options) (*Hive, error) {
	if len(data) < HeaderSize+hbinHeaderSize || !bytes.Equal(data[:4], regfSignature) {
		return nil, types.ErrNotHive
	}
	if !bytes.Equal(data[HeaderSize:HeaderSize+4], hbinSignature) {
		return nil, corruptf("first hive bin signature missing")
	}
	if size := binary.LittleEndian.Uint32(data[regfDataSizeOffset:]); int64(size)+HeaderSize < int64(len(data)) {
		// Trailing bytes past the declared data size are ignored.
		data = data[:HeaderSize+int(size)]
	}
	if !opts.Mount.Valid() {
		return nil, types.Errorf(types.ErrKindConfig, "hivefile: mount path required")
	}

	h := &Hive{
		data:  data,
		root:  binary.LittleEndian.Uint32(data[regfRootCellOffset:]),
		mount: opts.Mount,
	}
	if _, err := h.readNK(h.root); err != nil {
		return nil, fmt.Errorf("root key: %w", err)
	}
	return h, nil
}

// Mount returns the registry path the hive root is mounted at.
func (h *Hive) Mount() types.KeyPath { return h.mount }

// find walks from the hive root to path. Paths outside the mount point
// are reported as not found.
func (h *Hive) find(path types.KeyPath) (nk, bool, error) {
	rest, ok := h.mount.Rel(path)
	if !ok {
		return nk{}, false, nil
	}
	cur, err := h.readNK(h.root)
	if err != nil {
		return nk{}, false, err
	}
	for _, name := range rest {
		next, found, err := h.child(cur, name)
		if err != nil || !found {
			return nk{}, false, err
		}
		cur = next
	}
	return cur, true, nil
}

func (h *Hive) child(parent nk, name string) (nk, bool, error) {
	children, err := h.children(parent)
	if err != nil {
		return nk{}, false, err
	}
	for _, c := range children {
		if strings.EqualFold(c.name, name) {
			return c, true, nil
		}
	}
	return nk{}, false, nil
}

func (h *Hive) children(parent nk) ([]nk, error) {
	if parent.subkeyCount == 0 || parent.subkeyList == invalidOffset {
		return nil, nil
	}
	offs, err := h.subkeyOffsets(parent.subkeyList, 0)
	if err != nil {
		return nil, err
	}
	out := make([]nk, 0, len(offs))
	for _, off := range offs {
		k, err := h.readNK(off)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func (h *Hive) lookup(path types.KeyPath) (nk, error) {
	k, ok, err := h.find(path)
	if err != nil {
		return nk{}, types.Wrap(types.ErrKindBackend, err, "hivefile: read %s", path)
	}
	if !ok {
		return nk{}, types.Errorf(types.ErrKindNotFound, "key %s not found", path)
	}
	return k, nil
}

// KeyExists implements types.Backend.
func (h *Hive) KeyExists(path types.KeyPath) (bool, error) {
	_, ok, err := h.find(path)
	if err != nil {
		return false, types.Wrap(types.ErrKindBackend, err, "hivefile: probe %s", path)
	}
	return ok, nil
}

// Stat implements types.Backend.
func (h *Hive) Stat(path types.KeyPath) (types.KeyInfo, error) {
	k, err := h.lookup(path)
	if err != nil {
		return types.KeyInfo{}, err
	}
	offs, err := h.valueOffsets(k)
	if err != nil {
		return types.KeyInfo{}, types.Wrap(types.ErrKindBackend, err, "hivefile: values of %s", path)
	}
	names := make([]string, 0, len(offs))
	for _, off := range offs {
		v, err := h.readVK(off)
		if err != nil {
			return types.KeyInfo{}, types.Wrap(types.ErrKindBackend, err, "hivefile: values of %s", path)
		}
		names = append(names, v.name)
	}
	return types.KeyInfo{ValueNames: names, SubkeyCount: int(k.subkeyCount)}, nil
}

// Subkeys implements types.Backend. Names come back in hive order, which
// for lf/lh lists is sorted by uppercase name.
func (h *Hive) Subkeys(path types.KeyPath) ([]string, error) {
	k, err := h.lookup(path)
	if err != nil {
		return nil, err
	}
	children, err := h.children(k)
	if err != nil {
		return nil, types.Wrap(types.ErrKindBackend, err, "hivefile: subkeys of %s", path)
	}
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.name
	}
	return names, nil
}

// GetValue implements types.Backend.
func (h *Hive) GetValue(path types.KeyPath, name string) (types.RegType, []byte, error) {
	k, err := h.lookup(path)
	if err != nil {
		return 0, nil, err
	}
	offs, err := h.valueOffsets(k)
	if err != nil {
		return 0, nil, types.Wrap(types.ErrKindBackend, err, "hivefile: values of %s", path)
	}
	for _, off := range offs {
		v, err := h.readVK(off)
		if err != nil {
			return 0, nil, types.Wrap(types.ErrKindBackend, err, "hivefile: values of %s", path)
		}
		if !strings.EqualFold(v.name, name) {
			continue
		}
		data, err := h.valueData(v)
		if err != nil {
			return 0, nil, types.Wrap(types.ErrKindBackend, err, "hivefile: value %q of %s", name, path)
		}
		return v.typ, data, nil
	}
	return 0, nil, types.Errorf(types.ErrKindNotFound, "value %q not found under %s", name, path)
}

// Close releases the file mapping.
func (h *Hive) Close() error {
	if h.release == nil {
		return nil
	}
	release := h.release
	h.release = nil
	return release()
}

var _ types.Backend = (*Hive)(nil)
