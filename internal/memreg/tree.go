// Package memreg is an in-memory registry store. It backs .reg file input
// and test fixtures, and implements types.Backend with the same semantics as
// the live and hive-file backends: case-insensitive key names, values kept
// in insertion order, and the empty name addressing the default value.
package memreg

import (
	"strings"
	"unicode/utf8"

	"github.com/joshuapare/regexport/pkg/types"
)

type value struct {
	name string
	typ  types.RegType
	data []byte
}

type node struct {
	name     string
	values   []*value
	byName   map[string]*value // keyed by lowercase value name
	children map[string]*node  // keyed by lowercase name
	order    []string          // lowercase names in creation order
}

func newNode(name string) *node {
	return &node{name: name, byName: make(map[string]*value), children: make(map[string]*node)}
}

// Tree is a mutable registry tree. It is not safe for concurrent mutation;
// reads after construction are safe.
type Tree struct {
	roots map[types.Root]*node

	// failures lets tests inject backend errors for specific keys.
	failures map[string]error
}

// New returns an empty tree. The predefined roots always exist.
func New() *Tree {
	t := &Tree{
		roots:    make(map[types.Root]*node),
		failures: make(map[string]error),
	}
	for _, r := range []types.Root{
		types.RootClassesRoot, types.RootCurrentUser, types.RootLocalMachine,
		types.RootUsers, types.RootCurrentConfig,
	} {
		t.roots[r] = newNode(r.String())
	}
	return t
}

// CreateKey creates the key and any missing parents. Existing keys keep
// their original spelling.
func (t *Tree) CreateKey(path types.KeyPath) error {
	_, err := t.ensure(path)
	return err
}

// SetValue creates or replaces a value, creating the key if needed. The
// value keeps its original position when replaced. Names and value counts
// beyond the Windows limits are rejected with ErrKindFormat.
func (t *Tree) SetValue(path types.KeyPath, name string, typ types.RegType, data []byte) error {
	if n := utf8.RuneCountInString(name); n > types.WindowsMaxValueNameLen {
		return types.Errorf(types.ErrKindFormat, "value name under %s is %d characters, limit %d",
			path, n, types.WindowsMaxValueNameLen)
	}
	n, err := t.ensure(path)
	if err != nil {
		return err
	}
	lower := strings.ToLower(name)
	if v, ok := n.byName[lower]; ok {
		v.typ = typ
		v.data = append([]byte(nil), data...)
		return nil
	}
	if len(n.values) >= types.WindowsMaxValues {
		return types.Errorf(types.ErrKindFormat, "key %s already holds %d values", path, types.WindowsMaxValues)
	}
	v := &value{name: name, typ: typ, data: append([]byte(nil), data...)}
	n.values = append(n.values, v)
	n.byName[lower] = v
	return nil
}

// DeleteKey removes a key and its subtree. Deleting a missing key is a no-op.
func (t *Tree) DeleteKey(path types.KeyPath) error {
	if path.IsRoot() {
		return types.Errorf(types.ErrKindUnsupported, "cannot delete root key %s", path)
	}
	parent, ok := t.find(types.KeyPath{Root: path.Root, Elements: path.Elements[:len(path.Elements)-1]})
	if !ok {
		return nil
	}
	lower := strings.ToLower(path.Elements[len(path.Elements)-1])
	if _, exists := parent.children[lower]; !exists {
		return nil
	}
	delete(parent.children, lower)
	for i, n := range parent.order {
		if n == lower {
			parent.order = append(parent.order[:i], parent.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteValue removes a value. Deleting a missing value is a no-op.
func (t *Tree) DeleteValue(path types.KeyPath, name string) error {
	n, ok := t.find(path)
	if !ok {
		return nil
	}
	lower := strings.ToLower(name)
	if _, exists := n.byName[lower]; !exists {
		return nil
	}
	delete(n.byName, lower)
	for i, v := range n.values {
		if strings.ToLower(v.name) == lower {
			n.values = append(n.values[:i], n.values[i+1:]...)
			break
		}
	}
	return nil
}

// FailOn makes every backend read of path return err. Used to exercise the
// backend-failure path of traversal.
func (t *Tree) FailOn(path types.KeyPath, err error) {
	t.failures[strings.ToLower(path.String())] = err
}

func (t *Tree) ensure(path types.KeyPath) (*node, error) {
	n, ok := t.roots[path.Root]
	if !ok {
		return nil, types.Errorf(types.ErrKindNotFound, "unknown root in %s", path)
	}
	for _, elem := range path.Elements {
		lower := strings.ToLower(elem)
		child, exists := n.children[lower]
		if !exists {
			if len(n.order) >= types.WindowsMaxSubkeysAbsolute {
				return nil, types.Errorf(types.ErrKindFormat, "key %s already holds %d subkeys", path, types.WindowsMaxSubkeysAbsolute)
			}
			child = newNode(elem)
			n.children[lower] = child
			n.order = append(n.order, lower)
		}
		n = child
	}
	return n, nil
}

func (t *Tree) find(path types.KeyPath) (*node, bool) {
	n, ok := t.roots[path.Root]
	if !ok {
		return nil, false
	}
	for _, elem := range path.Elements {
		n, ok = n.children[strings.ToLower(elem)]
		if !ok {
			return nil, false
		}
	}
	return n, true
}

// lookup resolves path for a backend read, honoring injected failures.
func (t *Tree) lookup(path types.KeyPath) (*node, error) {
	if err, ok := t.failures[strings.ToLower(path.String())]; ok {
		return nil, types.Wrap(types.ErrKindBackend, err, "read %s", path)
	}
	n, ok := t.find(path)
	if !ok {
		return nil, types.Errorf(types.ErrKindNotFound, "key %s not found", path)
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// types.Backend
// -----------------------------------------------------------------------------

// KeyExists implements types.Backend.
func (t *Tree) KeyExists(path types.KeyPath) (bool, error) {
	_, ok := t.find(path)
	return ok, nil
}

// Stat implements types.Backend.
func (t *Tree) Stat(path types.KeyPath) (types.KeyInfo, error) {
	n, err := t.lookup(path)
	if err != nil {
		return types.KeyInfo{}, err
	}
	names := make([]string, len(n.values))
	for i, v := range n.values {
		names[i] = v.name
	}
	return types.KeyInfo{ValueNames: names, SubkeyCount: len(n.children)}, nil
}

// Subkeys implements types.Backend. Names come back in creation order.
func (t *Tree) Subkeys(path types.KeyPath) ([]string, error) {
	n, err := t.lookup(path)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(n.order))
	for _, lower := range n.order {
		out = append(out, n.children[lower].name)
	}
	return out, nil
}

// GetValue implements types.Backend.
func (t *Tree) GetValue(path types.KeyPath, name string) (types.RegType, []byte, error) {
	n, err := t.lookup(path)
	if err != nil {
		return 0, nil, err
	}
	if v, ok := n.byName[strings.ToLower(name)]; ok {
		return v.typ, append([]byte(nil), v.data...), nil
	}
	return 0, nil, types.Errorf(types.ErrKindNotFound, "value %q not found under %s", name, path)
}

// Close implements types.Backend.
func (t *Tree) Close() error { return nil }

var _ types.Backend = (*Tree)(nil)
