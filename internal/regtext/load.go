package regtext

import (
	"fmt"
	"os"

	"github.com/joshuapare/regexport/internal/memreg"
)

// Apply replays ops against tree in file order.
func Apply(tree *memreg.Tree, ops []Op) error {
	for _, op := range ops {
		var err error
		switch op.Kind {
		case OpCreateKey:
			err = tree.CreateKey(op.Path)
		case OpDeleteKey:
			err = tree.DeleteKey(op.Path)
		case OpSetValue:
			err = tree.SetValue(op.Path, op.Name, op.Type, op.Data)
		case OpDeleteValue:
			err = tree.DeleteValue(op.Path, op.Name)
		}
		if err != nil {
			return fmt.Errorf("regtext: apply %s: %w", op.Path, err)
		}
	}
	return nil
}

// Load parses data and returns the tree it describes.
func Load(data []byte, opts Options) (*memreg.Tree, error) {
	ops, err := Parse(data, opts)
	if err != nil {
		return nil, err
	}
	tree := memreg.New()
	if err := Apply(tree, ops); err != nil {
		return nil, err
	}
	return tree, nil
}

// LoadFile reads and loads a .reg file from disk.
func LoadFile(path string, opts Options) (*memreg.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("regtext: read %s: %w", path, err)
	}
	return Load(data, opts)
}
