package regexport

import (
	"io"
	"log/slog"

	"github.com/joshuapare/regexport/internal/regpath"
	"github.com/joshuapare/regexport/pkg/types"
)

// Validator answers whether a path string names an existing registry key.
type Validator struct {
	backend types.Backend
	logger  *slog.Logger
}

// NewValidator returns a Validator over backend. A nil logger discards.
func NewValidator(backend types.Backend, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Validator{backend: backend, logger: logger}
}

// IsValidKey reports whether path parses as a registry path and the key
// exists. Absence, another provider's path, and probe failures are all
// false, never an error.
func (v *Validator) IsValidKey(path string) bool {
	_, err := v.Resolve(path)
	return err == nil
}

// Resolve parses path and checks the key exists, returning the normalized
// key. Errors carry ErrKindNotFound or ErrKindWrongProvider so callers can
// tell the two apart.
func (v *Validator) Resolve(path string) (types.KeyPath, error) {
	key, err := regpath.Parse(path)
	if err != nil {
		return types.KeyPath{}, err
	}
	ok, err := v.backend.KeyExists(key)
	if err != nil {
		v.logger.Debug("existence probe failed", "path", key.Qualified(), "error", err)
		return types.KeyPath{}, types.Wrap(types.ErrKindNotFound, err, "key %s is not accessible", key)
	}
	if !ok {
		return types.KeyPath{}, types.Errorf(types.ErrKindNotFound, "key %s does not exist", key)
	}
	return key, nil
}
