package regexport

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/joshuapare/regexport/pkg/types"
)

// Exporter traverses registry keys through a Backend and flattens them
// into records. It is not safe for concurrent use.
type Exporter struct {
	backend   types.Backend
	validator *Validator
	opts      Options
	logger    *slog.Logger
	report    *types.DiagnosticReport

	// emptyWarned is set when the last Export already warned about an
	// empty result, so the ExportToFile that follows does not repeat it.
	emptyWarned bool
}

// New returns an Exporter reading through backend.
func New(backend types.Backend, opts Options) *Exporter {
	opts = opts.withDefaults()
	return &Exporter{
		backend:   backend,
		validator: NewValidator(backend, opts.Logger),
		opts:      opts,
		logger:    opts.Logger,
		report:    types.NewDiagnosticReport(),
	}
}

// Computername is the host name stamped on records.
func (e *Exporter) Computername() string { return e.opts.Computername }

// Diagnostics returns everything recorded by Export and ExportToFile since
// the Exporter was created.
func (e *Exporter) Diagnostics() *types.DiagnosticReport { return e.report }

// Export flattens every path in input order. Invalid paths are skipped with
// a warning. A backend failure aborts only the path it happened in; those
// failures are joined into the returned error, and the records of every
// other path are returned alongside it.
func (e *Exporter) Export(paths []string, recurse bool) ([]types.Record, error) {
	var (
		out  []types.Record
		errs []error
	)
	e.emptyWarned = false
	for _, raw := range paths {
		key, err := e.validator.Resolve(raw)
		if err != nil {
			e.skip(raw, err)
			continue
		}

		records, err := e.exportKey(key, recurse)
		if err != nil {
			e.fail(key, err)
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		e.observe(PathOK, len(records))
		e.logger.Debug("exported key", "path", key.String(), "records", len(records), "recurse", recurse)
		out = append(out, records...)
	}

	if len(out) == 0 {
		e.warn("", types.ErrKindEmptyResult, "nothing to export", nil)
		e.emptyWarned = true
	}
	return out, errors.Join(errs...)
}

// exportKey applies the record rules to one validated input key.
func (e *Exporter) exportKey(key types.KeyPath, recurse bool) ([]types.Record, error) {
	info, err := e.backend.Stat(key)
	if err != nil {
		return nil, err
	}
	if len(info.ValueNames) == 0 && info.SubkeyCount == 0 {
		return []types.Record{types.PlaceholderRecord(key.String(), e.opts.Computername)}, nil
	}

	out, err := e.appendValues(nil, key, info.ValueNames)
	if err != nil {
		return nil, err
	}
	if recurse && info.SubkeyCount > 0 {
		return e.descend(out, key, 1)
	}
	return out, nil
}

// descend appends the values of every key below parent, depth-first,
// visiting siblings in case-insensitive name order. Keys without values
// contribute nothing.
func (e *Exporter) descend(out []types.Record, parent types.KeyPath, depth int) ([]types.Record, error) {
	if depth > e.opts.Limits.MaxTreeDepth {
		return nil, types.Errorf(types.ErrKindCorrupt, "tree deeper than %d levels below input key", e.opts.Limits.MaxTreeDepth)
	}
	names, err := e.backend.Subkeys(parent)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	for _, name := range names {
		child := parent.Child(name)
		info, err := e.backend.Stat(child)
		if err != nil {
			return nil, err
		}
		if out, err = e.appendValues(out, child, info.ValueNames); err != nil {
			return nil, err
		}
		if info.SubkeyCount > 0 {
			if out, err = e.descend(out, child, depth+1); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// appendValues resolves each value by path and name. The default value
// goes through the same lookup as named values and is only relabeled.
func (e *Exporter) appendValues(out []types.Record, key types.KeyPath, names []string) ([]types.Record, error) {
	path := key.String()
	for _, name := range names {
		typ, data, err := e.backend.GetValue(key, name)
		if err != nil {
			return nil, err
		}
		if len(data) > e.opts.Limits.MaxValueSize {
			return nil, types.Errorf(types.ErrKindCorrupt, "value %q is %d bytes, limit %d", name, len(data), e.opts.Limits.MaxValueSize)
		}
		kind, value, err := types.DecodeValue(typ, data)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", name, err)
		}

		display := name
		if name == "" {
			display = types.DefaultValueName
		}
		out = append(out, types.Record{
			Path:         path,
			Name:         display,
			Value:        value,
			Type:         kind,
			TypeString:   kind.String(),
			Computername: e.opts.Computername,
		})
	}
	return out, nil
}

func (e *Exporter) skip(raw string, err error) {
	kind, ok := types.KindOf(err)
	if !ok {
		kind = types.ErrKindNotFound
	}
	msg := "key not found"
	if kind == types.ErrKindWrongProvider {
		msg = "not a registry path"
	}
	e.warn(raw, kind, msg, err)
	e.observe(PathSkipped, 0)
}

func (e *Exporter) fail(key types.KeyPath, err error) {
	kind, ok := types.KindOf(err)
	if !ok {
		kind = types.ErrKindBackend
	}
	e.report.Add(types.Diagnostic{
		Severity: types.SevError,
		Kind:     kind,
		Path:     key.String(),
		Message:  "reading key failed, path aborted",
		Err:      err,
	})
	e.logger.Error("reading key failed, path aborted", "path", key.String(), "kind", kind.String(), "error", err)
	e.observe(PathFailed, 0)
}

func (e *Exporter) warn(path string, kind types.ErrKind, msg string, err error) {
	e.report.Add(types.Diagnostic{
		Severity: types.SevWarning,
		Kind:     kind,
		Path:     path,
		Message:  msg,
		Err:      err,
	})
	attrs := []any{"kind", kind.String()}
	if path != "" {
		attrs = append(attrs, "path", path)
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	e.logger.Warn(msg, attrs...)
}

func (e *Exporter) observe(result PathResult, records int) {
	if e.opts.Observer != nil {
		e.opts.Observer.PathDone(result, records)
	}
}
