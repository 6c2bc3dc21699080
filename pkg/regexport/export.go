package regexport

import (
	"github.com/joshuapare/regexport/internal/serialize"
	"github.com/joshuapare/regexport/pkg/types"
)

// ExportToFile writes records to opts.Path in opts.Format, dropping Binary
// records first when opts.ExcludeBinary is set. An empty result is not
// written: the call returns ErrEmptyResult and the file is left untouched.
// It returns the number of records written.
func (e *Exporter) ExportToFile(records []types.Record, opts ExportOptions) (int, error) {
	if !opts.Format.Supported() {
		return 0, types.Errorf(types.ErrKindUnsupported, "export format %q is not implemented", opts.Format)
	}
	warned := e.emptyWarned
	e.emptyWarned = false

	if opts.ExcludeBinary {
		before := len(records)
		records = FilterBinary(records)
		if removed := before - len(records); removed > 0 {
			e.logger.Debug("binary records excluded", "count", removed)
			if e.opts.Observer != nil {
				e.opts.Observer.BinaryFiltered(removed)
			}
		}
	}

	if len(records) == 0 {
		if !warned {
			e.warn("", types.ErrKindEmptyResult, "nothing to export", nil)
		}
		return 0, types.ErrEmptyResult
	}

	if err := serialize.WriteFile(opts.Path, opts.Format, records); err != nil {
		return 0, err
	}
	e.logger.Info("export written", "path", opts.Path, "format", string(opts.Format), "records", len(records))
	return len(records), nil
}
