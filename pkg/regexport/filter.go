package regexport

import "github.com/joshuapare/regexport/pkg/types"

// FilterBinary returns records without the Binary ones, preserving order.
// The input slice is not modified.
func FilterBinary(records []types.Record) []types.Record {
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		if r.Type == types.KindBinary {
			continue
		}
		out = append(out, r)
	}
	return out
}
