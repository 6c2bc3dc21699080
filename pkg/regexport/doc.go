// Package regexport enumerates registry keys and flattens them into
// types.Record rows.
//
// The flow for a batch of paths:
//
//	v := regexport.NewValidator(backend, logger)
//	v.IsValidKey(`HKCU:\SOFTWARE\Test`) // existence probe, never an error
//
//	e := regexport.New(backend, regexport.Options{Logger: logger})
//	records, err := e.Export([]string{`HKCU:\SOFTWARE\Test`}, true)
//	// err is non-nil only when a validated key failed mid-read; records
//	// from every other path are still returned.
//
//	n, err := e.ExportToFile(records, regexport.ExportOptions{
//		Format:        serialize.CSV,
//		Path:          "out.csv",
//		ExcludeBinary: true,
//	})
//
// Record rules:
//   - A key with values emits one record per value; the unnamed default
//     value is labeled "(Default)".
//   - An input key with no values and no subkeys emits one placeholder
//     record (Name "(Default)", null Value, Type String).
//   - With recurse, descendants emit their own values depth-first, children
//     visited in case-insensitive name order. Empty descendants emit nothing;
//     only input keys get placeholders.
//   - Paths that do not resolve to a registry key are skipped with a warning.
//   - A backend failure on a validated key aborts that path only; its partial
//     records are dropped.
package regexport
