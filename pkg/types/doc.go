// Package types defines the shared vocabulary of regexport: the flattened
// Record, the closed ValueKind set and its typed Value union, parsed key
// paths, the read-only Backend contract implemented by every registry store,
// typed errors, and the diagnostics collected during a batch.
//
// Design goals:
//   - One record shape for every store (live registry, hive file, .reg file).
//   - Closed enumerations instead of loosely typed maps.
//   - Typed errors with stable categories (not_found/wrong_provider/backend/...).
//   - Paths are addressed by value; no backend hands out cached key handles.
package types
