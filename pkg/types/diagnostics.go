package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Diagnostics
// -----------------------------------------------------------------------------
//
// Traversal never aborts a batch because one path is bad. Instead, every
// skipped or failed path is recorded here so callers (and the CLI exit code)
// can tell a clean run from a partial one.

// Severity classifies how serious a diagnostic issue is
type Severity int

const (
	SevWarning Severity = iota // path skipped or nothing exported; batch continues
	SevError                   // backend failure on a validated key; path aborted
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	default:
		return fmt.Sprintf("severity_%d", int(s))
	}
}

// MarshalText renders the severity by name.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Diagnostic is a single issue recorded while processing a batch.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Kind     ErrKind  `json:"kind"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
	Err      error    `json:"-"`
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s", d.Severity, d.Message)
	if d.Path != "" {
		s += " (" + d.Path + ")"
	}
	if d.Err != nil {
		s += ": " + d.Err.Error()
	}
	return s
}

// DiagSummary provides quick statistics
type DiagSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// DiagnosticReport collects the diagnostics of an Exporter's calls.
type DiagnosticReport struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
	Summary     DiagSummary  `json:"summary"`
}

// NewDiagnosticReport creates an empty report
func NewDiagnosticReport() *DiagnosticReport {
	return &DiagnosticReport{}
}

// Add adds a diagnostic to the report and updates the summary
func (r *DiagnosticReport) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	switch d.Severity {
	case SevError:
		r.Summary.Errors++
	case SevWarning:
		r.Summary.Warnings++
	}
}

// HasErrors returns true if any error-level diagnostics were recorded
func (r *DiagnosticReport) HasErrors() bool {
	return r != nil && r.Summary.Errors > 0
}

// HasAnyIssues returns true if anything at all was recorded
func (r *DiagnosticReport) HasAnyIssues() bool {
	return r != nil && len(r.Diagnostics) > 0
}

// ByKind returns the diagnostics of one kind, in insertion order.
func (r *DiagnosticReport) ByKind(kind ErrKind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// FormatJSON returns the report as formatted JSON (2-space indentation)
func (r *DiagnosticReport) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatText returns one line per diagnostic followed by a summary line.
func (r *DiagnosticReport) FormatText() string {
	var b strings.Builder
	for _, d := range r.Diagnostics {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d error(s), %d warning(s)\n", r.Summary.Errors, r.Summary.Warnings)
	return b.String()
}
