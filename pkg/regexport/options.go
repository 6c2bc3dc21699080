package regexport

import (
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/regexport/internal/serialize"
	"github.com/joshuapare/regexport/pkg/types"
)

// PathResult is the outcome of one input path.
type PathResult string

const (
	PathOK      PathResult = "ok"      // traversed, records emitted
	PathSkipped PathResult = "skipped" // invalid path, warning recorded
	PathFailed  PathResult = "failed"  // backend failure, path aborted
)

// Observer receives per-path outcomes, e.g. for run metrics.
type Observer interface {
	PathDone(result PathResult, records int)
	BinaryFiltered(n int)
}

// Options configures an Exporter.
type Options struct {
	// Computername is stamped on every record. Empty selects
	// DefaultComputername().
	Computername string

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger

	// Limits bounds traversal depth and value size. The zero value selects
	// types.DefaultLimits().
	Limits types.Limits

	// Observer, when set, is told how each path ended.
	Observer Observer
}

// ExportOptions controls ExportToFile.
type ExportOptions struct {
	// Format selects the serializer.
	Format serialize.Format

	// Path is the output file; it is created or truncated.
	Path string

	// ExcludeBinary drops Binary records before writing.
	ExcludeBinary bool
}

// DefaultComputername returns the COMPUTERNAME environment variable, or
// the OS host name when it is unset.
func DefaultComputername() string {
	if name := os.Getenv("COMPUTERNAME"); name != "" {
		return name
	}
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "localhost"
}

func (o Options) withDefaults() Options {
	if o.Computername == "" {
		o.Computername = DefaultComputername()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Limits.MaxTreeDepth <= 0 {
		o.Limits.MaxTreeDepth = types.DefaultLimits().MaxTreeDepth
	}
	if o.Limits.MaxValueSize <= 0 {
		o.Limits.MaxValueSize = types.DefaultLimits().MaxValueSize
	}
	return o
}
