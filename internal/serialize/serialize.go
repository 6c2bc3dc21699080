// Package serialize writes flattened records to CSV, XML, JSON or YAML.
package serialize

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joshuapare/regexport/pkg/types"
)

// Format names an output format.
type Format string

const (
	CSV  Format = "csv"
	XML  Format = "xml"
	JSON Format = "json"
	YAML Format = "yaml"

	// Reg is accepted as an option so configuration can name it, but
	// nothing writes it: Write returns types.ErrUnsupported.
	Reg Format = "reg"
)

// Formats lists every format name ParseFormat accepts.
var Formats = []Format{CSV, XML, JSON, YAML, Reg}

// ParseFormat resolves a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", types.Errorf(types.ErrKindConfig, "unknown export format %q (want one of csv, xml, json, yaml, reg)", s)
}

// Supported reports whether Write can produce f.
func (f Format) Supported() bool {
	switch f {
	case CSV, XML, JSON, YAML:
		return true
	default:
		return false
	}
}

// Write serializes records to w.
func Write(w io.Writer, f Format, records []types.Record) error {
	switch f {
	case CSV:
		return writeCSV(w, records)
	case XML:
		return writeXML(w, records)
	case JSON:
		return writeJSON(w, records)
	case YAML:
		return writeYAML(w, records)
	case Reg:
		return types.Wrap(types.ErrKindUnsupported, types.ErrUnsupported, "export format %q is not implemented", f)
	default:
		return types.Errorf(types.ErrKindConfig, "unknown export format %q", f)
	}
}

// WriteFile creates or truncates path and writes records to it. Nothing is
// created for a format Write cannot produce.
func WriteFile(path string, f Format, records []types.Record) (err error) {
	if !f.Supported() {
		return Write(io.Discard, f, records)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serialize: create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("serialize: close %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := Write(bw, f, records); err != nil {
		return fmt.Errorf("serialize: write %s: %w", path, err)
	}
	return bw.Flush()
}

// row is the five-column shape shared by CSV, JSON and YAML.
type row struct {
	Computername string          `json:"Computername" yaml:"Computername"`
	Path         string          `json:"Path" yaml:"Path"`
	Name         string          `json:"Name" yaml:"Name"`
	Value        types.Value     `json:"Value" yaml:"Value"`
	Type         types.ValueKind `json:"Type" yaml:"Type"`
}

func rows(records []types.Record) []row {
	out := make([]row, len(records))
	for i, r := range records {
		out[i] = row{
			Computername: r.Computername,
			Path:         r.Path,
			Name:         r.Name,
			Value:        r.Value,
			Type:         r.Type,
		}
	}
	return out
}
