package serialize

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/regexport/pkg/types"
)

const indent = "  "

func writeJSON(w io.Writer, records []types.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	return enc.Encode(rows(records))
}

func writeYAML(w io.Writer, records []types.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(len(indent))
	if err := enc.Encode(rows(records)); err != nil {
		return err
	}
	return enc.Close()
}
