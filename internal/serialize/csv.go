package serialize

import (
	"encoding/csv"
	"io"

	"github.com/joshuapare/regexport/pkg/types"
)

var csvHeader = []string{"Computername", "Path", "Name", "Value", "Type"}

func writeCSV(w io.Writer, records []types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Computername, r.Path, r.Name, r.Value.String(), r.Type.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
