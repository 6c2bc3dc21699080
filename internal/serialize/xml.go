package serialize

import (
	"encoding/hex"
	"encoding/xml"
	"io"

	"github.com/joshuapare/regexport/pkg/types"
)

// xmlDocument keeps the whole record, TypeString included, and tags every
// value with the union member it holds so the file can be read back
// without guessing.
type xmlDocument struct {
	XMLName      xml.Name    `xml:"RegistryExport"`
	Computername string      `xml:"computername,attr"`
	Count        int         `xml:"count,attr"`
	Records      []xmlRecord `xml:"Record"`
}

type xmlRecord struct {
	Path         string   `xml:"Path"`
	Name         string   `xml:"Name"`
	Value        xmlValue `xml:"Value"`
	Type         xmlType  `xml:"Type"`
	TypeString   string   `xml:"TypeString"`
	Computername string   `xml:"Computername"`
}

type xmlType struct {
	Code int32  `xml:"code,attr"`
	Name string `xml:",chardata"`
}

type xmlValue struct {
	Kind  string   `xml:"kind,attr"`
	Nil   bool     `xml:"nil,attr,omitempty"`
	Text  string   `xml:",chardata"`
	Items []string `xml:"Item"`
}

func toXMLValue(v types.Value) xmlValue {
	out := xmlValue{Kind: v.Kind().String()}
	switch data := v.Interface().(type) {
	case nil:
		out.Nil = true
	case []string:
		out.Items = data
	case []byte:
		out.Text = hex.EncodeToString(data)
	default:
		out.Text = v.String()
	}
	return out
}

func writeXML(w io.Writer, records []types.Record) error {
	doc := xmlDocument{Count: len(records)}
	if len(records) > 0 {
		doc.Computername = records[0].Computername
	}
	for _, r := range records {
		doc.Records = append(doc.Records, xmlRecord{
			Path:         r.Path,
			Name:         r.Name,
			Value:        toXMLValue(r.Value),
			Type:         xmlType{Code: int32(r.Type), Name: r.Type.String()},
			TypeString:   r.TypeString,
			Computername: r.Computername,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", indent)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
