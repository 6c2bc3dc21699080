// Package printer renders records on the console for print-only runs.
package printer

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/joshuapare/regexport/pkg/types"
)

// Style selects the console layout.
type Style string

const (
	StyleTable Style = "table"
	StyleList  Style = "list"
)

// MaxBinaryBytes is how much of a binary value the console shows.
const MaxBinaryBytes = 32

const ellipsis = "…"

// Options configures Render.
type Options struct {
	Style Style // empty selects StyleTable
	Color bool
}

// ParseStyle resolves a style name, case-insensitively.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "", StyleTable:
		return StyleTable, nil
	case StyleList:
		return StyleList, nil
	default:
		return "", types.Errorf(types.ErrKindConfig, "unknown output style %q (want table or list)", s)
	}
}

var (
	headerColor = lipgloss.Color("#7D56F4")
	pathColor   = lipgloss.Color("#00D7FF")
	mutedColor  = lipgloss.Color("#666666")
	borderColor = lipgloss.Color("#383838")
)

type palette struct {
	header lipgloss.Style
	path   lipgloss.Style
	label  lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
}

func newPalette(w io.Writer, color bool) palette {
	r := lipgloss.NewRenderer(w)
	p := palette{
		header: r.NewStyle().Bold(true).Padding(0, 1),
		path:   r.NewStyle().Padding(0, 1),
		label:  r.NewStyle(),
		cell:   r.NewStyle().Padding(0, 1),
		border: r.NewStyle(),
	}
	if color {
		p.header = p.header.Foreground(headerColor)
		p.path = p.path.Foreground(pathColor)
		p.label = p.label.Foreground(mutedColor)
		p.border = p.border.Foreground(borderColor)
	}
	return p
}

// Render writes records to w. Nothing is written for an empty slice.
func Render(w io.Writer, records []types.Record, opts Options) error {
	if len(records) == 0 {
		return nil
	}
	p := newPalette(w, opts.Color)
	switch opts.Style {
	case "", StyleTable:
		return renderTable(w, records, p)
	case StyleList:
		return renderList(w, records, p)
	default:
		return types.Errorf(types.ErrKindConfig, "unknown output style %q", opts.Style)
	}
}

func renderTable(w io.Writer, records []types.Record, p palette) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.Path, r.Name, DisplayValue(r), r.TypeString}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.border).
		Headers("Path", "Name", "Value", "TypeString").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.header
			case col == 0:
				return p.path
			default:
				return p.cell
			}
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func renderList(w io.Writer, records []types.Record, p palette) error {
	labels := []string{"Path", "Name", "Value", "TypeString", "Computername"}
	width := 0
	for _, l := range labels {
		width = max(width, len(l))
	}

	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		values := []string{r.Path, r.Name, DisplayValue(r), r.TypeString, r.Computername}
		for j, l := range labels {
			fmt.Fprintf(&b, "%s%s : %s\n", p.label.Render(l), strings.Repeat(" ", width-len(l)), values[j])
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// DisplayValue is the console form of a record's value. Binary data longer
// than MaxBinaryBytes is cut short; files always carry the full value.
func DisplayValue(r types.Record) string {
	v := r.Value
	if raw, ok := v.Interface().([]byte); ok && len(raw) > MaxBinaryBytes {
		return hex.EncodeToString(raw[:MaxBinaryBytes]) + ellipsis
	}
	if v.Kind() == types.DataStrings {
		return "{" + strings.Join(v.Interface().([]string), ", ") + "}"
	}
	return v.String()
}
