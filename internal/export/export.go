// Package export renders tabular data as csv, xlsx or pdf files.
package export

import (
	"encoding/json"
	"errors"
	"f2fit/gym-manager/internal/domain"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType is the MIME type served with a file of format f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Column describes one exported field. AccessorKey may be a dotted path into nested rows.
type Column struct {
	Header      string `json:"header"`
	AccessorKey string `json:"accessorKey"`
}

// Row is one record keyed by accessor.
type Row map[string]any

// Table is the input of every renderer.
type Table struct {
	Title   string
	Columns []Column
	Rows    []Row
}

// File is a rendered export ready to be served or stored.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileName builds {prefix}_export_{YYYY-MM-DD}.{ext}.
func FileName(prefix string, f Format, day domain.Date) string {
	return fmt.Sprintf("%s_export_%s.%s", prefix, day.String(), f)
}

// VisibleColumns drops columns without a header and the row actions column.
func VisibleColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.Header == "" || c.AccessorKey == "actions" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Render produces the file for table in format f. prefix names the file and day dates it.
func Render(f Format, prefix string, day domain.Date, table Table) (*File, error) {
	table.Columns = VisibleColumns(table.Columns)

	var (
		data []byte
		err  error
	)
	switch f {
	case FormatCSV:
		data, err = renderCSV(table)
	case FormatXLSX:
		data, err = renderXLSX(prefix, table)
	case FormatPDF:
		data, err = renderPDF(table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", f, err)
	}
	return &File{Name: FileName(prefix, f, day), ContentType: f.ContentType(), Data: data}, nil
}

// value resolves a dotted accessor against nested rows.
func value(row Row, accessor string) any {
	if accessor == "" {
		return nil
	}
	var cur any = map[string]any(row)
	for _, part := range strings.Split(accessor, ".") {
		var m map[string]any
		switch node := cur.(type) {
		case map[string]any:
			m = node
		case Row:
			m = node
		default:
			return nil
		}
		cur = m[part]
	}
	return cur
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case domain.Date:
		if x.IsZero() {
			return ""
		}
		return x.Time().Format("02/01/2006")
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("02/01/2006")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// numeric returns v as a number excelize stores natively.
func numeric(v any) (any, bool) {
	switch x := v.(type) {
	case int, int64, float64:
		return x, true
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		if f, err := x.Float64(); err == nil {
			return f, true
		}
	}
	return nil, false
}

func records(table Table) (header []string, body [][]string) {
	header = make([]string, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c.Header
	}
	body = make([][]string, len(table.Rows))
	for r, row := range table.Rows {
		line := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			line[i] = cellText(value(row, c.AccessorKey))
		}
		body[r] = line
	}
	return header, body
}
