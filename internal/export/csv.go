package export

import (
	"bytes"
	"encoding/csv"
)

func renderCSV(table Table) ([]byte, error) {
	var buf bytes.Buffer
	// BOM so spreadsheet tools pick UTF-8 for accented headers.
	buf.WriteString("\xef\xbb\xbf")

	w := csv.NewWriter(&buf)
	header, body := records(table)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
