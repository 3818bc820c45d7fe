package export

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

func sheetName(prefix string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, prefix)
	if name == "" {
		return "Data"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

func renderXLSX(prefix string, table Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(prefix)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, c := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, c.Header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, bold); err != nil {
			return nil, err
		}
	}

	for r, row := range table.Rows {
		for i, c := range table.Columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			// Numbers stay numeric so the sheet can sum them.
			raw := value(row, c.AccessorKey)
			v, ok := numeric(raw)
			if !ok {
				v = cellText(raw)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
