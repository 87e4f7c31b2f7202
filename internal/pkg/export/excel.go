// internal/pkg/export/excel.go
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the sheet name limit imposed by the xlsx format
const maxSheetName = 31

// WriteXLSX writes one sheet per table
func WriteXLSX(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, table := range report.Tables {
		sheet := sheetName(table.Title, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		for col, h := range table.Headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
		}
		if len(table.Headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(table.Headers), 1)
			if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
				return fmt.Errorf("failed to style header: %w", err)
			}
		}

		for r, row := range table.Rows {
			for col, value := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return fmt.Errorf("failed to write cell %s: %w", cell, err)
				}
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func sheetName(title string, index int) string {
	if title == "" {
		title = fmt.Sprintf("Sheet%d", index+1)
	}
	if len(title) > maxSheetName {
		title = title[:maxSheetName]
	}
	return title
}
