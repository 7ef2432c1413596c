// Package export writes rendered dataset views as spreadsheets
package export

import (
	"fmt"
	"io"

	"github.com/aethra/acueducto/internal/engine"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an XLSX workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxSheetName is Excel's limit on sheet title length
const maxSheetName = 31

// WriteXLSX writes the view as a single-sheet workbook: a header row with the
// column labels, then one row per record holding the formatted cell text.
func WriteXLSX(w io.Writer, v engine.View) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(v)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}

	for i, col := range v.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("export.WriteXLSX: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, col.Label); err != nil {
			return fmt.Errorf("export.WriteXLSX: %w", err)
		}
	}
	if len(v.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(v.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
			return fmt.Errorf("export.WriteXLSX: %w", err)
		}
	}

	for r, rec := range v.Rows {
		for c, cell := range rec.Cells {
			name, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("export.WriteXLSX: %w", err)
			}
			if err := f.SetCellValue(sheet, name, cell.Text); err != nil {
				return fmt.Errorf("export.WriteXLSX: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	return nil
}

// Filename is the download name for a view
func Filename(v engine.View) string {
	return string(v.Kind) + ".xlsx"
}

func sheetName(v engine.View) string {
	name := []rune(v.Title)
	if len(name) == 0 {
		return string(v.Kind)
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return string(name)
}
