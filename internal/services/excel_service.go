package services

import (
	"fmt"
	"strings"

	"staffhub-report/internal/utils"

	"github.com/xuri/excelize/v2"
)

// ExcelService renders report data as an .xlsx workbook
type ExcelService struct{}

// NewExcelService creates a new Excel service
func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// Render produces one worksheet named after the template, a bold header row
// filled with the template's primary color, fixed column widths, and one row
// per record (group-label rows before member rows when grouped)
func (s *ExcelService) Render(data *ReportData) ([]byte, error) {
	fields := data.Template.VisibleFields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("template %q has no visible fields", data.Template.Name)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(data.Template.Name)
	f.SetSheetName("Sheet1", sheet)

	headerColor := strings.TrimPrefix(data.Template.Layout.PrimaryColor, "#")
	if len(headerColor) != 6 {
		headerColor = "0066CC"
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	groupStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create group style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(fields))
	if err != nil {
		return nil, fmt.Errorf("failed to compute column name: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("failed to set column widths: %w", err)
	}

	// Header row
	for i, field := range fields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, field.Label); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header row: %w", err)
	}

	row := 2
	writeRecord := func(rec map[string]interface{}) error {
		for i, field := range fields {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			v, _ := utils.Resolve(rec, field.SourcePath)
			if err := f.SetCellValue(sheet, cell, utils.FormatValue(v, field.ValueType)); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	if data.Grouped {
		for _, group := range data.Groups {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, group.Key); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(sheet, cell, cell, groupStyle); err != nil {
				return nil, err
			}
			row++
			for _, rec := range group.Records {
				if err := writeRecord(rec); err != nil {
					return nil, err
				}
			}
		}
	} else {
		for _, rec := range data.Rows {
			if err := writeRecord(rec); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName sanitizes a template name into a legal worksheet name (Excel
// forbids several characters and caps names at 31 runes)
func sheetName(name string) string {
	replacer := strings.NewReplacer("\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ", ":", " ")
	cleaned := strings.TrimSpace(replacer.Replace(name))
	if cleaned == "" {
		cleaned = "Report"
	}
	runes := []rune(cleaned)
	if len(runes) > 31 {
		cleaned = string(runes[:31])
	}
	return cleaned
}
