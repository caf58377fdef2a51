package importer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TemplateHeader 导入模板表头（出院信息通过编辑补录，不在模板中）
var TemplateHeader = []string{
	"Ист номер",
	"Бемор Ф.И.О",
	"Дата рождения",
	"Яшаш жойи",
	"Тел номер",
	"Касби",
	"Келган сана",
	"Келган вакти",
	"Палата",
	"Врач",
	"Каровчи",
}

const templateSheet = "Patients"

// GenerateTemplate builds an empty workbook whose header row the pipeline
// recognises.
func GenerateTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetSheetRow(templateSheet, "A1", &TemplateHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(TemplateHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(templateSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(TemplateHeader))
	if err := f.SetColWidth(templateSheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(templateSheet, "B", "B", 32); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
