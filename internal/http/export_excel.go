package httpapi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"ward-census/internal/service"
)

// PatientsExportHeader 患者导出表头
var PatientsExportHeader = []string{
	"History No.",
	"Patient Full Name",
	"Date of Birth",
	"Phone",
	"Address",
	"Occupation",
	"Arrival DateTime",
	"Discharge time",
	"Ward",
	"Doctor",
	"Caregiver",
}

const (
	inpatientSheet = "Inpatients"
	patientsSheet  = "Patients"
)

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func writeBuffer(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateInpatientExport lays the snapshot out as one sheet: a title row,
// then per block a title, a column header and one row per ward.
func GenerateInpatientExport(view *service.SnapshotView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", inpatientSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	hdr, err := headerStyle(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return nil, fmt.Errorf("failed to create wrap style: %w", err)
	}

	set := func(row int, values ...interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(inpatientSheet, cell, &values)
	}

	row := 1
	if err := set(row, "Inpatients — "+view.At); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(inpatientSheet, "A1", "A1", bold); err != nil {
		return nil, err
	}
	row += 2 // blank row after the title

	for _, b := range view.Blocks {
		if err := set(row, b.Title); err != nil {
			return nil, err
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellStyle(inpatientSheet, cell, cell, bold); err != nil {
			return nil, err
		}
		row++

		if err := set(row, "Ward", "Patient(s)"); err != nil {
			return nil, err
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellStyle(inpatientSheet, first, last, hdr); err != nil {
			return nil, err
		}
		row++

		for _, w := range b.Wards {
			if err := set(row, w.Name, w.Text); err != nil {
				return nil, err
			}
			cell, _ := excelize.CoordinatesToCellName(2, row)
			if err := f.SetCellStyle(inpatientSheet, cell, cell, wrap); err != nil {
				return nil, err
			}
			if n := strings.Count(w.Text, "\n"); n > 0 {
				if err := f.SetRowHeight(inpatientSheet, row, float64(15*(n+1))); err != nil {
					return nil, err
				}
			}
			row++
		}
		row++ // blank row between blocks
	}

	if err := f.SetColWidth(inpatientSheet, "A", "A", 16); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(inpatientSheet, "B", "B", 60); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	return writeBuffer(f)
}

// GeneratePatientsExport writes one row per record under PatientsExportHeader.
func GeneratePatientsExport(items []service.PatientItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", patientsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	hdr, err := headerStyle(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetSheetRow(patientsSheet, "A1", &PatientsExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(PatientsExportHeader), 1)
	if err := f.SetCellStyle(patientsSheet, "A1", lastHeader, hdr); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, p := range items {
		caregiver := "No"
		if p.CaregiverExists {
			caregiver = "Yes"
		}
		values := []interface{}{
			p.HistoryNumber,
			p.FullName,
			p.BirthDate,
			p.Phone,
			p.Address,
			p.Occupation,
			strings.TrimSpace(p.ArrivalDate + " " + p.ArrivalTime),
			p.Discharge,
			p.WardName,
			p.DoctorName,
			caregiver,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(patientsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	columnWidths := []float64{14, 32, 14, 18, 32, 20, 18, 18, 12, 24, 10}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(patientsSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(patientsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}
	return writeBuffer(f)
}
