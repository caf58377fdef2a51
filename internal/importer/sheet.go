package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is read in preference to the active worksheet when present.
const DefaultSheetName = "PalataQabul"

var (
	// ErrUnsupportedFormat is returned for anything but an .xlsx upload.
	ErrUnsupportedFormat = errors.New("please upload an .xlsx file (Excel 2007+)")
	// ErrUnreadableFile wraps workbook parse failures.
	ErrUnreadableFile = errors.New("could not read Excel")
)

// Sheet is a worksheet flattened to trimmed text cells.
type Sheet struct {
	Name string
	Rows [][]string
}

// ReadSheetFile opens path and reads it with ReadSheet.
func ReadSheetFile(path, preferred string) (*Sheet, error) {
	if err := CheckExtension(path); err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()
	return ReadSheet(fh, path, preferred)
}

// CheckExtension rejects file names that do not end in .xlsx.
func CheckExtension(filename string) error {
	if strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) != ".xlsx" {
		return ErrUnsupportedFormat
	}
	return nil
}

// ReadSheet parses an uploaded workbook. The preferred worksheet is used when
// it exists, the active one otherwise. Date and time formatted numbers are
// rendered as "dd.mm.yyyy HH:MM" so callers only ever see text.
func ReadSheet(r io.Reader, filename, preferred string) (*Sheet, error) {
	if err := CheckExtension(filename); err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if preferred != "" {
		for _, s := range f.GetSheetList() {
			if s == preferred {
				name = s
				break
			}
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: workbook has no worksheets", ErrUnreadableFile)
	}

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	styles := map[int]bool{}

	rows := make([][]string, len(raw))
	for i, row := range raw {
		out := make([]string, len(row))
		for j, v := range row {
			v = strings.TrimSpace(v)
			if v != "" {
				if num, err := strconv.ParseFloat(v, 64); err == nil && num >= 0 {
					if text, ok := dateCellText(f, name, i, j, num, date1904, styles); ok {
						v = text
					}
				}
			}
			out[j] = v
		}
		rows[i] = out
	}
	return &Sheet{Name: name, Rows: rows}, nil
}

func dateCellText(f *excelize.File, sheet string, row, col int, num float64, date1904 bool, styles map[int]bool) (string, bool) {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "", false
	}
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return "", false
	}
	isDate, seen := styles[styleID]
	if !seen {
		isDate = isDateStyle(f, styleID)
		styles[styleID] = isDate
	}
	if !isDate {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(num, date1904)
	if err != nil {
		return "", false
	}
	return t.Format("02.01.2006 15:04"), true
}

var formatNoise = regexp.MustCompile(`\[[^\]]*\]|"[^"]*"|\\.`)

func isDateStyle(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 22, style.NumFmt >= 45 && style.NumFmt <= 47:
		return true
	case style.CustomNumFmt != nil:
		code := strings.ToLower(formatNoise.ReplaceAllString(*style.CustomNumFmt, ""))
		return strings.ContainsAny(code, "ydh")
	}
	return false
}
