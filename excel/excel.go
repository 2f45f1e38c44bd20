package excel

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"kastelo.dev/hrimport"
)

// Workbook reads typed cells out of an xlsx file.
type Workbook struct {
	xlsx     *excelize.File
	date1904 bool
}

func Open(path string) (*Workbook, error) {
	xlsx, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return newWorkbook(xlsx), nil
}

func OpenReader(r io.Reader) (*Workbook, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return newWorkbook(xlsx), nil
}

func newWorkbook(xlsx *excelize.File) *Workbook {
	wb := &Workbook{xlsx: xlsx}
	if props, err := xlsx.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb
}

func (wb *Workbook) Close() error {
	return wb.xlsx.Close()
}

func (wb *Workbook) SheetNames() []string {
	return wb.xlsx.GetSheetList()
}

// Sheet loads the whole sheet into memory. Numbers carrying a date number
// format are returned as date cells.
func (wb *Workbook) Sheet(name string) (hrimport.Grid, error) {
	rows, err := wb.xlsx.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	styles := make(map[int]bool)
	sheet := hrimport.NewSheet(name, nil)
	for r, row := range rows {
		cells := make([]hrimport.Cell, len(row))
		for c, raw := range row {
			cell, err := wb.cell(name, r, c, raw, styles)
			if err != nil {
				return nil, err
			}
			cells[c] = cell
		}
		sheet.AppendRow(cells)
	}
	return sheet, nil
}

func (wb *Workbook) cell(sheet string, r, c int, raw string, dateStyles map[int]bool) (hrimport.Cell, error) {
	if strings.TrimSpace(raw) == "" {
		return hrimport.Cell{Value: raw}, nil
	}

	axis, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return hrimport.Cell{}, err
	}
	typ, err := wb.xlsx.GetCellType(sheet, axis)
	if err != nil {
		return hrimport.Cell{}, err
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeBool, excelize.CellTypeError:
		return hrimport.Cell{Type: hrimport.CellText, Value: raw}, nil

	case excelize.CellTypeDate:
		if t, ok := parseISO(raw); ok {
			return dateCell(t), nil
		}
		return hrimport.Cell{Type: hrimport.CellText, Value: raw}, nil
	}

	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return hrimport.Cell{Type: hrimport.CellText, Value: raw}, nil
	}

	isDate, err := wb.isDateStyle(sheet, axis, dateStyles)
	if err != nil {
		return hrimport.Cell{}, err
	}
	if isDate {
		t, err := excelize.ExcelDateToTime(serial, wb.date1904)
		if err == nil {
			return dateCell(t), nil
		}
	}
	return hrimport.Cell{Type: hrimport.CellNumber, Value: raw}, nil
}

func (wb *Workbook) isDateStyle(sheet, axis string, cache map[int]bool) (bool, error) {
	id, err := wb.xlsx.GetCellStyle(sheet, axis)
	if err != nil {
		return false, err
	}
	if isDate, ok := cache[id]; ok {
		return isDate, nil
	}
	style, err := wb.xlsx.GetStyle(id)
	if err != nil {
		return false, err
	}
	isDate := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	cache[id] = isDate
	return isDate, nil
}

func dateCell(t time.Time) hrimport.Cell {
	y, m, d := t.Date()
	t = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return hrimport.Cell{Type: hrimport.CellDate, Value: t.Format(time.DateOnly), Time: t}
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isDateNumFmt reports whether a built in number format id is a date or
// date-time format.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode looks for day or year tokens outside quoted literals and
// bracketed sections of a custom number format.
func isDateFormatCode(code string) bool {
	inQuote := false
	inBracket := false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == 'd' || r == 'y':
			return true
		}
	}
	return false
}
