package hrimport

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type CellType int

const (
	CellEmpty CellType = iota
	CellText
	CellDate
	CellNumber
)

func (t CellType) String() string {
	switch t {
	case CellEmpty:
		return "empty"
	case CellText:
		return "text"
	case CellDate:
		return "date"
	case CellNumber:
		return "number"
	default:
		return fmt.Sprintf("CellType(%d)", int(t))
	}
}

// Cell is a single spreadsheet cell as delivered by a grid reader. Row and
// Col are zero based. Time is only meaningful for CellDate.
type Cell struct {
	Row   int
	Col   int
	Type  CellType
	Value string
	Time  time.Time
}

// Blank reports whether the cell carries no data: empty, whitespace only,
// or a NaN placeholder left behind by a numeric export.
func (c Cell) Blank() bool {
	switch c.Type {
	case CellEmpty:
		return true
	case CellDate:
		return c.Time.IsZero()
	}
	v := strings.TrimSpace(c.Value)
	return v == "" || strings.EqualFold(v, "nan")
}

// Text returns the trimmed cell contents.
func (c Cell) Text() string {
	return strings.TrimSpace(c.Value)
}

// Float returns the numeric value of the cell, accepting numbers stored as
// text. Infinities and NaN are not numbers here.
func (c Cell) Float() (float64, bool) {
	if c.Type != CellNumber && c.Type != CellText {
		return 0, false
	}
	f, err := strconv.ParseFloat(c.Text(), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Grid is a 2-D view of one sheet. Cell must return an empty cell for
// coordinates outside the populated area.
type Grid interface {
	Name() string
	Rows() int
	Cols() int
	Cell(row, col int) Cell
}

// Workbook is a collection of named sheets.
type Workbook interface {
	SheetNames() []string
	Sheet(name string) (Grid, error)
}

// Sheet is an in-memory Grid.
type Sheet struct {
	name  string
	cells [][]Cell
	cols  int
}

// NewSheet builds a sheet from plain Go values. Supported values are nil,
// string, time.Time, the integer and float types and Cell.
func NewSheet(name string, rows [][]any) *Sheet {
	s := &Sheet{name: name}
	for r, row := range rows {
		cells := make([]Cell, len(row))
		for c, v := range row {
			cells[c] = cellFromValue(r, c, v)
		}
		s.AppendRow(cells)
	}
	return s
}

// AppendRow adds a row of cells, fixing up their coordinates.
func (s *Sheet) AppendRow(cells []Cell) {
	r := len(s.cells)
	for c := range cells {
		cells[c].Row = r
		cells[c].Col = c
	}
	s.cells = append(s.cells, cells)
	if len(cells) > s.cols {
		s.cols = len(cells)
	}
}

func (s *Sheet) Name() string { return s.name }
func (s *Sheet) Rows() int    { return len(s.cells) }
func (s *Sheet) Cols() int    { return s.cols }

func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.cells) || col < 0 || col >= len(s.cells[row]) {
		return Cell{Row: row, Col: col}
	}
	return s.cells[row][col]
}

func cellFromValue(r, c int, v any) Cell {
	cell := Cell{Row: r, Col: c}
	switch v := v.(type) {
	case nil:
	case Cell:
		cell = v
	case string:
		cell.Type = CellText
		cell.Value = v
	case time.Time:
		cell.Type = CellDate
		cell.Time = v
		cell.Value = v.Format(time.DateOnly)
	case int:
		cell.Type = CellNumber
		cell.Value = strconv.Itoa(v)
	case float64:
		cell.Type = CellNumber
		cell.Value = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		cell.Type = CellText
		cell.Value = fmt.Sprint(v)
	}
	return cell
}

// Book is an in-memory Workbook preserving sheet order.
type Book struct {
	sheets []*Sheet
}

func NewBook(sheets ...*Sheet) *Book {
	return &Book{sheets: sheets}
}

func (b *Book) SheetNames() []string {
	names := make([]string, len(b.sheets))
	for i, s := range b.sheets {
		names[i] = s.name
	}
	return names
}

func (b *Book) Sheet(name string) (Grid, error) {
	for _, s := range b.sheets {
		if s.name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("sheet %q not found", name)
}
