package hrimport

import (
	"unicode/utf8"
)

// ReviewLayout locates the appraisal table. Rows and columns are one based
// as shown in a spreadsheet application.
type ReviewLayout struct {
	FirstRow          int `yaml:"first_row"`
	NameColumn        int `yaml:"name_column"`
	StartColumn       int `yaml:"start_column"`
	FirstReviewColumn int `yaml:"first_review_column"`
	Reviews           int `yaml:"reviews"`
}

// ReviewRow is one employee row of the appraisal table.
type ReviewRow struct {
	Row   int
	Name  string
	Start Cell
	Slots []Cell
}

// ReviewScanner walks the appraisal table one employee row at a time.
// Rows without a name are passed over silently.
type ReviewScanner struct {
	g      Grid
	layout ReviewLayout
	row    int
	cur    ReviewRow
}

func NewReviewScanner(g Grid, layout ReviewLayout) *ReviewScanner {
	return &ReviewScanner{g: g, layout: layout, row: layout.FirstRow - 1}
}

func (s *ReviewScanner) Scan() bool {
	for s.row < s.g.Rows() {
		r := s.row
		s.row++

		name := s.g.Cell(r, s.layout.NameColumn-1)
		if name.Blank() {
			continue
		}

		slots := make([]Cell, s.layout.Reviews)
		for i := range slots {
			slots[i] = s.g.Cell(r, s.layout.FirstReviewColumn-1+i)
		}
		s.cur = ReviewRow{
			Row:   r,
			Name:  CleanName(name.Value),
			Start: s.g.Cell(r, s.layout.StartColumn-1),
			Slots: slots,
		}
		return true
	}
	return false
}

func (s *ReviewScanner) Row() ReviewRow {
	return s.cur
}

const blockHeight = 3

// Block is one employee's three rows in a rota sheet: shift codes on the
// first name row, totals on the last name row and a role code below.
type Block struct {
	Row   int
	First string
	Last  string
	Role  string

	g Grid
}

func (b Block) Key() EmployeeKey {
	return EmployeeKey{First: b.First, Last: b.Last}
}

// Day returns the shift cell for a one based day of the month.
func (b Block) Day(day int) Cell {
	return b.g.Cell(b.Row, day)
}

// Totals returns the cell in the given column of the last name row.
func (b Block) Totals(col int) Cell {
	return b.g.Cell(b.Row+1, col)
}

// BlockScanner splits a rota sheet into employee blocks. Blank separator
// blocks and legend text that lands in the name column are skipped, and
// scanning stops once a whole block no longer fits in the sheet.
type BlockScanner struct {
	g          Grid
	row        int
	maxNameLen int
	cur        Block
	skipped    Diagnostics
}

// NewBlockScanner starts scanning at the zero based row firstRow. Names
// longer than maxNameLen characters are treated as legend text.
func NewBlockScanner(g Grid, firstRow, maxNameLen int) *BlockScanner {
	return &BlockScanner{g: g, row: firstRow, maxNameLen: maxNameLen}
}

func (s *BlockScanner) Scan() bool {
	for s.row+blockHeight-1 < s.g.Rows() {
		r := s.row
		s.row += blockHeight

		first := s.g.Cell(r, 0)
		last := s.g.Cell(r+1, 0)
		if first.Blank() || last.Blank() {
			continue
		}

		fn := CleanName(first.Value)
		ln := CleanName(last.Value)
		if utf8.RuneCountInString(fn) > s.maxNameLen || utf8.RuneCountInString(ln) > s.maxNameLen {
			s.skipped.info(KindSkip, s.g.Name(), "", "row %d: skipped block that looks like legend text: %q", r+1, fn)
			continue
		}

		s.cur = Block{
			Row:   r,
			First: fn,
			Last:  ln,
			Role:  s.g.Cell(r+2, 0).Text(),
			g:     s.g,
		}
		return true
	}
	return false
}

func (s *BlockScanner) Block() Block {
	return s.cur
}

// Skipped returns the blocks passed over because they held legend text.
func (s *BlockScanner) Skipped() Diagnostics {
	return s.skipped
}
