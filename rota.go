package hrimport

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Month identifies one month sheet of the rota workbook.
type Month struct {
	Sheet string
	Year  int
	Month time.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// RotaMonths returns the sheets of a rota year in calendar order, April of
// year through March of the following year.
func RotaMonths(year int) []Month {
	res := make([]Month, 0, 12)
	for i := 0; i < 12; i++ {
		m := time.Month((int(time.April)-1+i)%12 + 1)
		y := year
		if m < time.April {
			y++
		}
		res = append(res, Month{Sheet: m.String(), Year: y, Month: m})
	}
	return res
}

type Shift struct {
	Employee EmployeeKey
	Date     time.Time
	Code     string
}

type MonthlyHours struct {
	Year       int
	Month      time.Month
	Contracted float64
}

// SheetResult is everything extracted from a single month sheet.
type SheetResult struct {
	Month
	Found         bool
	Shifts        []Shift
	Contracted    float64
	HasContracted bool
	Employees     []EmployeeKey
	Unknown       []string
	Diagnostics   Diagnostics
}

// ExtractSheet classifies every employee block of one month sheet. The last
// two columns hold total hours and the over/under delta, so the number of
// day columns is the sheet width minus the name column and those two.
func ExtractSheet(g Grid, m Month, cfg RotaConfig) SheetResult {
	res := SheetResult{Month: m, Found: true}

	days := g.Cols() - 3
	if days < 1 {
		res.Diagnostics.warn(KindStructural, g.Name(), "", "sheet has no day columns")
		return res
	}
	inMonth := daysIn(m.Year, m.Month)

	unknown := make(codeSet)
	seen := make(map[EmployeeKey]bool)

	sc := NewBlockScanner(g, cfg.FirstRow-1, cfg.MaxNameLength)
	for sc.Scan() {
		b := sc.Block()
		key := b.Key()
		if seen[key] {
			res.Diagnostics.warn(KindInconsistency, g.Name(), key.String(), "row %d: employee listed twice", b.Row+1)
		} else {
			seen[key] = true
			res.Employees = append(res.Employees, key)
		}

		if derived, ok := res.contractedHours(b, days); ok {
			if !res.HasContracted {
				res.Contracted = derived
				res.HasContracted = true
			} else if math.Abs(res.Contracted-derived) > cfg.Tolerance {
				res.Diagnostics.warn(KindInconsistency, g.Name(), key.String(), "implies contracted hours %v, expected %v", derived, res.Contracted)
			}
		}

		for day := 1; day <= days; day++ {
			cell := b.Day(day)
			code, outcome := cfg.Codes.Classify(cell)
			switch outcome {
			case Assigned:
				if day > inMonth {
					res.Diagnostics.warn(KindUnrecognized, g.Name(), key.String(), "shift %q on day %d beyond end of month", cell.Text(), day)
					continue
				}
				res.Shifts = append(res.Shifts, Shift{
					Employee: key,
					Date:     time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC),
					Code:     code,
				})
			case UnknownCode:
				unknown.add(code)
			}
		}
	}

	res.Diagnostics = append(res.Diagnostics, sc.Skipped()...)
	if len(unknown) > 0 {
		res.Unknown = unknown.sorted()
		res.Diagnostics.warn(KindUnrecognized, g.Name(), "", "unknown codes: %s", unknown)
	}
	return res
}

// contractedHours derives contracted hours as total hours minus the
// over/under delta reported on the block's second row.
func (res *SheetResult) contractedHours(b Block, days int) (float64, bool) {
	totalCell := b.Totals(days + 1)
	deltaCell := b.Totals(days + 2)
	if totalCell.Blank() || deltaCell.Blank() {
		return 0, false
	}
	total, ok1 := totalCell.Float()
	delta, ok2 := deltaCell.Float()
	if !ok1 || !ok2 {
		res.Diagnostics.warn(KindUnrecognized, res.Sheet, b.Key().String(), "non-numeric hour totals %q, %q", totalCell.Text(), deltaCell.Text())
		return 0, false
	}
	return total - delta, true
}

type EmployeeShifts struct {
	Key    EmployeeKey
	Shifts []Shift
}

// Roster is the merged result of a rota run. Employees are sorted by
// first and last name; an employee seen without any shifts is retained.
type Roster struct {
	Sheets      []SheetResult
	Hours       []MonthlyHours
	Employees   []EmployeeShifts
	Diagnostics Diagnostics

	byKey map[EmployeeKey]*EmployeeShifts
}

// Shifts returns the total number of shift assignments.
func (r *Roster) Shifts() int {
	n := 0
	for _, e := range r.Employees {
		n += len(e.Shifts)
	}
	return n
}

// Codes returns the distinct shift codes in use, sorted.
func (r *Roster) Codes() []string {
	set := make(codeSet)
	for _, e := range r.Employees {
		for _, s := range e.Shifts {
			set.add(s.Code)
		}
	}
	return set.sorted()
}

func (r *Roster) add(res SheetResult) {
	r.Sheets = append(r.Sheets, res)
	r.Diagnostics = append(r.Diagnostics, res.Diagnostics...)
	if !res.Found {
		return
	}
	if res.HasContracted {
		r.Hours = append(r.Hours, MonthlyHours{Year: res.Year, Month: res.Month.Month, Contracted: res.Contracted})
	}
	for _, key := range res.Employees {
		r.employee(key)
	}
	for _, s := range res.Shifts {
		e := r.employee(s.Employee)
		e.Shifts = append(e.Shifts, s)
	}
}

func (r *Roster) employee(key EmployeeKey) *EmployeeShifts {
	if r.byKey == nil {
		r.byKey = make(map[EmployeeKey]*EmployeeShifts)
	}
	e, ok := r.byKey[key]
	if !ok {
		e = &EmployeeShifts{Key: key}
		r.byKey[key] = e
	}
	return e
}

func (r *Roster) finish() {
	r.Employees = make([]EmployeeShifts, 0, len(r.byKey))
	for _, e := range r.byKey {
		r.Employees = append(r.Employees, *e)
	}
	sort.Slice(r.Employees, func(i, j int) bool {
		return r.Employees[i].Key.less(r.Employees[j].Key)
	})
	r.byKey = nil
}

// ImportRota extracts the twelve month sheets of a rota workbook. Sheets
// are read in calendar order, classified concurrently, and merged back in
// calendar order so the result does not depend on scheduling. Missing
// sheets are reported and skipped.
func ImportRota(ctx context.Context, wb Workbook, cfg RotaConfig) (*Roster, error) {
	names := wb.SheetNames()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}

	months := RotaMonths(cfg.Year)
	results := make([]SheetResult, len(months))
	grids := make([]Grid, len(months))
	for i, m := range months {
		results[i].Month = m
		if !present[m.Sheet] {
			results[i].Diagnostics.warn(KindStructural, m.Sheet, "", "sheet not found, skipping")
			continue
		}
		g, err := wb.Sheet(m.Sheet)
		if err != nil {
			results[i].Diagnostics.warn(KindStructural, m.Sheet, "", "reading sheet: %v", err)
			continue
		}
		grids[i] = g
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(cfg.Workers, 1))
	for i := range months {
		if grids[i] == nil {
			continue
		}
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = ExtractSheet(grids[i], months[i], cfg)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	r := &Roster{}
	for _, res := range results {
		r.add(res)
	}
	r.finish()
	return r, nil
}
