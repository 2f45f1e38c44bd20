package hrimport

import (
	"errors"
	"sort"
	"time"
)

// ErrNoSheets is returned when a workbook has no sheets at all.
var ErrNoSheets = errors.New("workbook contains no sheets")

// EmployeeReviews holds the classified reviews of one employee row. An
// employee without reviews is kept so the output accounts for every row.
type EmployeeReviews struct {
	Name    string
	Key     EmployeeKey
	Start   time.Time
	Reviews []Review
}

type AppraisalImport struct {
	Sheet          string
	IntervalMonths int
	Employees      []EmployeeReviews
	Diagnostics    Diagnostics
}

// Facts returns the total number of classified reviews.
func (a *AppraisalImport) Facts() int {
	n := 0
	for _, e := range a.Employees {
		n += len(e.Reviews)
	}
	return n
}

// ImportAppraisals reads the configured appraisal sheet from the workbook.
// A missing sheet is reported as a structural diagnostic; only a workbook
// without any sheets is an error.
func ImportAppraisals(wb Workbook, cfg AppraisalConfig) (*AppraisalImport, error) {
	names := wb.SheetNames()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}

	found := false
	for _, name := range names {
		if name == cfg.Sheet {
			found = true
			break
		}
	}
	if !found {
		imp := &AppraisalImport{Sheet: cfg.Sheet, IntervalMonths: cfg.IntervalMonths}
		imp.Diagnostics.warn(KindStructural, cfg.Sheet, "", "sheet not found")
		return imp, nil
	}

	g, err := wb.Sheet(cfg.Sheet)
	if err != nil {
		imp := &AppraisalImport{Sheet: cfg.Sheet, IntervalMonths: cfg.IntervalMonths}
		imp.Diagnostics.warn(KindStructural, cfg.Sheet, "", "reading sheet: %v", err)
		return imp, nil
	}
	return ClassifyAppraisals(g, cfg), nil
}

// ClassifyAppraisals classifies every employee row of an appraisal grid.
func ClassifyAppraisals(g Grid, cfg AppraisalConfig) *AppraisalImport {
	imp := &AppraisalImport{
		Sheet:          g.Name(),
		IntervalMonths: cfg.IntervalMonths,
	}
	byName := make(map[string]int)

	sc := NewReviewScanner(g, cfg.Layout)
	for sc.Scan() {
		row := sc.Row()

		start, err := ParseStartDate(row.Start)
		if err != nil {
			imp.Diagnostics.warn(KindStructural, g.Name(), row.Name, "row %d: bad start date %q: %v", row.Row+1, row.Start.Text(), err)
			continue
		}

		var reviews []Review
		for i, cell := range row.Slots {
			ctx := ReviewContext{
				Employee:       row.Name,
				Start:          start,
				Review:         i + 1,
				IntervalMonths: cfg.IntervalMonths,
			}
			rev, outcome := ClassifyReview(cell, ctx)
			switch outcome {
			case Due, Completed:
				reviews = append(reviews, rev)
			case Unrecognized:
				imp.Diagnostics.warn(KindUnrecognized, g.Name(), row.Name, "review %d: unrecognized format %q", ctx.Review, cell.Text())
			}
		}

		if idx, ok := byName[row.Name]; ok {
			imp.Diagnostics.warn(KindInconsistency, g.Name(), row.Name, "row %d: employee listed again, reviews merged", row.Row+1)
			imp.Employees[idx].Reviews = mergeReviews(imp.Employees[idx].Reviews, reviews)
			continue
		}

		byName[row.Name] = len(imp.Employees)
		imp.Employees = append(imp.Employees, EmployeeReviews{
			Name:    row.Name,
			Key:     SplitName(row.Name),
			Start:   start,
			Reviews: reviews,
		})
	}

	return imp
}

// mergeReviews overlays later reviews onto earlier ones by review number,
// keeping the result ordered by number.
func mergeReviews(have, more []Review) []Review {
	for _, r := range more {
		replaced := false
		for i := range have {
			if have[i].Number == r.Number {
				have[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			have = append(have, r)
		}
	}
	sort.Slice(have, func(i, j int) bool {
		return have[i].Number < have[j].Number
	})
	return have
}
