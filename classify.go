package hrimport

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultInterval is the number of months between appraisal reviews.
const DefaultInterval = 3

// Outcome is the result of classifying a single appraisal cell.
type Outcome int

const (
	Skip Outcome = iota
	Due
	Completed
	Unrecognized
)

func (o Outcome) String() string {
	switch o {
	case Skip:
		return "skip"
	case Due:
		return "due"
	case Completed:
		return "completed"
	default:
		return "unrecognized"
	}
}

type ReviewContext struct {
	Employee       string
	Start          time.Time
	Review         int
	IntervalMonths int
}

func (c ReviewContext) due() time.Time {
	interval := c.IntervalMonths
	if interval == 0 {
		interval = DefaultInterval
	}
	return DueDate(c.Start, c.Review, interval)
}

// Review is one classified appraisal checkpoint. A zero Completed means the
// review is still pending.
type Review struct {
	Number    int
	Due       time.Time
	Completed time.Time
}

func (r Review) Status() string {
	if r.Completed.IsZero() {
		return "pending"
	}
	return "completed"
}

var completedMarker = regexp.MustCompile(`(?i)completed\s+(\d{2}\.\d{2}\.\d{2})(?:\D|$)`)

// ClassifyReview decides what an appraisal cell means. Rules are evaluated
// in order and the first match wins:
//
//  1. blank cell: Skip
//  2. text with "Completed DD.MM.YY": completed on that date
//  3. date on the first of a month: due on that date, overriding the
//     computed due date
//  4. any other date: completed on that date
//  5. text that is exactly DD.MM.YY: completed on that date
//  6. anything else: Unrecognized
//
// Completed reviews always carry the due date computed from the context.
func ClassifyReview(c Cell, ctx ReviewContext) (Review, Outcome) {
	if c.Blank() {
		return Review{}, Skip
	}

	rev := Review{Number: ctx.Review}

	if c.Type == CellText {
		if m := completedMarker.FindStringSubmatch(c.Value); m != nil {
			if done, err := ParseDate(m[1]); err == nil {
				rev.Due = ctx.due()
				rev.Completed = done
				return rev, Completed
			}
		}
	}

	if c.Type == CellDate {
		d := dateOnly(c.Time)
		if d.Day() == 1 {
			rev.Due = d
			return rev, Due
		}
		rev.Due = ctx.due()
		rev.Completed = d
		return rev, Completed
	}

	if c.Type == CellText {
		if done, err := ParseDate(c.Value); err == nil {
			rev.Due = ctx.due()
			rev.Completed = done
			return rev, Completed
		}
	}

	return Review{}, Unrecognized
}

// ShiftCodes maps spreadsheet shift tokens to canonical shift type codes.
type ShiftCodes map[string]string

func DefaultShiftCodes() ShiftCodes {
	return ShiftCodes{
		"A":  "A",
		"D":  "D",
		"DS": "DS",
		"S":  "S",
		"E":  "E",
		"L":  "L",
		"*":  "RDO",
	}
}

// ShiftOutcome is the result of classifying a single rota day cell.
type ShiftOutcome int

const (
	NoShift ShiftOutcome = iota
	Assigned
	UnknownCode
)

// Classify looks the cell up in the code table. Numbers are stray hour
// counts and are ignored along with blanks. Anything else that misses the
// table is UnknownCode and the trimmed text is returned for reporting.
func (sc ShiftCodes) Classify(c Cell) (string, ShiftOutcome) {
	if c.Blank() || c.Type == CellDate {
		return "", NoShift
	}
	token := c.Text()
	if code, ok := sc[token]; ok {
		return code, Assigned
	}
	if c.Type == CellNumber || token == "0" {
		return "", NoShift
	}
	if _, err := strconv.ParseFloat(token, 64); err == nil {
		return "", NoShift
	}
	return token, UnknownCode
}

// Canonical returns the distinct canonical codes in sorted order.
func (sc ShiftCodes) Canonical() []string {
	seen := make(map[string]bool)
	var res []string
	for _, code := range sc {
		if !seen[code] {
			seen[code] = true
			res = append(res, code)
		}
	}
	sort.Strings(res)
	return res
}

type codeSet map[string]struct{}

func (s codeSet) add(code string) { s[code] = struct{}{} }

func (s codeSet) sorted() []string {
	res := make([]string, 0, len(s))
	for code := range s {
		res = append(res, code)
	}
	sort.Strings(res)
	return res
}

func (s codeSet) String() string {
	return strings.Join(s.sorted(), ", ")
}
