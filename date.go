package hrimport

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the two digit year format used throughout the source
// spreadsheets, e.g. 05.03.25.
const DateLayout = "02.01.06"

var dateToken = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{2}$`)

type FormatError struct {
	Value  string
	Layout string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("date %q does not match layout %s", e.Value, e.Layout)
}

// ParseDate parses a DD.MM.YY token. Two digit years follow strptime: 69-99
// map to the 1900s, everything else to the 2000s.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !dateToken.MatchString(s) {
		return time.Time{}, &FormatError{Value: s, Layout: DateLayout}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &FormatError{Value: s, Layout: DateLayout}
	}
	return t, nil
}

// ParseStartDate accepts either a native date cell or DD.MM.YY text.
func ParseStartDate(c Cell) (time.Time, error) {
	if c.Type == CellDate && !c.Time.IsZero() {
		return dateOnly(c.Time), nil
	}
	return ParseDate(c.Value)
}

// DueDate returns the date review number n falls due, n*interval months
// after start. The day of month is clamped to 28 so the result always
// exists; start dates on the 29th to 31st therefore lose their exact day.
func DueDate(start time.Time, n, intervalMonths int) time.Time {
	m := int(start.Month()) + n*intervalMonths
	y := start.Year() + (m-1)/12
	m = (m-1)%12 + 1
	d := min(start.Day(), 28)
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
