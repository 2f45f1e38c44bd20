package hrimport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type testBlock struct {
	first, last, role string
	shifts            map[int]any
	total, delta      any
}

// rotaSheet lays blocks out the way the rota workbook does: two header
// rows, then three rows per employee with the day columns between the name
// column and the two hour total columns.
func rotaSheet(name string, days int, blocks ...testBlock) *Sheet {
	header := []any{"Name"}
	for d := 1; d <= days; d++ {
		header = append(header, d)
	}
	header = append(header, "ASI", "Over/Under")

	rows := [][]any{header, {nil}}
	for _, b := range blocks {
		first := make([]any, days+3)
		second := make([]any, days+3)
		if b.first != "" {
			first[0] = b.first
		}
		if b.last != "" {
			second[0] = b.last
		}
		for d, v := range b.shifts {
			first[d] = v
		}
		second[days+1] = b.total
		second[days+2] = b.delta
		rows = append(rows, first, second, []any{b.role})
	}
	return NewSheet(name, rows)
}

func testRotaConfig() RotaConfig {
	return DefaultConfig().Rota
}

func april() Month {
	return Month{Sheet: "April", Year: 2026, Month: time.April}
}

func TestRotaMonths(t *testing.T) {
	months := RotaMonths(2026)
	if len(months) != 12 {
		t.Fatalf("%d months", len(months))
	}
	if months[0] != (Month{Sheet: "April", Year: 2026, Month: time.April}) {
		t.Errorf("first month %+v", months[0])
	}
	if months[8] != (Month{Sheet: "December", Year: 2026, Month: time.December}) {
		t.Errorf("ninth month %+v", months[8])
	}
	if months[9] != (Month{Sheet: "January", Year: 2027, Month: time.January}) {
		t.Errorf("tenth month %+v", months[9])
	}
	if months[11] != (Month{Sheet: "March", Year: 2027, Month: time.March}) {
		t.Errorf("last month %+v", months[11])
	}
}

func TestExtractSheet(t *testing.T) {
	sheet := rotaSheet("April", 30,
		testBlock{
			first: "Jane", last: "Doe", role: "SW",
			shifts: map[int]any{1: "A", 2: "*", 3: "Q", 4: "Q", 5: 7.5, 6: "X", 30: "DS"},
			total:  160, delta: -4,
		},
		testBlock{},
		testBlock{
			first: "John", last: "Smith", role: "SSW",
			shifts: map[int]any{1: "L", 2: "Q"},
			total:  170, delta: 6,
		},
	)

	res := ExtractSheet(sheet, april(), testRotaConfig())

	jane := EmployeeKey{First: "Jane", Last: "Doe"}
	john := EmployeeKey{First: "John", Last: "Smith"}
	wantShifts := []Shift{
		{Employee: jane, Date: date(2026, 4, 1), Code: "A"},
		{Employee: jane, Date: date(2026, 4, 2), Code: "RDO"},
		{Employee: jane, Date: date(2026, 4, 30), Code: "DS"},
		{Employee: john, Date: date(2026, 4, 1), Code: "L"},
	}
	if diff := cmp.Diff(wantShifts, res.Shifts); diff != "" {
		t.Errorf("shifts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]EmployeeKey{jane, john}, res.Employees); diff != "" {
		t.Errorf("employees (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Q", "X"}, res.Unknown); diff != "" {
		t.Errorf("unknown codes (-want +got):\n%s", diff)
	}
	if !res.HasContracted || res.Contracted != 164 {
		t.Errorf("contracted %v (%v), expected 164", res.Contracted, res.HasContracted)
	}

	unrecognized := res.Diagnostics.OfKind(KindUnrecognized)
	if len(unrecognized) != 1 || unrecognized[0].Message != "unknown codes: Q, X" {
		t.Errorf("unknown codes should be reported once per sheet, got %v", unrecognized)
	}
	if n := len(res.Diagnostics.OfKind(KindInconsistency)); n != 0 {
		t.Errorf("%d unexpected inconsistencies", n)
	}
}

func TestExtractSheetContractedHours(t *testing.T) {
	cases := []struct {
		name       string
		second     testBlock
		contracted float64
		warnings   int
	}{
		{"agree", testBlock{total: 150, delta: -14}, 164, 0},
		{"within tolerance", testBlock{total: 164.4, delta: 0}, 164, 0},
		{"mismatch", testBlock{total: 170, delta: 0}, 164, 1},
		{"missing delta", testBlock{total: 100}, 164, 0},
		{"text totals", testBlock{total: "n/a", delta: 0}, 164, 1},
		{"inf totals", testBlock{total: "Infinity", delta: 0}, 164, 1},
		{"inf delta", testBlock{total: 160, delta: "-inf"}, 164, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			second := c.second
			second.first, second.last = "John", "Smith"
			sheet := rotaSheet("April", 30,
				testBlock{first: "Jane", last: "Doe", total: 160, delta: -4},
				second,
			)

			res := ExtractSheet(sheet, april(), testRotaConfig())
			if res.Contracted != c.contracted {
				t.Errorf("contracted %v, expected %v", res.Contracted, c.contracted)
			}
			if w := res.Diagnostics.Warnings(); w != c.warnings {
				t.Errorf("%d warnings, expected %d: %v", w, c.warnings, res.Diagnostics)
			}
		})
	}
}

func TestExtractSheetPastMonthEnd(t *testing.T) {
	sheet := rotaSheet("April", 31, testBlock{
		first: "Jane", last: "Doe",
		shifts: map[int]any{30: "E", 31: "E"},
	})

	res := ExtractSheet(sheet, april(), testRotaConfig())
	if len(res.Shifts) != 1 || !res.Shifts[0].Date.Equal(date(2026, 4, 30)) {
		t.Errorf("shifts %+v", res.Shifts)
	}
	if res.Diagnostics.Warnings() != 1 {
		t.Errorf("expected a warning for day 31, got %v", res.Diagnostics)
	}
}

func TestExtractSheetNoDayColumns(t *testing.T) {
	res := ExtractSheet(NewSheet("April", [][]any{{"Name", "ASI"}}), april(), testRotaConfig())
	if len(res.Diagnostics.OfKind(KindStructural)) != 1 {
		t.Errorf("expected a structural diagnostic, got %v", res.Diagnostics)
	}
}

func TestImportRota(t *testing.T) {
	book := NewBook(
		NewSheet("Notes", [][]any{{"Rota 2026"}}),
		rotaSheet("May", 31,
			testBlock{first: "Jane", last: "Doe", shifts: map[int]any{1: "S", 31: "D"}, total: 168, delta: 0},
			testBlock{first: "Zed", last: "Zero"},
		),
		rotaSheet("April", 30,
			testBlock{first: "Jane", last: "Doe", shifts: map[int]any{1: "A"}, total: 160, delta: -4},
			testBlock{first: "Adam", last: "Ash", shifts: map[int]any{2: "*", 3: "Q"}},
		),
	)

	cfg := testRotaConfig()
	cfg.Workers = 2
	r, err := ImportRota(context.Background(), book, cfg)
	if err != nil {
		t.Fatal(err)
	}

	wantHours := []MonthlyHours{
		{Year: 2026, Month: time.April, Contracted: 164},
		{Year: 2026, Month: time.May, Contracted: 168},
	}
	if diff := cmp.Diff(wantHours, r.Hours); diff != "" {
		t.Errorf("hours (-want +got):\n%s", diff)
	}

	adam := EmployeeKey{First: "Adam", Last: "Ash"}
	jane := EmployeeKey{First: "Jane", Last: "Doe"}
	zed := EmployeeKey{First: "Zed", Last: "Zero"}
	wantEmployees := []EmployeeShifts{
		{Key: adam, Shifts: []Shift{
			{Employee: adam, Date: date(2026, 4, 2), Code: "RDO"},
		}},
		{Key: jane, Shifts: []Shift{
			{Employee: jane, Date: date(2026, 4, 1), Code: "A"},
			{Employee: jane, Date: date(2026, 5, 1), Code: "S"},
			{Employee: jane, Date: date(2026, 5, 31), Code: "D"},
		}},
		{Key: zed},
	}
	if diff := cmp.Diff(wantEmployees, r.Employees); diff != "" {
		t.Errorf("employees (-want +got):\n%s", diff)
	}

	if r.Shifts() != 4 {
		t.Errorf("%d shifts, expected 4", r.Shifts())
	}
	if diff := cmp.Diff([]string{"A", "D", "RDO", "S"}, r.Codes()); diff != "" {
		t.Errorf("codes (-want +got):\n%s", diff)
	}

	if n := len(r.Diagnostics.OfKind(KindStructural)); n != 10 {
		t.Errorf("%d structural diagnostics, expected one per missing month", n)
	}
	if len(r.Sheets) != 12 || !r.Sheets[0].Found || !r.Sheets[1].Found || r.Sheets[2].Found {
		t.Errorf("sheet results out of calendar order")
	}
	if r.Sheets[0].Diagnostics.Warnings() != 1 {
		t.Errorf("April diagnostics %v", r.Sheets[0].Diagnostics)
	}
}

func TestImportRotaDeterministic(t *testing.T) {
	var sheets []*Sheet
	for i, m := range RotaMonths(2026) {
		sheets = append(sheets, rotaSheet(m.Sheet, 28,
			testBlock{first: "Jane", last: "Doe", shifts: map[int]any{1: "A", 2 + i: "L"}, total: 160, delta: float64(i)},
			testBlock{first: "Adam", last: "Ash", shifts: map[int]any{3: "E"}, total: 160 - float64(i), delta: 0},
		))
	}
	book := NewBook(sheets...)

	first, err := ImportRota(context.Background(), book, testRotaConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := ImportRota(context.Background(), book, testRotaConfig())
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first.Employees, again.Employees); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
		if diff := cmp.Diff(first.Hours, again.Hours); diff != "" {
			t.Fatalf("run %d hours differ (-first +again):\n%s", i, diff)
		}
	}
}

func TestImportRotaNoSheets(t *testing.T) {
	if _, err := ImportRota(context.Background(), NewBook(), testRotaConfig()); !errors.Is(err, ErrNoSheets) {
		t.Errorf("got %v, expected ErrNoSheets", err)
	}
}
