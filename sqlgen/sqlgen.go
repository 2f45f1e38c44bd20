// Package sqlgen renders classified spreadsheet records as idempotent
// PostgreSQL migration scripts. Rendering is pure: the same input always
// produces the same bytes.
package sqlgen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"kastelo.dev/hrimport"
)

const dateFormat = "2006-01-02"

type Options struct {
	// Source names the spreadsheet in the header comment.
	Source string
	// Generated is printed in the header when set. Leave it zero for
	// output that can be diffed between runs.
	Generated time.Time
}

func (o Options) header(b *bytes.Buffer, title string) {
	fmt.Fprintf(b, "-- %s\n", title)
	if o.Source != "" {
		fmt.Fprintf(b, "-- Source: %s\n", oneLine(o.Source))
	}
	if !o.Generated.IsZero() {
		fmt.Fprintf(b, "-- Generated: %s\n", o.Generated.Format(dateFormat))
	}
	b.WriteString("\n")
}

// AppraisalSQL renders appraisal milestones. Each review becomes an
// INSERT ... SELECT that resolves the employee by first and last name, so
// a review for an unknown employee inserts nothing.
func AppraisalSQL(imp *hrimport.AppraisalImport, opts Options) []byte {
	var b bytes.Buffer
	opts.header(&b, "Appraisal data import from spreadsheet")

	interval := imp.IntervalMonths
	if interval == 0 {
		interval = hrimport.DefaultInterval
	}
	fmt.Fprintf(&b, "-- Ensure all employees have appraisal_frequency_months = %d\n", interval)
	fmt.Fprintf(&b, "UPDATE employees SET appraisal_frequency_months = %d WHERE appraisal_frequency_months IS NULL;\n\n", interval)

	for _, emp := range imp.Employees {
		if len(emp.Reviews) == 0 {
			fmt.Fprintf(&b, "-- %s: No review records to import\n\n", oneLine(emp.Name))
			continue
		}

		fmt.Fprintf(&b, "-- %s (started %s)\n", oneLine(emp.Name), emp.Start.Format("02.01.2006"))
		for _, r := range emp.Reviews {
			completed := "NULL"
			if !r.Completed.IsZero() {
				completed = pq.QuoteLiteral(r.Completed.Format(dateFormat))
			}
			b.WriteString("INSERT INTO appraisal_milestones (employee_id, review_number, due_date, completed_date)\n")
			fmt.Fprintf(&b, "SELECT e.id, %d, %s, %s\n", r.Number, pq.QuoteLiteral(r.Due.Format(dateFormat)), completed)
			b.WriteString("FROM employees e\n")
			fmt.Fprintf(&b, "WHERE e.first_name = %s AND e.last_name = %s\n", pq.QuoteLiteral(emp.Key.First), pq.QuoteLiteral(emp.Key.Last))
			b.WriteString("ON CONFLICT (employee_id, review_number) DO UPDATE SET\n")
			b.WriteString("  due_date = EXCLUDED.due_date,\n")
			b.WriteString("  completed_date = EXCLUDED.completed_date,\n")
			b.WriteString("  updated_at = NOW();\n")
			fmt.Fprintf(&b, "-- ^ Review #%d (%s)\n\n", r.Number, r.Status())
		}
	}

	b.WriteString("-- Verify: SELECT e.first_name, e.last_name, am.review_number, am.due_date, am.completed_date\n")
	b.WriteString("-- FROM appraisal_milestones am JOIN employees e ON e.id = am.employee_id ORDER BY e.last_name, am.review_number;\n")
	return b.Bytes()
}

// RotaSQL renders monthly contracted hours and shift assignments. Shift
// assignments go in a single DO block that looks up every shift type once
// and each employee once, skipping employees the destination lacks.
func RotaSQL(r *hrimport.Roster, opts Options) []byte {
	var b bytes.Buffer
	opts.header(&b, "Rota import from spreadsheet")
	b.WriteString("-- Run after the shift_types and shifts tables exist\n\n")

	if len(r.Hours) > 0 {
		b.WriteString("-- Monthly contracted hours\n")
		for _, h := range r.Hours {
			hours := formatHours(h.Contracted)
			fmt.Fprintf(&b, "INSERT INTO rota_monthly_hours (year, month, contracted_hours) VALUES (%d, %d, %s) ON CONFLICT (year, month) DO UPDATE SET contracted_hours = %s;\n",
				h.Year, int(h.Month), hours, hours)
		}
		b.WriteString("\n")
	}

	if len(r.Employees) == 0 {
		return b.Bytes()
	}

	codes := r.Codes()

	b.WriteString("-- Shift assignments\n")
	b.WriteString("DO $$\n")
	b.WriteString("DECLARE\n")
	b.WriteString("  v_emp UUID;\n")
	for _, code := range codes {
		fmt.Fprintf(&b, "  %s UUID;\n", codeVar(code))
	}
	b.WriteString("BEGIN\n\n")

	if len(codes) > 0 {
		b.WriteString("  -- Shift type lookups\n")
		for _, code := range codes {
			fmt.Fprintf(&b, "  SELECT id INTO %s FROM shift_types WHERE code = %s;\n", codeVar(code), pq.QuoteLiteral(code))
		}
		b.WriteString("\n")
	}

	for _, emp := range r.Employees {
		if len(emp.Shifts) == 0 {
			fmt.Fprintf(&b, "  -- %s: no shifts to import\n\n", oneLine(emp.Key.String()))
			continue
		}
		fmt.Fprintf(&b, "  -- %s\n", oneLine(emp.Key.String()))
		fmt.Fprintf(&b, "  SELECT id INTO v_emp FROM employees WHERE first_name = %s AND last_name = %s LIMIT 1;\n",
			pq.QuoteLiteral(emp.Key.First), pq.QuoteLiteral(emp.Key.Last))
		b.WriteString("  IF v_emp IS NOT NULL THEN\n")
		for _, s := range emp.Shifts {
			v := codeVar(s.Code)
			fmt.Fprintf(&b, "    INSERT INTO shifts (employee_id, date, shift_type_id) VALUES (v_emp, %s, %s) ON CONFLICT (employee_id, date) DO UPDATE SET shift_type_id = %s, updated_at = NOW();\n",
				pq.QuoteLiteral(s.Date.Format(dateFormat)), v, v)
		}
		b.WriteString("  END IF;\n\n")
	}

	b.WriteString("END $$;\n")
	return b.Bytes()
}

// codeVar names the PL/pgSQL variable holding a shift type id.
func codeVar(code string) string {
	var b strings.Builder
	b.WriteString("v_st_")
	for _, r := range strings.ToLower(code) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "_%x", r)
		}
	}
	return b.String()
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// oneLine keeps names from breaking out of a SQL line comment.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
