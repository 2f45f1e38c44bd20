package hrimport

import (
	"context"
	"fmt"
	"log/slog"
)

type Severity int

const (
	Info Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "info"
}

// Kind classifies why a diagnostic was raised.
type Kind int

const (
	// KindSkip marks content that legitimately carries no fact, such as a
	// legend block. Blank cells are skipped without a diagnostic.
	KindSkip Kind = iota
	KindUnrecognized
	KindInconsistency
	KindStructural
)

func (k Kind) String() string {
	switch k {
	case KindSkip:
		return "skip"
	case KindUnrecognized:
		return "unrecognized"
	case KindInconsistency:
		return "inconsistency"
	case KindStructural:
		return "structural"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Sheet    string
	Entity   string
	Message  string
}

func (d Diagnostic) String() string {
	switch {
	case d.Entity != "" && d.Sheet != "":
		return fmt.Sprintf("%s: %s: %s: %s", d.Severity, d.Sheet, d.Entity, d.Message)
	case d.Entity != "":
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Entity, d.Message)
	case d.Sheet != "":
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Sheet, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Diagnostics is an ordered list of findings collected during a run.
type Diagnostics []Diagnostic

func (ds *Diagnostics) warn(kind Kind, sheet, entity, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Severity: Warning,
		Kind:     kind,
		Sheet:    sheet,
		Entity:   entity,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (ds *Diagnostics) info(kind Kind, sheet, entity, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Severity: Info,
		Kind:     kind,
		Sheet:    sheet,
		Entity:   entity,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnings returns the number of warning level diagnostics.
func (ds Diagnostics) Warnings() int {
	n := 0
	for _, d := range ds {
		if d.Severity == Warning {
			n++
		}
	}
	return n
}

// OfKind returns the diagnostics of the given kind, in order.
func (ds Diagnostics) OfKind(k Kind) Diagnostics {
	var res Diagnostics
	for _, d := range ds {
		if d.Kind == k {
			res = append(res, d)
		}
	}
	return res
}

// Log writes every diagnostic to the logger.
func (ds Diagnostics) Log(l *slog.Logger) {
	for _, d := range ds {
		level := slog.LevelInfo
		if d.Severity == Warning {
			level = slog.LevelWarn
		}
		l.Log(context.Background(), level, d.Message, "kind", d.Kind.String(), "sheet", d.Sheet, "entity", d.Entity)
	}
}
