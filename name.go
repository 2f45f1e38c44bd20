package hrimport

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// EmployeeKey is the natural key used to resolve an employee at the
// destination.
type EmployeeKey struct {
	First string
	Last  string
}

func (k EmployeeKey) String() string {
	if k.Last == "" {
		return k.First
	}
	return k.First + " " + k.Last
}

func (k EmployeeKey) less(o EmployeeKey) bool {
	if k.First != o.First {
		return k.First < o.First
	}
	return k.Last < o.Last
}

// CleanName normalizes a name cell. NFKC folds non-breaking spaces and
// other compatibility forms, and runs of whitespace collapse to one space.
func CleanName(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// SplitName splits a full name on the first space; everything after the
// first word is the last name.
func SplitName(full string) EmployeeKey {
	first, last, _ := strings.Cut(CleanName(full), " ")
	return EmployeeKey{First: first, Last: last}
}
