// internal/app/system/normalize/normalize.go
package normalize

import (
	"regexp"
	"strings"
)

// studentIDPattern is the hard format contract for student identifiers:
// the prefix STU followed by exactly three digits.
var studentIDPattern = regexp.MustCompile(`^STU\d{3}$`)

// StudentID trims and uppercases a raw student identifier. Input is
// case-insensitive; storage and comparison always use the normalized form.
func StudentID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// StudentIDs normalizes a slice of student identifiers.
func StudentIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, StudentID(id))
	}
	return out
}

// IsValidStudentID reports whether s is a well-formed student identifier
// after normalization.
func IsValidStudentID(s string) bool {
	return studentIDPattern.MatchString(StudentID(s))
}

// Name trims whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims whitespace from a query or form value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Year trims a year-of-study value.
func Year(s string) string {
	return strings.TrimSpace(s)
}

// IsValidYear reports whether s is a valid year of study ("1".."4").
func IsValidYear(s string) bool {
	switch Year(s) {
	case "1", "2", "3", "4":
		return true
	}
	return false
}
