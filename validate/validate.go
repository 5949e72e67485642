// Package validate holds the field-level validation contracts for employee
// records. Validation runs at review/persist time, not at collection time:
// a user can answer freely and be corrected later.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hrtools/onboardbot/types"
)

var (
	nonDigit     = regexp.MustCompile(`\D`)
	phonePattern = regexp.MustCompile(`^\d{10,15}$`)
	unsafeChars  = regexp.MustCompile(`[^\w\s\-]`)
)

// Phone reports whether s contains 10 to 15 digits after stripping
// everything that is not a digit.
func Phone(s string) bool {
	digits := nonDigit.ReplaceAllString(s, "")
	return phonePattern.MatchString(digits)
}

// Salary parses a salary answer, tolerating thousands separators.
func Salary(s string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Sanitize strips characters outside letters, digits, whitespace and hyphen.
func Sanitize(s string) string {
	return strings.TrimSpace(unsafeChars.ReplaceAllString(s, ""))
}

// Problem describes one failed field check on a record.
type Problem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Record aggregates the per-field checks for a single record.
func Record(rec types.EmployeeRecord) []Problem {
	var problems []Problem
	if rec.Name == "" {
		problems = append(problems, Problem{Field: "name", Reason: "missing name"})
	} else if rec.Name == types.SentinelExtractionError {
		problems = append(problems, Problem{Field: "name", Reason: "extraction failed for this row"})
	}
	if !Phone(rec.Phone) {
		problems = append(problems, Problem{Field: "phone", Reason: "phone must contain 10-15 digits"})
	}
	if rec.Designation == "" {
		problems = append(problems, Problem{Field: "designation", Reason: "missing designation"})
	}
	if rec.Salary <= 0 {
		problems = append(problems, Problem{Field: "salary", Reason: "salary must be a positive number"})
	}
	return problems
}

// Batch runs Record over every entry, prefixing each problem with its
// one-based row number.
func Batch(records []types.EmployeeRecord) []Problem {
	var problems []Problem
	for i, rec := range records {
		for _, p := range Record(rec) {
			p.Reason = fmt.Sprintf("entry %d: %s", i+1, p.Reason)
			problems = append(problems, p)
		}
	}
	return problems
}

// FormatProblems renders problems as a bullet list for an assistant message.
func FormatProblems(problems []Problem) string {
	var sb strings.Builder
	for _, p := range problems {
		fmt.Fprintf(&sb, "- %s (%s)\n", p.Reason, p.Field)
	}
	return strings.TrimRight(sb.String(), "\n")
}
