// internal/form/rules.go
//
// Intake – Forms subsystem: atomic field rules.
//
// Context
//   Section validators compose these predicates.  Each one looks at a single
//   already-trimmed string and answers yes or no; messages live with the
//   sections because the same rule reads differently per field.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// ErrDateFormat is returned by ParseDate for anything that is not YYYY-MM-DD.
var ErrDateFormat = errors.New("date must be YYYY-MM-DD")

// Prefix match: trailing text after the TLD is tolerated.
var emailShape = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)

var urlSchemes = []string{"http://", "https://", "ftp://", "ftps://"}

// Required reports whether v is non-empty after trimming.
func Required(v string) bool { return strings.TrimSpace(v) != "" }

// NumericIfPresent accepts the empty string or ASCII digits only.  Signs,
// decimal points, and inner whitespace are rejected.
func NumericIfPresent(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return true
}

// EmailShape is a permissive local@domain.tld check, not RFC 5322.
func EmailShape(v string) bool { return emailShape.MatchString(v) }

// URLShape accepts http, https, ftp, and ftps URLs.  The scheme is matched
// case-insensitively; nothing after it is inspected.
func URLShape(v string) bool {
	lower := strings.ToLower(v)
	for _, s := range urlSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// ParseDate parses v as YYYY-MM-DD in UTC.
func ParseDate(v string) (time.Time, error) {
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	return t, nil
}

// Age returns the civil age in whole years at today.  One year is taken off
// when today's month/day falls before the birthday's month/day.
func Age(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() ||
		(today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// Extension returns the lowercase text after the last “.”, or “” when the
// name has no dot at all.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// AllowedExtension reports whether name's extension is in allowed.  Entries
// in allowed are compared case-insensitively and without a leading dot.
func AllowedExtension(name string, allowed []string) bool {
	ext := Extension(name)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == ext {
			return true
		}
	}
	return false
}
