// Package dates normalizes user-supplied birth and calendar dates to a single
// canonical YYYY/MM/DD form. Inputs arrive in whatever shape the user typed:
// slash, dash or dot separated, CJK labeled (1990年7月12日), or Republic-era
// prefixed (民國79年7月12日). Labeled components always win over positional
// guessing.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// rocOffset converts a Republic of China calendar year to a Gregorian year.
const rocOffset = 1911

// Date is a parsed calendar date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// String renders the canonical YYYY/MM/DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Valid reports whether the date exists on the Gregorian calendar.
func (d Date) Valid() bool {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && int(t.Month()) == d.Month && t.Day() == d.Day
}

var (
	rocPrefixRe = regexp.MustCompile(`^(民國|民国)\s*`)
	labeledRe   = regexp.MustCompile(`(\d{1,4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日?`)
	sepRe       = regexp.MustCompile(`[./\-]`)
)

// Parse extracts a Date from free-form text.
func Parse(input string) (Date, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}

	roc := false
	if loc := rocPrefixRe.FindString(s); loc != "" {
		roc = true
		s = strings.TrimSpace(strings.TrimPrefix(s, loc))
	}

	// Labeled components (年/月/日) are unambiguous; prefer them.
	if m := labeledRe.FindStringSubmatch(s); m != nil {
		return buildDate(m[1], m[2], m[3], roc)
	}

	// Positional: split on slash, dash or dot.
	parts := sepRe.Split(s, -1)
	fields := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			fields = append(fields, p)
		}
	}
	if len(fields) == 3 {
		return buildDate(fields[0], fields[1], fields[2], roc)
	}

	// Bare digit run like 19900712.
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) == 8 {
		return buildDate(digits[:4], digits[4:6], digits[6:8], roc)
	}

	return Date{}, fmt.Errorf("unrecognized date format: %q", input)
}

// Normalize parses input and returns the canonical YYYY/MM/DD form.
func Normalize(input string) (string, error) {
	d, err := Parse(input)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

func buildDate(yearS, monthS, dayS string, roc bool) (Date, error) {
	year, err := strconv.Atoi(yearS)
	if err != nil {
		return Date{}, fmt.Errorf("invalid year %q", yearS)
	}
	month, err := strconv.Atoi(monthS)
	if err != nil {
		return Date{}, fmt.Errorf("invalid month %q", monthS)
	}
	day, err := strconv.Atoi(dayS)
	if err != nil {
		return Date{}, fmt.Errorf("invalid day %q", dayS)
	}

	// A Republic-era year is offset from the Gregorian calendar.
	// Years below the offset without an explicit prefix are treated the
	// same way: no Gregorian birth year is ever that small.
	if roc || year < 1000 {
		year += rocOffset
	}

	d := Date{Year: year, Month: month, Day: day}
	if !d.Valid() {
		return Date{}, fmt.Errorf("date out of range: %s", d)
	}
	return d, nil
}
