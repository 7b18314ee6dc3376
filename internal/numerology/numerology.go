// Package numerology implements the deterministic arithmetic behind the
// life-number module: digit reduction, the derived numbers (core, birthday,
// personal year, maturity, challenge, karma), the nine-grid, and the
// letter-based numbers computed from a transliterated name.
package numerology

import (
	"fmt"
	"strings"

	"github.com/jhsu-tw/tianji/internal/dates"
)

// challengeSentinel replaces a challenge difference that reduces to zero.
// Zero is never a valid challenge number; the tradition reads it as the
// completion number instead.
const challengeSentinel = 9

// karmaNumbers are the only totals read as karmic debt.
var karmaNumbers = map[int]bool{13: true, 14: true, 16: true, 19: true}

// Reduce sums digits repeatedly until a single digit remains.
func Reduce(n int) int {
	if n < 0 {
		n = -n
	}
	for n > 9 {
		n = digitSum(n)
	}
	return n
}

func digitSum(n int) int {
	sum := 0
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}

// allDigits returns the digits of the date in YYYYMMDD order.
func allDigits(d dates.Date) []int {
	s := fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
	digits := make([]int, 0, len(s))
	for _, r := range s {
		digits = append(digits, int(r-'0'))
	}
	return digits
}

// CoreNumber is the sum of every digit of the birthdate reduced to 1-9.
func CoreNumber(d dates.Date) int {
	total := 0
	for _, n := range allDigits(d) {
		total += n
	}
	return Reduce(total)
}

// BirthdayNumber is the day of the month reduced to 1-9.
func BirthdayNumber(d dates.Date) int {
	return Reduce(d.Day)
}

// PersonalYearNumber combines the digits of the given calendar year with the
// birth month and day, reduced to 1-9.
func PersonalYearNumber(d dates.Date, year int) int {
	return Reduce(digitSum(year) + d.Month + d.Day)
}

// MaturityNumber is core number plus birthday number, reduced.
func MaturityNumber(d dates.Date) int {
	return Reduce(CoreNumber(d) + BirthdayNumber(d))
}

// ChallengeNumber derives a number from the differences between the reduced
// month, day and year digits:
//
//	A = reduce(month) - reduce(day)
//	B = reduce(day) - reduce(year)
//	challenge = |A - B|, reduced
//
// A result of zero maps to the completion sentinel 9, never to literal zero.
func ChallengeNumber(d dates.Date) int {
	yearR := Reduce(digitSum(d.Year))
	monthR := Reduce(d.Month)
	dayR := Reduce(d.Day)

	a := monthR - dayR
	b := dayR - yearR
	challenge := a - b
	if challenge < 0 {
		challenge = -challenge
	}
	if challenge == 0 {
		return challengeSentinel
	}
	return Reduce(challenge)
}

// KarmaNumber checks the birth year digit total first, then the full date
// digit total, against the karmic set {13, 14, 16, 19}. Returns 0 when
// neither total is karmic.
func KarmaNumber(d dates.Date) int {
	yearSum := digitSum(d.Year)
	if karmaNumbers[yearSum] {
		return yearSum
	}
	total := 0
	for _, n := range allDigits(d) {
		total += n
	}
	if karmaNumbers[total] {
		return total
	}
	return 0
}

// GridCounts tallies how often each digit 1-9 appears in the birthdate.
// Index 0 is unused.
func GridCounts(d dates.Date) [10]int {
	var counts [10]int
	for _, n := range allDigits(d) {
		if n >= 1 && n <= 9 {
			counts[n]++
		}
	}
	return counts
}

// gridLines are the eight classic nine-grid lines.
var gridLines = []struct {
	key    string
	digits [3]int
}{
	{"123", [3]int{1, 2, 3}},
	{"456", [3]int{4, 5, 6}},
	{"789", [3]int{7, 8, 9}},
	{"147", [3]int{1, 4, 7}},
	{"258", [3]int{2, 5, 8}},
	{"369", [3]int{3, 6, 9}},
	{"159", [3]int{1, 5, 9}},
	{"357", [3]int{3, 5, 7}},
}

// PresentLines returns the keys of every grid line whose three digits all
// appear at least once.
func PresentLines(counts [10]int) []string {
	var present []string
	for _, line := range gridLines {
		if counts[line.digits[0]] > 0 && counts[line.digits[1]] > 0 && counts[line.digits[2]] > 0 {
			present = append(present, line.key)
		}
	}
	return present
}

// RenderGrid draws the nine-grid with per-digit occurrence counts.
// Absent digits render as a middle dot.
func RenderGrid(counts [10]int) string {
	cell := func(n int) string {
		if counts[n] > 0 {
			return fmt.Sprintf("%d", counts[n])
		}
		return "·"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", cell(1), cell(2), cell(3))
	fmt.Fprintf(&b, "%s %s %s\n", cell(4), cell(5), cell(6))
	fmt.Fprintf(&b, "%s %s %s", cell(7), cell(8), cell(9))
	return b.String()
}

// letterValues maps Latin letters to their numerological value.
var letterValues = map[rune]int{
	'A': 1, 'J': 1, 'S': 1,
	'B': 2, 'K': 2, 'T': 2,
	'C': 3, 'L': 3, 'U': 3,
	'D': 4, 'M': 4, 'V': 4,
	'E': 5, 'N': 5, 'W': 5,
	'F': 6, 'O': 6, 'X': 6,
	'G': 7, 'P': 7, 'Y': 7,
	'H': 8, 'Q': 8, 'Z': 8,
	'I': 9, 'R': 9,
}

// vowelValues maps the five vowels to their soul-number value.
var vowelValues = map[rune]int{'A': 1, 'E': 5, 'I': 9, 'O': 6, 'U': 3}

// SoulNumber sums the vowels of a transliterated name, reduced to 1-9.
func SoulNumber(name string) int {
	total := 0
	for _, r := range strings.ToUpper(name) {
		total += vowelValues[r]
	}
	return Reduce(total)
}

// ExpressionNumber sums every letter of a transliterated name, reduced.
func ExpressionNumber(name string) int {
	total := 0
	for _, r := range strings.ToUpper(name) {
		total += letterValues[r]
	}
	return Reduce(total)
}

// PersonalityNumber shares the expression computation over the full name.
func PersonalityNumber(name string) int {
	return ExpressionNumber(name)
}
