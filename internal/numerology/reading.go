package numerology

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhsu-tw/tianji/internal/dates"
)

// Reading bundles every number derived from a single birthdate. Name-based
// numbers are filled only when a transliterated name was supplied.
type Reading struct {
	Core         int      `json:"core"`
	Birthday     int      `json:"birthday"`
	Maturity     int      `json:"maturity"`
	Challenge    int      `json:"challenge"`
	Karma        int      `json:"karma,omitempty"`
	PersonalYear int      `json:"personal_year"`
	Grid         [10]int  `json:"-"`
	GridText     string   `json:"grid"`
	Lines        []string `json:"lines,omitempty"`

	Soul        int `json:"soul,omitempty"`
	Expression  int `json:"expression,omitempty"`
	Personality int `json:"personality,omitempty"`
}

// Compute derives the full reading for a birthdate. The reference time fixes
// the personal-year calendar year.
func Compute(d dates.Date, now time.Time) Reading {
	counts := GridCounts(d)
	r := Reading{
		Core:         CoreNumber(d),
		Birthday:     BirthdayNumber(d),
		Maturity:     MaturityNumber(d),
		Challenge:    ChallengeNumber(d),
		Karma:        KarmaNumber(d),
		PersonalYear: PersonalYearNumber(d, now.Year()),
		Grid:         counts,
		GridText:     RenderGrid(counts),
		Lines:        PresentLines(counts),
	}
	return r
}

// WithName fills in the letter-based numbers from a transliterated name.
func (r Reading) WithName(name string) Reading {
	r.Soul = SoulNumber(name)
	r.Expression = ExpressionNumber(name)
	r.Personality = PersonalityNumber(name)
	return r
}

// Summary renders the reading as prompt context for interpretation calls.
func (r Reading) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "主命數: %d\n", r.Core)
	fmt.Fprintf(&b, "生日數: %d\n", r.Birthday)
	fmt.Fprintf(&b, "成熟數: %d\n", r.Maturity)
	fmt.Fprintf(&b, "挑戰數: %d\n", r.Challenge)
	if r.Karma != 0 {
		fmt.Fprintf(&b, "業力數: %d\n", r.Karma)
	}
	fmt.Fprintf(&b, "流年數: %d\n", r.PersonalYear)
	if r.Soul != 0 {
		fmt.Fprintf(&b, "靈魂數: %d 表達數: %d 人格數: %d\n", r.Soul, r.Expression, r.Personality)
	}
	if len(r.Lines) > 0 {
		fmt.Fprintf(&b, "連線: %s\n", strings.Join(r.Lines, " "))
	}
	fmt.Fprintf(&b, "九宮格:\n%s", r.GridText)
	return b.String()
}
