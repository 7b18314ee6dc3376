// Package jiao models the throwing of divination blocks (擲筊) and the
// three possible outcomes.
package jiao

import "math/rand"

// Result is one of the three block outcomes.
type Result string

const (
	// Holy (聖筊) is one block up, one down: the deity approves.
	Holy Result = "holy"
	// Laughing (笑筊) is both blocks up: ask again or the timing is off.
	Laughing Result = "laughing"
	// Negative (陰筊) is both blocks down: do not proceed.
	Negative Result = "negative"
)

// Info describes an outcome for display.
type Info struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Meaning     string `json:"meaning"`
	Description string `json:"description"`
}

var infos = map[Result]Info{
	Holy: {
		Name:        "聖筊",
		Symbol:      "⚪⚪",
		Meaning:     "神明同意,可行",
		Description: "一正一反,陰陽和合,神明應允",
	},
	Laughing: {
		Name:        "笑筊",
		Symbol:      "⚪⚫",
		Meaning:     "再問清楚,或時機未到",
		Description: "兩筊皆正面,神明含笑,需再思量",
	},
	Negative: {
		Name:        "陰筊",
		Symbol:      "⚫⚫",
		Meaning:     "不宜行動,需重新考慮",
		Description: "兩筊皆反面,神明不允,應當慎行",
	},
}

// promptMeanings phrase each outcome for interpretation prompts.
var promptMeanings = map[Result]string{
	Holy:     "聖筊(肯定、允許、順勢)",
	Laughing: "笑筊(暫不回答、調整、時機未到)",
	Negative: "陰筊(否定、提醒、改變方向)",
}

var all = []Result{Holy, Laughing, Negative}

// Draw throws the blocks using the supplied random source.
func Draw(r *rand.Rand) Result {
	return all[r.Intn(len(all))]
}

// Valid reports whether r is one of the three outcomes.
func (r Result) Valid() bool {
	_, ok := infos[r]
	return ok
}

// Info returns display metadata for the outcome.
func (r Result) Info() Info {
	return infos[r]
}

// PromptMeaning returns the outcome phrased for interpretation prompts.
func (r Result) PromptMeaning() string {
	return promptMeanings[r]
}
