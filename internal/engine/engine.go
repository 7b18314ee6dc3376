// Package engine drives the per-session conversation state machines for the
// four divination modules. Each module advances a session by exactly one
// transition per chat call: at most one external call (extraction,
// computation, or interpretation), one response, one state assignment.
// Upstream failures leave the record untouched so the caller can skip
// persisting and the user can retry the same transition.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jhsu-tw/tianji/internal/almanac"
	"github.com/jhsu-tw/tianji/internal/extract"
	"github.com/jhsu-tw/tianji/internal/providers"
	"github.com/jhsu-tw/tianji/internal/session"
)

// ErrInterpretUnavailable marks an LLM or storage failure mid-transition.
// The endpoint layer maps it to a 503 response.
var ErrInterpretUnavailable = extract.ErrUnavailable

// ErrInvalidTone is returned by Init when the free tier receives a tone
// outside its configured set.
var ErrInvalidTone = errors.New("invalid tone")

// States shared by every module's state machine.
const (
	StateWaitingBasicInfo = "waiting_basic_info"
	StateCompleted        = "completed"
)

// MemoryConfig tunes the paid-tier memory system.
type MemoryConfig struct {
	// MaxTurns is the user-turn count at which memories are cleared.
	MaxTurns int
	// ContextSize is how many recent memories feed continued dialogue.
	ContextSize int
}

// DefaultMemoryConfig matches the production defaults.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{MaxTurns: 50, ContextSize: 5}
}

// Deps carries everything a module needs to advance a session.
type Deps struct {
	LLM     providers.LLMClient
	Almanac almanac.MonthStore
	Rand    *rand.Rand
	Now     func() time.Time
	Logger  *slog.Logger
	Memory  MemoryConfig
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func logTransition(d Deps, module, from, to string, err error) {
	switch {
	case err != nil:
		d.logger().Debug("step failed", "module", module, "state", from, "error", err)
	case from != to:
		d.logger().Debug("state transition", "module", module, "from", from, "to", to)
	}
}

// Input is one chat call's payload. Category and SelectedDate are the
// auspicious module's direct-selection fields; other modules ignore them.
type Input struct {
	Message      string
	Category     string
	SelectedDate string
}

// Reply is the outcome of one transition.
type Reply struct {
	Text          string
	RequiresInput bool
	// Fields carries module-specific result values surfaced to the client
	// (angel_number, pattern, divination_result, category, ...).
	Fields map[string]any
}

// Module is one divination flow's state machine.
type Module interface {
	// Name returns the module identifier used in store keys and routes.
	Name() string

	// Init validates the tone for the given tier and stamps the fresh
	// record with tone and initial state. It returns the greeting text.
	// Free-tier tone validation is strict (ErrInvalidTone); paid tones
	// outside the configured set fall back to the module default.
	Init(rec *session.Record, tone string) (string, error)

	// Step advances rec by one transition. On a nil error the record has
	// been mutated (history appended, possibly state/topic fields) and
	// must be persisted. On error the record is unchanged and must NOT
	// be persisted.
	Step(ctx context.Context, rec *session.Record, in Input) (*Reply, error)
}

// Modules builds all four modules against one dependency set.
func Modules(deps Deps) map[string]Module {
	return map[string]Module{
		session.ModuleLifenum:    NewLifenum(deps),
		session.ModuleAngelnum:   NewAngelnum(deps),
		session.ModuleDivination: NewDivination(deps),
		session.ModuleAuspicious: NewAuspicious(deps),
	}
}
