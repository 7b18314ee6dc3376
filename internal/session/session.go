// Package session defines the persisted conversation state and the TTL
// key-value stores that hold it.
package session

import (
	"time"
)

// Module identifiers.
const (
	ModuleLifenum    = "lifenum"
	ModuleAngelnum   = "angelnum"
	ModuleDivination = "divination"
	ModuleAuspicious = "auspicious"
)

// Tier identifiers.
const (
	TierFree = "free"
	TierPaid = "paid"
)

// Modules lists all module identifiers.
func Modules() []string {
	return []string{ModuleLifenum, ModuleAngelnum, ModuleDivination, ModuleAuspicious}
}

// ValidTier reports whether t is a known tier.
func ValidTier(t string) bool {
	return t == TierFree || t == TierPaid
}

// Message is one turn of the conversation transcript.
type Message struct {
	Role    string `json:"role"` // "user", "assistant"
	Content string `json:"content"`
}

// Memory kinds.
const (
	MemoryModuleAnalysis = "module_analysis"
	MemoryCoreQA         = "core_qa"
)

// Memory is a condensed note kept across turns for paid sessions.
type Memory struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	// Topic identifies the analyzed life-number topic for module_analysis
	// notes, or the question category for core_qa notes.
	Topic     string    `json:"topic,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Record is the full persisted state of one session.
type Record struct {
	ID     string `json:"id"`
	Module string `json:"module"`
	Tier   string `json:"tier"`
	State  string `json:"state"`
	Tone   string `json:"tone"`

	// Identity, written once after successful extraction.
	Name      string `json:"name,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Birthdate string `json:"birthdate,omitempty"` // YYYY/MM/DD
	// EnglishName feeds the letter-based numbers on the paid tier.
	EnglishName string `json:"english_name,omitempty"`

	// Topic fields, committed only after a successful interpretation.
	AngelNumber      string `json:"angel_number,omitempty"`
	Question         string `json:"question,omitempty"`
	DrawResult       string `json:"draw_result,omitempty"`
	Category         string `json:"category,omitempty"`
	SelectedDate     string `json:"selected_date,omitempty"`
	SpecificQuestion string `json:"specific_question,omitempty"`
	LifeModule       string `json:"life_module,omitempty"`
	// PendingModule holds a suggested life-number topic awaiting the user's
	// confirmation; promoted into LifeModule on acceptance.
	PendingModule string `json:"pending_module,omitempty"`
	CoreCategory  string `json:"core_category,omitempty"`

	History   []Message `json:"history"`
	Memories  []Memory  `json:"memories,omitempty"`
	UserTurns int       `json:"user_turns"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a record for a fresh session.
func New(id, module, tier string, now time.Time) *Record {
	return &Record{
		ID:        id,
		Module:    module,
		Tier:      tier,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMessage appends a turn to the transcript. User turns are counted for
// the memory-clearing cycle.
func (r *Record) AddMessage(role, content string) {
	r.History = append(r.History, Message{Role: role, Content: content})
	if role == "user" {
		r.UserTurns++
	}
}

// HasIdentity reports whether name, gender and birthdate are all present.
func (r *Record) HasIdentity() bool {
	return r.Name != "" && r.Gender != "" && r.Birthdate != ""
}

// RecentHistory returns the last n messages, each truncated to maxLen runes.
// A maxLen of zero or less disables truncation.
func (r *Record) RecentHistory(n, maxLen int) []Message {
	start := 0
	if len(r.History) > n {
		start = len(r.History) - n
	}
	out := make([]Message, 0, len(r.History)-start)
	for _, m := range r.History[start:] {
		runes := []rune(m.Content)
		if maxLen > 0 && len(runes) > maxLen {
			m.Content = string(runes[:maxLen]) + "..."
		}
		out = append(out, m)
	}
	return out
}

// AddMemory appends a condensed note.
func (r *Record) AddMemory(kind, content string, now time.Time) {
	r.Memories = append(r.Memories, Memory{Type: kind, Content: content, CreatedAt: now})
}

// AddTopicMemory appends a condensed note tagged with its topic.
func (r *Record) AddTopicMemory(kind, topic, content string, now time.Time) {
	r.Memories = append(r.Memories, Memory{Type: kind, Topic: topic, Content: content, CreatedAt: now})
}

// AnalyzedTopics returns the distinct topics of module_analysis memories,
// in first-recorded order.
func (r *Record) AnalyzedTopics() []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range r.Memories {
		if m.Type != MemoryModuleAnalysis || m.Topic == "" || seen[m.Topic] {
			continue
		}
		seen[m.Topic] = true
		out = append(out, m.Topic)
	}
	return out
}

// RecentMemories returns the last n memories.
func (r *Record) RecentMemories(n int) []Memory {
	if len(r.Memories) <= n {
		return r.Memories
	}
	return r.Memories[len(r.Memories)-n:]
}

// MaybeClearMemories drops all memories once the user-turn count reaches
// maxTurns, then restarts the cycle. Returns true when a clear happened.
func (r *Record) MaybeClearMemories(maxTurns int) bool {
	if maxTurns <= 0 || r.UserTurns < maxTurns {
		return false
	}
	r.Memories = nil
	r.UserTurns = 0
	return true
}
