package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/jhsu-tw/tianji/internal/providers"
	"github.com/jhsu-tw/tianji/internal/session"
)

func TestAngelnumInit(t *testing.T) {
	m := NewAngelnum(testDeps(providers.NewMockClient()))

	t.Run("free_valid_tone", func(t *testing.T) {
		rec := newRecord(session.ModuleAngelnum, session.TierFree)
		greeting, err := m.Init(rec, "caring")
		if err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if rec.Tone != "caring" || rec.State != StateWaitingBasicInfo {
			t.Errorf("tone = %q, state = %q", rec.Tone, rec.State)
		}
		if !strings.Contains(greeting, "姓名、性別與生日") {
			t.Errorf("greeting does not ask for identity: %q", greeting)
		}
		if len(rec.History) != 1 {
			t.Errorf("history length = %d, want 1", len(rec.History))
		}
	})

	t.Run("free_empty_defaults_to_friendly", func(t *testing.T) {
		rec := newRecord(session.ModuleAngelnum, session.TierFree)
		if _, err := m.Init(rec, ""); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if rec.Tone != "friendly" {
			t.Errorf("tone = %q, want friendly", rec.Tone)
		}
	})

	t.Run("free_invalid_tone", func(t *testing.T) {
		rec := newRecord(session.ModuleAngelnum, session.TierFree)
		if _, err := m.Init(rec, "michael"); !errors.Is(err, ErrInvalidTone) {
			t.Errorf("Init() error = %v, want ErrInvalidTone", err)
		}
	})

	t.Run("paid_persona_fallback", func(t *testing.T) {
		rec := newRecord(session.ModuleAngelnum, session.TierPaid)
		if _, err := m.Init(rec, "nonexistent"); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if rec.Tone != "guan_yu" {
			t.Errorf("tone = %q, want guan_yu", rec.Tone)
		}
	})
}

func TestAngelnumFreeFlow(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		identityResponse(t, nil),
		"1111 是新的開始,宇宙正在支持你的想法成形。",
	}
	m := NewAngelnum(testDeps(mock))

	rec := newRecord(session.ModuleAngelnum, session.TierFree)
	if _, err := m.Init(rec, "friendly"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx := t.Context()
	reply, err := m.Step(ctx, rec, Input{Message: "王小明 男 1990/07/12"})
	if err != nil {
		t.Fatalf("Step(basic info) error = %v", err)
	}
	if rec.State != StateWaitingAngelNumber {
		t.Fatalf("state = %q, want %q", rec.State, StateWaitingAngelNumber)
	}
	if rec.Name != "王小明" || rec.Gender != "male" || rec.Birthdate != "1990/07/12" {
		t.Errorf("identity = %q %q %q", rec.Name, rec.Gender, rec.Birthdate)
	}
	if reply.Fields["show_angel_number_selector"] != true {
		t.Errorf("show_angel_number_selector = %v", reply.Fields["show_angel_number_selector"])
	}

	reply, err = m.Step(ctx, rec, Input{Message: "我最近一直看到 1111"})
	if err != nil {
		t.Fatalf("Step(angel number) error = %v", err)
	}
	if rec.State != StateCompleted {
		t.Errorf("state = %q, want %q", rec.State, StateCompleted)
	}
	if rec.AngelNumber != "1111" {
		t.Errorf("AngelNumber = %q", rec.AngelNumber)
	}
	if reply.Fields["angel_number"] != "1111" {
		t.Errorf("angel_number field = %v", reply.Fields["angel_number"])
	}
	if !strings.Contains(reply.Text, "1111") {
		t.Errorf("reply does not mention the number: %q", reply.Text)
	}
}

func TestAngelnumIncompleteIdentity(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{incompleteIdentityResponse(t)}
	m := NewAngelnum(testDeps(mock))

	rec := newRecord(session.ModuleAngelnum, session.TierFree)
	if _, err := m.Init(rec, "ritual"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	reply, err := m.Step(t.Context(), rec, Input{Message: "我是王小明"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if rec.State != StateWaitingBasicInfo {
		t.Errorf("state = %q, want unchanged", rec.State)
	}
	if rec.Name != "" {
		t.Errorf("Name = %q, want empty until extraction succeeds", rec.Name)
	}
	if reply.Text != angelIncompleteInfo["ritual"] {
		t.Errorf("reply = %q", reply.Text)
	}
	// The failed attempt still lands in the transcript.
	if len(rec.History) != 3 {
		t.Errorf("history length = %d, want 3", len(rec.History))
	}
}

func TestAngelnumInvalidNumber(t *testing.T) {
	m := NewAngelnum(testDeps(providers.NewMockClient()))

	rec := newRecord(session.ModuleAngelnum, session.TierFree)
	rec.Tone = "friendly"
	rec.State = StateWaitingAngelNumber
	rec.Name = "王小明"

	reply, err := m.Step(t.Context(), rec, Input{Message: "就是那個數字啊"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if reply.Text != angelInvalidNumber["friendly"] {
		t.Errorf("reply = %q", reply.Text)
	}
	if rec.State != StateWaitingAngelNumber {
		t.Errorf("state = %q, want unchanged", rec.State)
	}
}

func TestAngelnumPaidDigitCap(t *testing.T) {
	m := NewAngelnum(testDeps(providers.NewMockClient()))

	rec := newRecord(session.ModuleAngelnum, session.TierPaid)
	rec.Tone = "michael"
	rec.State = StateWaitingAngelNumber
	rec.Name = "王小明"

	reply, err := m.Step(t.Context(), rec, Input{Message: "11111"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !strings.Contains(reply.Text, "11111") || !strings.Contains(reply.Text, "4 位數") {
		t.Errorf("reply = %q", reply.Text)
	}
	if rec.State != StateWaitingAngelNumber {
		t.Errorf("state = %q, want unchanged", rec.State)
	}
}

func TestAngelnumTopicLock(t *testing.T) {
	m := NewAngelnum(testDeps(providers.NewMockClient()))

	rec := newRecord(session.ModuleAngelnum, session.TierPaid)
	rec.Tone = "gabriel"
	rec.State = StateConversation
	rec.Name = "王小明"
	rec.AngelNumber = "1234"

	reply, err := m.Step(t.Context(), rec, Input{Message: "5678"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if reply.Text != topicLockedMessage {
		t.Errorf("reply = %q, want topic lock message", reply.Text)
	}
	if rec.AngelNumber != "1234" {
		t.Errorf("AngelNumber = %q, want unchanged", rec.AngelNumber)
	}
}

func TestAngelnumConversationEnd(t *testing.T) {
	m := NewAngelnum(testDeps(providers.NewMockClient()))

	rec := newRecord(session.ModuleAngelnum, session.TierPaid)
	rec.Tone = "raphael"
	rec.State = StateConversation
	rec.Name = "王小明"
	rec.AngelNumber = "2222"

	reply, err := m.Step(t.Context(), rec, Input{Message: "謝謝"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if rec.State != StateCompleted {
		t.Errorf("state = %q, want %q", rec.State, StateCompleted)
	}
	if reply.Text != angelConversationEnd["default"] {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestAngelnumUpstreamFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true
	m := NewAngelnum(testDeps(mock))

	rec := newRecord(session.ModuleAngelnum, session.TierFree)
	if _, err := m.Init(rec, "friendly"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	before := snapshotRecord(t, rec)

	_, err := m.Step(t.Context(), rec, Input{Message: "王小明 男 1990/07/12"})
	if !errors.Is(err, ErrInterpretUnavailable) {
		t.Fatalf("Step() error = %v, want ErrInterpretUnavailable", err)
	}
	if after := snapshotRecord(t, rec); after != before {
		t.Errorf("record mutated on failed transition:\nbefore %s\nafter  %s", before, after)
	}
}

func TestAngelnumIdentityImmutable(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		identityResponse(t, nil),
		"這個數字提醒你留意生活的節奏。",
	}
	m := NewAngelnum(testDeps(mock))

	rec := newRecord(session.ModuleAngelnum, session.TierFree)
	if _, err := m.Init(rec, "friendly"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx := t.Context()
	if _, err := m.Step(ctx, rec, Input{Message: "王小明 男 1990/07/12"}); err != nil {
		t.Fatalf("Step(basic info) error = %v", err)
	}
	if rec.State != StateWaitingAngelNumber {
		t.Fatalf("state = %q, want %q", rec.State, StateWaitingAngelNumber)
	}

	// A later message that reads like a new identity must never overwrite
	// the stored one. Without digits it gets the invalid-number re-prompt.
	reply, err := m.Step(ctx, rec, Input{Message: "我是李四 女 一九八五年三月二五日"})
	if err != nil {
		t.Fatalf("Step(identity-looking text) error = %v", err)
	}
	if reply.Text != angelInvalidNumber["friendly"] {
		t.Errorf("reply = %q, want invalid-number re-prompt", reply.Text)
	}
	if rec.Name != "王小明" || rec.Gender != "male" || rec.Birthdate != "1990/07/12" {
		t.Errorf("identity = %q %q %q, want unchanged", rec.Name, rec.Gender, rec.Birthdate)
	}
	if got := mock.RequestCount(); got != 1 {
		t.Errorf("LLM requests = %d, want 1 (no re-extraction)", got)
	}

	// With digits present the message is treated as a number, not identity.
	if _, err := m.Step(ctx, rec, Input{Message: "李四 女 1985/03/25"}); err != nil {
		t.Fatalf("Step(digits) error = %v", err)
	}
	if rec.Name != "王小明" || rec.Gender != "male" || rec.Birthdate != "1990/07/12" {
		t.Errorf("identity = %q %q %q, want unchanged", rec.Name, rec.Gender, rec.Birthdate)
	}
	if rec.AngelNumber != "19850325" {
		t.Errorf("AngelNumber = %q, want digits of the message", rec.AngelNumber)
	}
}
