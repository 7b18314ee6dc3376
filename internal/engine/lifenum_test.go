package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jhsu-tw/tianji/internal/providers"
	"github.com/jhsu-tw/tianji/internal/session"
)

func detectionResponse(t *testing.T, module, reason string) string {
	t.Helper()
	b, err := json.Marshal(map[string]string{"module": module, "reason": reason})
	if err != nil {
		t.Fatalf("marshal detection: %v", err)
	}
	return string(b)
}

func TestLifenumInit(t *testing.T) {
	m := NewLifenum(testDeps(providers.NewMockClient()))

	rec := newRecord(session.ModuleLifenum, session.TierFree)
	if _, err := m.Init(rec, "guan_yu"); !errors.Is(err, ErrInvalidTone) {
		t.Errorf("Init() error = %v, want ErrInvalidTone", err)
	}

	rec = newRecord(session.ModuleLifenum, session.TierFree)
	greeting, err := m.Init(rec, "friendly")
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if greeting != lifenumFreeGreetings["friendly"] {
		t.Errorf("greeting = %q", greeting)
	}

	rec = newRecord(session.ModuleLifenum, session.TierPaid)
	if _, err := m.Init(rec, "metatron"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if rec.Tone != "metatron" {
		t.Errorf("tone = %q", rec.Tone)
	}
}

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		input   string
		wantKey string
		wantOK  bool
	}{
		{"核心生命靈數", "core", true},
		{"我想看主命數", "core", true},
		{"生日數", "birthday", true},
		{"流年運勢", "year", true},
		{"靈魂數", "soul", true},
		{"我想了解業力數", "karma", true},
		{"我最近工作不太順利", "", false},
	}
	for _, tt := range tests {
		topic, ok := matchTopic(tt.input)
		if ok != tt.wantOK {
			t.Errorf("matchTopic(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			continue
		}
		if ok && topic.Key != tt.wantKey {
			t.Errorf("matchTopic(%q) = %q, want %q", tt.input, topic.Key, tt.wantKey)
		}
	}
}

func TestTierTopics(t *testing.T) {
	free := tierTopics(session.TierFree)
	if len(free) != 4 {
		t.Errorf("free topics = %d, want 4", len(free))
	}
	for _, topic := range free {
		if !topic.Free {
			t.Errorf("free tier includes paid topic %q", topic.Key)
		}
	}
	paid := tierTopics(session.TierPaid)
	if len(paid) != 10 {
		t.Errorf("paid topics = %d, want 10", len(paid))
	}
}

func TestLifenumFreeFlow(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		identityResponse(t, nil),
		"你的核心生命靈數展現出開創者的能量。",
	}
	m := NewLifenum(testDeps(mock))

	rec := newRecord(session.ModuleLifenum, session.TierFree)
	if _, err := m.Init(rec, "friendly"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx := t.Context()
	reply, err := m.Step(ctx, rec, Input{Message: "王小明 男 1990/07/12"})
	if err != nil {
		t.Fatalf("Step(basic info) error = %v", err)
	}
	if rec.State != StateWaitingModuleSelection {
		t.Fatalf("state = %q, want %q", rec.State, StateWaitingModuleSelection)
	}
	topics, ok := reply.Fields["topics"].([]string)
	if !ok || len(topics) != 4 {
		t.Errorf("topics field = %v", reply.Fields["topics"])
	}

	reply, err = m.Step(ctx, rec, Input{Message: "核心生命靈數"})
	if err != nil {
		t.Fatalf("Step(topic) error = %v", err)
	}
	if rec.State != StateCompleted {
		t.Errorf("state = %q, want %q", rec.State, StateCompleted)
	}
	if rec.LifeModule != "core" {
		t.Errorf("LifeModule = %q", rec.LifeModule)
	}
	if reply.Fields["topic"] != "core" {
		t.Errorf("topic field = %v", reply.Fields["topic"])
	}
	if !strings.Contains(reply.Text, "開創者的能量") {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestLifenumFreePaidTopicRejected(t *testing.T) {
	m := NewLifenum(testDeps(providers.NewMockClient()))

	rec := newRecord(session.ModuleLifenum, session.TierFree)
	rec.Tone = "friendly"
	rec.State = StateWaitingModuleSelection
	rec.Name = "王小明"
	rec.Gender = "male"
	rec.Birthdate = "1990/07/12"

	reply, err := m.Step(t.Context(), rec, Input{Message: "靈魂數"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !strings.Contains(reply.Text, "需要升級後才能解析") {
		t.Errorf("reply = %q", reply.Text)
	}
	if rec.State != StateWaitingModuleSelection {
		t.Errorf("state = %q, want unchanged", rec.State)
	}
}

func TestLifenumDetectionAndConfirmation(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		detectionResponse(t, "soul", "您提到的內在渴望與靈魂數的意涵最為貼近。"),
		"你的靈魂數揭示了內心深處的渴望。",
	}
	m := NewLifenum(testDeps(mock))

	rec := newRecord(session.ModuleLifenum, session.TierPaid)
	rec.Tone = "michael"
	rec.State = StateWaitingModuleSelection
	rec.Name = "王小明"
	rec.Gender = "male"
	rec.Birthdate = "1990/07/12"
	rec.EnglishName = "WANG XIAOMING"

	ctx := t.Context()
	reply, err := m.Step(ctx, rec, Input{Message: "我常常覺得不知道自己真正想要什麼"})
	if err != nil {
		t.Fatalf("Step(describe) error = %v", err)
	}
	if rec.PendingModule != "soul" {
		t.Fatalf("PendingModule = %q, want soul", rec.PendingModule)
	}
	if rec.State != StateWaitingModuleSelection {
		t.Errorf("state = %q, want unchanged pending confirmation", rec.State)
	}
	if reply.Fields["pending_topic"] != "soul" {
		t.Errorf("pending_topic field = %v", reply.Fields["pending_topic"])
	}

	reply, err = m.Step(ctx, rec, Input{Message: "好"})
	if err != nil {
		t.Fatalf("Step(confirm) error = %v", err)
	}
	if rec.PendingModule != "" {
		t.Errorf("PendingModule = %q, want cleared", rec.PendingModule)
	}
	if rec.LifeModule != "soul" {
		t.Errorf("LifeModule = %q", rec.LifeModule)
	}
	if rec.State != StateContinueSelection {
		t.Errorf("state = %q, want %q", rec.State, StateContinueSelection)
	}
	if !strings.Contains(reply.Text, "靈魂數揭示了內心深處的渴望") {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestLifenumConfirmationRejected(t *testing.T) {
	for _, msg := range []string{"不要", "不用了", "不", "不好", "好吧不好"} {
		t.Run(msg, func(t *testing.T) {
			m := NewLifenum(testDeps(providers.NewMockClient()))

			rec := newRecord(session.ModuleLifenum, session.TierPaid)
			rec.Tone = "gabriel"
			rec.State = StateWaitingModuleSelection
			rec.Name = "王小明"
			rec.Gender = "female"
			rec.PendingModule = "soul"

			reply, err := m.Step(t.Context(), rec, Input{Message: msg})
			if err != nil {
				t.Fatalf("Step() error = %v", err)
			}
			if rec.PendingModule != "" {
				t.Errorf("PendingModule = %q, want cleared", rec.PendingModule)
			}
			if rec.State != StateWaitingModuleSelection {
				t.Errorf("state = %q, want unchanged", rec.State)
			}
			if reply.Text == "" || !reply.RequiresInput {
				t.Errorf("reply = %+v", reply)
			}
			if rec.LifeModule != "" {
				t.Errorf("LifeModule = %q, want no analysis run", rec.LifeModule)
			}
		})
	}
}

func TestLifenumDetectionFallback(t *testing.T) {
	mock := providers.NewMockClient()
	// Malformed detection output falls back to the core topic.
	mock.Responses = []string{"這不是 JSON"}
	m := NewLifenum(testDeps(mock))

	rec := newRecord(session.ModuleLifenum, session.TierFree)
	rec.Tone = "caring"
	rec.State = StateWaitingModuleSelection
	rec.Name = "王小明"
	rec.Gender = "male"
	rec.Birthdate = "1990/07/12"

	_, err := m.Step(t.Context(), rec, Input{Message: "我也不知道要看什麼"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if rec.PendingModule != "core" {
		t.Errorf("PendingModule = %q, want core fallback", rec.PendingModule)
	}
}

func TestLifenumCoreCategoryFlow(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		"你的核心數展現領導者的特質。",
		"在財運上,建議你善用開創的能量。",
	}
	m := NewLifenum(testDeps(mock))

	rec := newRecord(session.ModuleLifenum, session.TierPaid)
	rec.Tone = "uriel"
	rec.State = StateWaitingModuleSelection
	rec.Name = "王小明"
	rec.Gender = "male"
	rec.Birthdate = "1990/07/12"
	rec.EnglishName = "WANG XIAOMING"

	ctx := t.Context()
	reply, err := m.Step(ctx, rec, Input{Message: "核心生命靈數"})
	if err != nil {
		t.Fatalf("Step(core) error = %v", err)
	}
	if rec.State != StateCoreCategorySelection {
		t.Fatalf("state = %q, want %q", rec.State, StateCoreCategorySelection)
	}
	if _, ok := reply.Fields["categories"]; !ok {
		t.Errorf("missing categories field")
	}

	reply, err = m.Step(ctx, rec, Input{Message: "財運事業"})
	if err != nil {
		t.Fatalf("Step(category) error = %v", err)
	}
	if rec.State != StateWaitingCoreQuestion {
		t.Fatalf("state = %q, want %q", rec.State, StateWaitingCoreQuestion)
	}
	if rec.CoreCategory != "財運事業" {
		t.Errorf("CoreCategory = %q", rec.CoreCategory)
	}

	reply, err = m.Step(ctx, rec, Input{Message: "我今年適合轉職嗎？"})
	if err != nil {
		t.Fatalf("Step(question) error = %v", err)
	}
	if rec.State != StateContinueSelection {
		t.Errorf("state = %q, want %q", rec.State, StateContinueSelection)
	}
	if !strings.Contains(reply.Text, "善用開創的能量") {
		t.Errorf("reply = %q", reply.Text)
	}

	// The question is remembered for later context.
	found := false
	for _, mem := range rec.Memories {
		if mem.Type == session.MemoryCoreQA && mem.Topic == "財運事業" {
			found = true
		}
	}
	if !found {
		t.Errorf("memories = %+v, missing core_qa note", rec.Memories)
	}
}

func TestLifenumFarewell(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{"你的生日數帶著穩定的能量。"}
	m := NewLifenum(testDeps(mock))

	rec := newRecord(session.ModuleLifenum, session.TierPaid)
	rec.Tone = "zadkiel"
	rec.State = StateWaitingModuleSelection
	rec.Name = "王小明"
	rec.Gender = "male"
	rec.Birthdate = "1990/07/12"

	ctx := t.Context()
	if _, err := m.Step(ctx, rec, Input{Message: "生日數"}); err != nil {
		t.Fatalf("Step(topic) error = %v", err)
	}
	if rec.State != StateContinueSelection {
		t.Fatalf("state = %q", rec.State)
	}

	reply, err := m.Step(ctx, rec, Input{Message: "沒有了"})
	if err != nil {
		t.Fatalf("Step(end) error = %v", err)
	}
	if rec.State != StateCompleted {
		t.Errorf("state = %q, want %q", rec.State, StateCompleted)
	}
	if !strings.Contains(reply.Text, "解析了生命靈數") {
		t.Errorf("farewell missing summary point: %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "生日天賦數") && !strings.Contains(reply.Text, "生日數") {
		t.Errorf("farewell missing analyzed topic: %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "能量調整建議") {
		t.Errorf("farewell missing recommendations: %q", reply.Text)
	}
}

func TestLifenumGenderedPronoun(t *testing.T) {
	if got := pronoun("female"); got != "妳" {
		t.Errorf("pronoun(female) = %q", got)
	}
	if got := pronoun("male"); got != "你" {
		t.Errorf("pronoun(male) = %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("這是一段很長的分析內容", 5); got != "這是一段很" {
		t.Errorf("truncateRunes = %q", got)
	}
	if got := truncateRunes("短", 5); got != "短" {
		t.Errorf("truncateRunes = %q", got)
	}
}

func TestLifenumIdentityImmutable(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		identityResponse(t, nil),
		detectionResponse(t, "core", "想重新認識自己"),
	}
	m := NewLifenum(testDeps(mock))

	rec := newRecord(session.ModuleLifenum, session.TierFree)
	if _, err := m.Init(rec, "friendly"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx := t.Context()
	if _, err := m.Step(ctx, rec, Input{Message: "王小明 男 1990/07/12"}); err != nil {
		t.Fatalf("Step(basic info) error = %v", err)
	}
	if rec.State != StateWaitingModuleSelection {
		t.Fatalf("state = %q, want %q", rec.State, StateWaitingModuleSelection)
	}

	// Identity-looking text after basic info is a topic description, never a
	// second identity extraction.
	reply, err := m.Step(ctx, rec, Input{Message: "李四 女 1985/03/25"})
	if err != nil {
		t.Fatalf("Step(identity-looking text) error = %v", err)
	}
	if rec.Name != "王小明" || rec.Gender != "male" || rec.Birthdate != "1990/07/12" {
		t.Errorf("identity = %q %q %q, want unchanged", rec.Name, rec.Gender, rec.Birthdate)
	}
	if rec.PendingModule != "core" {
		t.Errorf("PendingModule = %q, want topic confirmation", rec.PendingModule)
	}
	if rec.State != StateWaitingModuleSelection {
		t.Errorf("state = %q, want unchanged", rec.State)
	}
	if !reply.RequiresInput {
		t.Errorf("reply = %+v, want confirmation prompt", reply)
	}
}
