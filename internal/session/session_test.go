package session

import (
	"testing"
	"time"
)

func TestAddMessageCountsUserTurns(t *testing.T) {
	rec := New("s1", ModuleAngelnum, TierPaid, time.Now())
	rec.AddMessage("assistant", "歡迎")
	rec.AddMessage("user", "你好")
	rec.AddMessage("user", "1111")

	if len(rec.History) != 3 {
		t.Errorf("history = %d, want 3", len(rec.History))
	}
	if rec.UserTurns != 2 {
		t.Errorf("user turns = %d, want 2", rec.UserTurns)
	}
}

func TestHasIdentity(t *testing.T) {
	rec := New("s1", ModuleLifenum, TierFree, time.Now())
	if rec.HasIdentity() {
		t.Error("empty record should not have identity")
	}
	rec.Name = "王小明"
	rec.Gender = "男"
	if rec.HasIdentity() {
		t.Error("missing birthdate should fail identity check")
	}
	rec.Birthdate = "1990/07/12"
	if !rec.HasIdentity() {
		t.Error("complete identity should pass")
	}
}

func TestRecentHistory(t *testing.T) {
	rec := New("s1", ModuleAngelnum, TierPaid, time.Now())
	for i := 0; i < 10; i++ {
		rec.AddMessage("user", "訊息")
	}
	if got := len(rec.RecentHistory(6, 100)); got != 6 {
		t.Errorf("recent history = %d, want 6", got)
	}
	// fewer messages than the window returns them all
	short := New("s2", ModuleAngelnum, TierPaid, time.Now())
	short.AddMessage("user", "hi")
	if got := len(short.RecentHistory(6, 100)); got != 1 {
		t.Errorf("short history = %d, want 1", got)
	}
}

func TestRecentHistoryTruncation(t *testing.T) {
	rec := New("s1", ModuleAngelnum, TierPaid, time.Now())
	long := ""
	for i := 0; i < 150; i++ {
		long += "字"
	}
	rec.AddMessage("user", long)
	got := rec.RecentHistory(6, 100)[0].Content
	if runes := []rune(got); len(runes) != 103 { // 100 + "..."
		t.Errorf("truncated length = %d runes, want 103", len(runes))
	}
	// original record is untouched
	if len([]rune(rec.History[0].Content)) != 150 {
		t.Error("truncation must not mutate stored history")
	}
}

func TestMemoryCycle(t *testing.T) {
	rec := New("s1", ModuleLifenum, TierPaid, time.Now())
	now := time.Now()
	for i := 0; i < 7; i++ {
		rec.AddMemory(MemoryModuleAnalysis, "分析", now)
	}
	if got := len(rec.RecentMemories(5)); got != 5 {
		t.Errorf("recent memories = %d, want 5", got)
	}

	rec.UserTurns = 49
	if rec.MaybeClearMemories(50) {
		t.Error("should not clear below the threshold")
	}
	rec.UserTurns = 50
	if !rec.MaybeClearMemories(50) {
		t.Error("should clear at the threshold")
	}
	if len(rec.Memories) != 0 || rec.UserTurns != 0 {
		t.Errorf("after clear: memories=%d turns=%d", len(rec.Memories), rec.UserTurns)
	}
}

func TestKey(t *testing.T) {
	got := Key(ModuleAngelnum, TierFree, "abc-123")
	if got != "session:angelnum:free:abc-123" {
		t.Errorf("Key = %q", got)
	}
}
