package almanac

import (
	"context"
	"database/sql"
	"reflect"
	"testing"
)

func TestCategories(t *testing.T) {
	cats := Categories()
	if len(cats) != 5 {
		t.Fatalf("categories = %d, want 5", len(cats))
	}
	wantKeys := []string{"daily_life", "family_home", "relationship", "celebration", "work_career"}
	var keys []string
	for _, c := range cats {
		keys = append(keys, c.Key)
	}
	if !reflect.DeepEqual(keys, wantKeys) {
		t.Errorf("category order = %v, want %v", keys, wantKeys)
	}
}

func TestCategoryByKey(t *testing.T) {
	c, ok := CategoryByKey("family_home")
	if !ok {
		t.Fatal("family_home should exist")
	}
	if c.Name != "家庭居所" {
		t.Errorf("Name = %q", c.Name)
	}
	if _, ok := CategoryByKey("nonexistent"); ok {
		t.Error("unknown key should not resolve")
	}
}

func TestMatchCategory(t *testing.T) {
	tests := []struct {
		text    string
		wantKey string
		ok      bool
	}{
		{"家庭居所，2025-12-15", "family_home", true},
		{"我想查感情人際的日子", "relationship", true},
		{"喜慶大事", "celebration", true},
		{"隨便聊聊", "", false},
	}
	for _, tt := range tests {
		c, ok := MatchCategory(tt.text)
		if ok != tt.ok {
			t.Errorf("MatchCategory(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			continue
		}
		if ok && c.Key != tt.wantKey {
			t.Errorf("MatchCategory(%q) = %q, want %q", tt.text, c.Key, tt.wantKey)
		}
	}
}

func newTestStore(t *testing.T) *SQLiteMonthStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteMonthStore(db)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestSQLiteMonthStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// missing month is empty, not an error
	content, err := store.MonthContent(ctx, "2025-12")
	if err != nil {
		t.Fatalf("MonthContent: %v", err)
	}
	if content != "" {
		t.Errorf("missing month content = %q, want empty", content)
	}

	if err := store.PutMonth(ctx, "2025-12", "十二月宜嫁娶"); err != nil {
		t.Fatalf("PutMonth: %v", err)
	}
	if err := store.PutMonth(ctx, "2025-11", "十一月宜動土"); err != nil {
		t.Fatalf("PutMonth: %v", err)
	}

	content, err = store.MonthContent(ctx, "2025-12")
	if err != nil {
		t.Fatalf("MonthContent: %v", err)
	}
	if content != "十二月宜嫁娶" {
		t.Errorf("content = %q", content)
	}

	// replace-on-conflict
	if err := store.PutMonth(ctx, "2025-12", "updated"); err != nil {
		t.Fatalf("PutMonth update: %v", err)
	}
	content, _ = store.MonthContent(ctx, "2025-12")
	if content != "updated" {
		t.Errorf("updated content = %q", content)
	}

	months, err := store.AvailableMonths(ctx)
	if err != nil {
		t.Fatalf("AvailableMonths: %v", err)
	}
	if !reflect.DeepEqual(months, []string{"2025-11", "2025-12"}) {
		t.Errorf("months = %v", months)
	}
}

func TestMemMonthStore(t *testing.T) {
	store := NewMemMonthStore()
	ctx := context.Background()

	if err := store.PutMonth(ctx, "2026-01", "一月內容"); err != nil {
		t.Fatalf("PutMonth: %v", err)
	}
	content, err := store.MonthContent(ctx, "2026-01")
	if err != nil || content != "一月內容" {
		t.Errorf("MonthContent = %q, %v", content, err)
	}
	months, _ := store.AvailableMonths(ctx)
	if len(months) != 1 || months[0] != "2026-01" {
		t.Errorf("months = %v", months)
	}
}
