package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestMemStoreRoundTrip(t *testing.T) {
	store := NewMemStore(time.Hour)
	ctx := context.Background()

	rec := New("s1", ModuleDivination, TierPaid, time.Now())
	rec.Tone = "mazu"
	rec.AddMessage("assistant", "問候")

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, ModuleDivination, TierPaid, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("loaded nil record")
	}
	if loaded.Tone != "mazu" || len(loaded.History) != 1 {
		t.Errorf("loaded = %+v", loaded)
	}

	// mutating the loaded copy must not leak into the store
	loaded.Tone = "guanyin"
	again, _ := store.Load(ctx, ModuleDivination, TierPaid, "s1")
	if again.Tone != "mazu" {
		t.Error("store returned a shared reference")
	}
}

func TestMemStoreMissing(t *testing.T) {
	store := NewMemStore(time.Hour)
	rec, err := store.Load(context.Background(), ModuleAngelnum, TierFree, "nope")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec != nil {
		t.Error("missing session should load as nil, nil")
	}
}

func TestMemStoreExpiry(t *testing.T) {
	store := NewMemStore(time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	current := base
	store.SetNow(func() time.Time { return current })

	rec := New("s1", ModuleAngelnum, TierFree, base)
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	current = base.Add(59 * time.Minute)
	if got, _ := store.Load(ctx, ModuleAngelnum, TierFree, "s1"); got == nil {
		t.Fatal("session should still be live before TTL")
	}

	// a save slides the expiry window
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	current = base.Add(110 * time.Minute)
	if got, _ := store.Load(ctx, ModuleAngelnum, TierFree, "s1"); got == nil {
		t.Fatal("save should have reset the TTL")
	}

	current = base.Add(10 * time.Hour)
	if got, _ := store.Load(ctx, ModuleAngelnum, TierFree, "s1"); got != nil {
		t.Error("expired session should load as nil")
	}
}

func TestMemStoreFailSaves(t *testing.T) {
	store := NewMemStore(time.Hour)
	store.FailSaves = true
	err := store.Save(context.Background(), New("s1", ModuleLifenum, TierFree, time.Now()))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestMemStoreDelete(t *testing.T) {
	store := NewMemStore(time.Hour)
	ctx := context.Background()

	rec := New("s1", ModuleAuspicious, TierFree, time.Now())
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, ModuleAuspicious, TierFree, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Load(ctx, ModuleAuspicious, TierFree, "s1"); got != nil {
		t.Error("deleted session should be gone")
	}
	// deleting again is fine
	if err := store.Delete(ctx, ModuleAuspicious, TierFree, "s1"); err != nil {
		t.Errorf("double delete: %v", err)
	}
}

func newSQLiteTestStore(t *testing.T, ttl time.Duration) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteStore(db, ttl)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newSQLiteTestStore(t, time.Hour)
	ctx := context.Background()

	rec := New("s1", ModuleAngelnum, TierPaid, time.Now())
	rec.Tone = "michael"
	rec.AngelNumber = "1212"
	rec.AddMessage("user", "我看到1212")

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, ModuleAngelnum, TierPaid, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("loaded nil record")
	}
	if loaded.AngelNumber != "1212" || loaded.Tone != "michael" {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.History) != 1 || loaded.History[0].Content != "我看到1212" {
		t.Errorf("history = %+v", loaded.History)
	}
}

func TestSQLiteStoreMissingAndDelete(t *testing.T) {
	store := newSQLiteTestStore(t, time.Hour)
	ctx := context.Background()

	if rec, err := store.Load(ctx, ModuleLifenum, TierFree, "none"); err != nil || rec != nil {
		t.Errorf("missing load = %v, %v", rec, err)
	}

	rec := New("s1", ModuleLifenum, TierFree, time.Now())
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, ModuleLifenum, TierFree, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Load(ctx, ModuleLifenum, TierFree, "s1"); got != nil {
		t.Error("deleted session should be gone")
	}
}

func TestSQLiteStoreExpiry(t *testing.T) {
	store := newSQLiteTestStore(t, time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	current := base
	store.SetNow(func() time.Time { return current })

	rec := New("s1", ModuleDivination, TierFree, base)
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	current = base.Add(30 * time.Minute)
	if got, _ := store.Load(ctx, ModuleDivination, TierFree, "s1"); got == nil {
		t.Fatal("session should be live before TTL")
	}

	// the load above slid the expiry forward from the 30 minute mark
	current = base.Add(80 * time.Minute)
	if got, _ := store.Load(ctx, ModuleDivination, TierFree, "s1"); got == nil {
		t.Fatal("load should have slid the TTL")
	}

	current = base.Add(24 * time.Hour)
	if got, _ := store.Load(ctx, ModuleDivination, TierFree, "s1"); got != nil {
		t.Error("expired session should read as missing")
	}
}

func TestSQLiteStoreTierIsolation(t *testing.T) {
	store := newSQLiteTestStore(t, time.Hour)
	ctx := context.Background()

	free := New("same-id", ModuleAngelnum, TierFree, time.Now())
	free.Tone = "friendly"
	paid := New("same-id", ModuleAngelnum, TierPaid, time.Now())
	paid.Tone = "uriel"

	if err := store.Save(ctx, free); err != nil {
		t.Fatalf("Save free: %v", err)
	}
	if err := store.Save(ctx, paid); err != nil {
		t.Fatalf("Save paid: %v", err)
	}

	gotFree, _ := store.Load(ctx, ModuleAngelnum, TierFree, "same-id")
	gotPaid, _ := store.Load(ctx, ModuleAngelnum, TierPaid, "same-id")
	if gotFree.Tone != "friendly" || gotPaid.Tone != "uriel" {
		t.Errorf("tier isolation broken: free=%q paid=%q", gotFree.Tone, gotPaid.Tone)
	}
}

func TestSQLiteStoreCleanup(t *testing.T) {
	store := newSQLiteTestStore(t, time.Minute)
	ctx := context.Background()

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	current := base
	store.SetNow(func() time.Time { return current })

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Save(ctx, New(id, ModuleLifenum, TierFree, base)); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	current = base.Add(time.Hour)
	n, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if n != 3 {
		t.Errorf("cleaned = %d, want 3", n)
	}
}
