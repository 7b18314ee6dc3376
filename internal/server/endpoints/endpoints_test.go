package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jhsu-tw/tianji/internal/almanac"
	"github.com/jhsu-tw/tianji/internal/api"
	"github.com/jhsu-tw/tianji/internal/engine"
	"github.com/jhsu-tw/tianji/internal/providers"
	"github.com/jhsu-tw/tianji/internal/session"
	"github.com/jhsu-tw/tianji/internal/svcctx"
)

func newTestHandler(t *testing.T, mock *providers.MockClient) (http.Handler, *session.MemStore) {
	t.Helper()

	store := session.NewMemStore(time.Hour)
	engines := engine.Modules(engine.Deps{
		LLM:     mock,
		Almanac: almanac.NewMemMonthStore(),
		Rand:    rand.New(rand.NewSource(1)),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Memory:  engine.DefaultMemoryConfig(),
	})
	svcs := &svcctx.Services{
		Store:    store,
		Engines:  engines,
		Registry: providers.NewRegistry(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	reg := api.NewRegistry()
	for _, ep := range All(Config{Version: "test"}) {
		reg.Register(ep)
	}
	mux := http.NewServeMux()
	reg.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc { return next })

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), svcs)))
	})
	return handler, store
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return m
}

func identityResponse(t *testing.T) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"has_birthdate": true,
		"name":          "王小明",
		"gender":        "male",
		"birthdate":     "1990/07/12",
	})
	if err != nil {
		t.Fatalf("marshal identity: %v", err)
	}
	return string(b)
}

func TestInitWithTone(t *testing.T) {
	h, store := newTestHandler(t, providers.NewMockClient())

	rr := postJSON(t, h, "/angel/free/api/init_with_tone", map[string]string{"tone": "caring"})
	if rr.Code != http.StatusOK {
		t.Fatalf("init status = %d, body %s", rr.Code, rr.Body.String())
	}

	var resp InitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("init returned empty session_id")
	}
	if resp.State != engine.StateWaitingBasicInfo {
		t.Errorf("state = %q, want %q", resp.State, engine.StateWaitingBasicInfo)
	}
	if resp.Tone != "caring" {
		t.Errorf("tone = %q, want caring", resp.Tone)
	}
	if !resp.RequiresInput {
		t.Error("requires_input = false")
	}

	rec, err := store.Load(t.Context(), session.ModuleAngelnum, session.TierFree, resp.SessionID)
	if err != nil || rec == nil {
		t.Fatalf("Load() = %v, %v; want persisted record", rec, err)
	}
	if len(rec.History) != 1 || rec.History[0].Role != "assistant" {
		t.Errorf("history = %+v, want one assistant greeting", rec.History)
	}
}

func TestInitWithToneInvalid(t *testing.T) {
	h, _ := newTestHandler(t, providers.NewMockClient())

	for _, body := range []map[string]string{
		{"tone": "solemn"},
		{},
	} {
		rr := postJSON(t, h, "/divination/free/api/init_with_tone", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("init with tone %v status = %d, want 400", body, rr.Code)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Error != "無效的語氣選擇" {
			t.Errorf("error = %q", resp.Error)
		}
		if len(resp.ValidTones) != 3 {
			t.Errorf("valid_tones = %v, want the three free tones", resp.ValidTones)
		}
		if resp.Message == "" {
			t.Error("expected tone reminder message")
		}
	}
}

func TestInitWithTonePaidFallback(t *testing.T) {
	h, _ := newTestHandler(t, providers.NewMockClient())

	rr := postJSON(t, h, "/angel/paid/api/init_with_tone", map[string]string{"tone": "unknown_persona"})
	if rr.Code != http.StatusOK {
		t.Fatalf("paid init status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp InitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Tone != "guan_yu" {
		t.Errorf("tone = %q, want fallback to guan_yu", resp.Tone)
	}
}

func TestChatMissingSessionID(t *testing.T) {
	h, _ := newTestHandler(t, providers.NewMockClient())

	rr := postJSON(t, h, "/life/free/api/chat", map[string]string{"message": "你好"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "缺少 session_id" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.Message != "請先調用 init_with_tone 初始化會話" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestChatUnknownSession(t *testing.T) {
	h, _ := newTestHandler(t, providers.NewMockClient())

	rr := postJSON(t, h, "/angel/free/api/chat", map[string]string{
		"session_id": "nope",
		"message":    "你好",
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "會話不存在或已過期" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.SessionID != "nope" {
		t.Errorf("session_id = %q", resp.SessionID)
	}
}

func TestChatAngelFreeFlow(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		identityResponse(t),
		"數字 1111 代表新的開始。",
	}
	h, _ := newTestHandler(t, mock)

	rr := postJSON(t, h, "/angel/free/api/init_with_tone", map[string]string{"tone": "friendly"})
	if rr.Code != http.StatusOK {
		t.Fatalf("init status = %d", rr.Code)
	}
	var init InitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &init); err != nil {
		t.Fatalf("decode init: %v", err)
	}

	rr = postJSON(t, h, "/angel/free/api/chat", map[string]string{
		"session_id": init.SessionID,
		"message":    "王小明 男 1990/07/12",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("basic info status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeMap(t, rr)
	if resp["state"] != engine.StateWaitingAngelNumber {
		t.Errorf("state = %v, want %q", resp["state"], engine.StateWaitingAngelNumber)
	}
	if resp["show_angel_number_selector"] != true {
		t.Errorf("show_angel_number_selector = %v, want true", resp["show_angel_number_selector"])
	}

	rr = postJSON(t, h, "/angel/free/api/chat", map[string]string{
		"session_id": init.SessionID,
		"message":    "1111",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("angel number status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp = decodeMap(t, rr)
	if resp["state"] != engine.StateCompleted {
		t.Errorf("state = %v, want %q", resp["state"], engine.StateCompleted)
	}
	if resp["angel_number"] != "1111" {
		t.Errorf("angel_number = %v", resp["angel_number"])
	}
}

func TestChatUpstreamFailureLeavesSessionRetryable(t *testing.T) {
	mock := providers.NewMockClient()
	h, store := newTestHandler(t, mock)

	rr := postJSON(t, h, "/angel/free/api/init_with_tone", map[string]string{"tone": "friendly"})
	var init InitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &init); err != nil {
		t.Fatalf("decode init: %v", err)
	}

	mock.ShouldFail = true
	rr = postJSON(t, h, "/angel/free/api/chat", map[string]string{
		"session_id": init.SessionID,
		"message":    "王小明 男 1990/07/12",
	})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}

	rec, err := store.Load(t.Context(), session.ModuleAngelnum, session.TierFree, init.SessionID)
	if err != nil || rec == nil {
		t.Fatalf("Load() = %v, %v", rec, err)
	}
	if len(rec.History) != 1 {
		t.Errorf("history length = %d, want the untouched greeting only", len(rec.History))
	}
	if rec.State != engine.StateWaitingBasicInfo {
		t.Errorf("state = %q, want unchanged", rec.State)
	}

	// Same turn succeeds once the upstream recovers.
	mock.ShouldFail = false
	mock.Responses = []string{identityResponse(t)}
	mock.Reset()
	rr = postJSON(t, h, "/angel/free/api/chat", map[string]string{
		"session_id": init.SessionID,
		"message":    "王小明 男 1990/07/12",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("retry status = %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestChatStoreUnavailable(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{identityResponse(t)}
	h, store := newTestHandler(t, mock)

	rr := postJSON(t, h, "/angel/free/api/init_with_tone", map[string]string{"tone": "friendly"})
	var init InitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &init); err != nil {
		t.Fatalf("decode init: %v", err)
	}

	store.FailSaves = true
	rr = postJSON(t, h, "/angel/free/api/chat", map[string]string{
		"session_id": init.SessionID,
		"message":    "王小明 男 1990/07/12",
	})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestReset(t *testing.T) {
	h, store := newTestHandler(t, providers.NewMockClient())

	rr := postJSON(t, h, "/divination/free/api/init_with_tone", map[string]string{"tone": "ritual"})
	if rr.Code != http.StatusOK {
		t.Fatalf("init status = %d", rr.Code)
	}
	var init InitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &init); err != nil {
		t.Fatalf("decode init: %v", err)
	}

	rr = postJSON(t, h, "/divination/free/api/reset", map[string]string{"session_id": init.SessionID})
	if rr.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rr.Code)
	}
	var resp ResetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Message != "會話已重置" {
		t.Errorf("reset response = %+v", resp)
	}

	rec, err := store.Load(t.Context(), session.ModuleDivination, session.TierFree, init.SessionID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec != nil {
		t.Error("session still present after reset")
	}

	rr = postJSON(t, h, "/divination/free/api/reset", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("reset without session_id status = %d, want 400", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, providers.NewMockClient())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if len(resp.Modules) != 4 {
		t.Errorf("modules = %v", resp.Modules)
	}
}

func TestRootListsRoutes(t *testing.T) {
	h, _ := newTestHandler(t, providers.NewMockClient())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp RootResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	life, ok := resp.Modules[session.ModuleLifenum]
	if !ok {
		t.Fatalf("modules = %v, missing lifenum", resp.Modules)
	}
	free := life.Endpoints[session.TierFree]
	if len(free) != 3 || free[0] != "/life/free/api/init_with_tone" {
		t.Errorf("lifenum free endpoints = %v", free)
	}
}

func TestAllRoutesRegistered(t *testing.T) {
	eps := All(Config{})
	// 4 modules x 2 tiers x 3 operations, plus health, status, and the index.
	if len(eps) != 27 {
		t.Fatalf("len(All()) = %d, want 27", len(eps))
	}
	seen := make(map[string]bool)
	for _, ep := range eps {
		method, path, handler := ep.Route()
		if handler == nil {
			t.Errorf("%s %s has nil handler", method, path)
		}
		key := method + " " + path
		if seen[key] {
			t.Errorf("duplicate route %s", key)
		}
		seen[key] = true
	}
}
