// Package endpoints defines all HTTP endpoints and their CLI commands.
// Each module exposes the same three operations per tier
// (init_with_tone, chat, reset) under its own route prefix, so the
// session endpoints are built parametrically from the module and tier
// lists rather than written out twelve times.
package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/jhsu-tw/tianji/internal/api"
	"github.com/jhsu-tw/tianji/internal/session"
)

// Config holds dependencies for endpoints that need more than the
// request context provides.
type Config struct {
	// Version is reported by the health endpoint.
	Version string
}

// routePrefixes maps module identifiers to their URL prefixes.
var routePrefixes = map[string]string{
	session.ModuleLifenum:    "life",
	session.ModuleAngelnum:   "angel",
	session.ModuleDivination: "divination",
	session.ModuleAuspicious: "auspicious",
}

// noToneMessage is returned when a free-tier init omits or mistypes the tone.
const noToneMessage = `小提醒 🌟：請先選擇您想要的對話語氣，
這樣我才能用最適合的方式替您解讀指引 💫
🔸請選擇：「friendly / caring / ritual」`

// All returns all endpoints for registration.
func All(cfg Config) []api.Endpoint {
	eps := []api.Endpoint{
		&HealthEndpoint{Version: cfg.Version},
		&StatusEndpoint{},
		&RootEndpoint{Version: cfg.Version},
	}

	for _, module := range session.Modules() {
		for _, tier := range []string{session.TierFree, session.TierPaid} {
			eps = append(eps,
				&InitEndpoint{Module: module, Tier: tier},
				&ChatEndpoint{Module: module, Tier: tier},
				&ResetEndpoint{Module: module, Tier: tier},
			)
		}
	}

	return eps
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message,omitempty"`
	ValidTones []string `json:"valid_tones,omitempty"`
	SessionID  string   `json:"session_id,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
