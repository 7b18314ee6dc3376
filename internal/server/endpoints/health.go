package endpoints

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jhsu-tw/tianji/internal/api"
	"github.com/jhsu-tw/tianji/internal/session"
	"github.com/jhsu-tw/tianji/internal/svcctx"
)

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status  string   `json:"status"`
	Version string   `json:"version,omitempty"`
	Modules []string `json:"modules"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct {
	Version string
}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: e.Version,
		Modules: session.Modules(),
	})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server    string          `json:"server"`
	Providers ProvidersStatus `json:"providers"`
	Modules   []string        `json:"modules"`
	Sessions  SessionsStatus  `json:"sessions"`
}

// ProvidersStatus lists the registered LLM providers.
type ProvidersStatus struct {
	LLM []string `json:"llm"`
}

// SessionsStatus reports whether the session store is wired in.
type SessionsStatus struct {
	Store string `json:"store"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Server: "running"}

	if registry := svcctx.RegistryFrom(r.Context()); registry != nil {
		resp.Providers.LLM = registry.ListLLM()
	}

	if svcs := svcctx.ServicesFrom(r.Context()); svcs != nil {
		for name := range svcs.Engines {
			resp.Modules = append(resp.Modules, name)
		}
		sort.Strings(resp.Modules)
	}

	if svcctx.StoreFrom(r.Context()) != nil {
		resp.Sessions.Store = "ready"
	} else {
		resp.Sessions.Store = "not_initialized"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			fmt.Printf("Server: %s\n", resp.Server)
			fmt.Printf("Sessions: %s\n", resp.Sessions.Store)
			fmt.Printf("Modules: %v\n", resp.Modules)
			fmt.Printf("Providers:\n")
			fmt.Printf("  LLM: %v\n", resp.Providers.LLM)
			return nil
		},
	}
}

// RootResponse describes the service and its per-module routes.
type RootResponse struct {
	Service string                        `json:"service"`
	Version string                        `json:"version"`
	Modules map[string]ModuleRouteListing `json:"modules"`
}

// ModuleRouteListing groups one module's routes by tier.
type ModuleRouteListing struct {
	Endpoints map[string][]string `json:"endpoints"`
}

// RootEndpoint handles GET / with an index of the API surface.
type RootEndpoint struct {
	Version string
}

func (e *RootEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/{$}", e.handler
}

func (e *RootEndpoint) RequiresInit() bool { return false }

func (e *RootEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := RootResponse{
		Service: "tianji divination backend",
		Version: e.Version,
		Modules: make(map[string]ModuleRouteListing),
	}
	for _, module := range session.Modules() {
		prefix := routePrefixes[module]
		listing := ModuleRouteListing{Endpoints: make(map[string][]string)}
		for _, tier := range []string{session.TierFree, session.TierPaid} {
			listing.Endpoints[tier] = []string{
				fmt.Sprintf("/%s/%s/api/init_with_tone", prefix, tier),
				fmt.Sprintf("/%s/%s/api/chat", prefix, tier),
				fmt.Sprintf("/%s/%s/api/reset", prefix, tier),
			}
		}
		resp.Modules[module] = listing
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *RootEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the server's API routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp RootResponse
			if err := client.Get(cmd.Context(), "/", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
