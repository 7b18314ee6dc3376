package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jhsu-tw/tianji/internal/api"
	"github.com/jhsu-tw/tianji/internal/engine"
	"github.com/jhsu-tw/tianji/internal/session"
	"github.com/jhsu-tw/tianji/internal/svcctx"
	"github.com/jhsu-tw/tianji/internal/tone"
)

// InitRequest is the request body for starting a session.
type InitRequest struct {
	Tone string `json:"tone,omitempty"`
}

// InitResponse is the response for a freshly started session.
type InitResponse struct {
	SessionID     string `json:"session_id"`
	Response      string `json:"response"`
	State         string `json:"state"`
	Tone          string `json:"tone"`
	RequiresInput bool   `json:"requires_input"`
}

// InitEndpoint handles POST /{prefix}/{tier}/api/init_with_tone.
type InitEndpoint struct {
	Module string
	Tier   string
}

func (e *InitEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", fmt.Sprintf("/%s/%s/api/init_with_tone", routePrefixes[e.Module], e.Tier), e.handler
}

func (e *InitEndpoint) RequiresInit() bool { return true }

func (e *InitEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req InitRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	mod := svcctx.EngineFrom(r.Context(), e.Module)
	store := svcctx.StoreFrom(r.Context())
	if mod == nil || store == nil {
		writeError(w, http.StatusServiceUnavailable, "server not fully initialized")
		return
	}

	rec := session.New(uuid.NewString(), e.Module, e.Tier, time.Now())
	greeting, err := mod.Init(rec, req.Tone)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidTone) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:      "無效的語氣選擇",
				Message:    noToneMessage,
				ValidTones: tone.FreeTones(),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "抱歉,發生了一些錯誤,請重試。")
		return
	}

	if err := store.Save(r.Context(), rec); err != nil {
		writeError(w, http.StatusServiceUnavailable, "會話儲存暫時無法使用，請稍後再試")
		return
	}

	writeJSON(w, http.StatusOK, InitResponse{
		SessionID:     rec.ID,
		Response:      greeting,
		State:         rec.State,
		Tone:          rec.Tone,
		RequiresInput: true,
	})
}

func (e *InitEndpoint) Command(getServerURL func() string) *cobra.Command {
	var toneFlag string
	cmd := &cobra.Command{
		Use:   "init",
		Short: fmt.Sprintf("Start a %s %s-tier session", e.Module, e.Tier),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp InitResponse
			_, path, _ := e.Route()
			if err := client.Post(cmd.Context(), path, InitRequest{Tone: toneFlag}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&toneFlag, "tone", "", "Conversation tone or persona")
	return cmd
}

// ChatRequest is the request body for one conversation turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message,omitempty"`
	// Category and SelectedDate let the date-selection frontend submit
	// button and picker values directly instead of free text.
	Category     string `json:"category,omitempty"`
	SelectedDate string `json:"selected_date,omitempty"`
}

// ChatEndpoint handles POST /{prefix}/{tier}/api/chat.
type ChatEndpoint struct {
	Module string
	Tier   string
}

func (e *ChatEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", fmt.Sprintf("/%s/%s/api/chat", routePrefixes[e.Module], e.Tier), e.handler
}

func (e *ChatEndpoint) RequiresInit() bool { return true }

func (e *ChatEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "缺少 session_id",
			Message: "請先調用 init_with_tone 初始化會話",
		})
		return
	}

	mod := svcctx.EngineFrom(r.Context(), e.Module)
	store := svcctx.StoreFrom(r.Context())
	if mod == nil || store == nil {
		writeError(w, http.StatusServiceUnavailable, "server not fully initialized")
		return
	}

	rec, err := store.Load(r.Context(), e.Module, e.Tier, req.SessionID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "會話儲存暫時無法使用，請稍後再試")
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:     "會話不存在或已過期",
			Message:   "請重新調用 init_with_tone 初始化會話",
			SessionID: req.SessionID,
		})
		return
	}

	reply, err := mod.Step(r.Context(), rec, engine.Input{
		Message:      req.Message,
		Category:     req.Category,
		SelectedDate: req.SelectedDate,
	})
	if err != nil {
		// The record was not mutated, so the client can retry the same turn.
		if errors.Is(err, engine.ErrInterpretUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "服務暫時無法使用，請稍後再試")
			return
		}
		writeError(w, http.StatusInternalServerError, "抱歉,發生了一些錯誤,請重試。")
		return
	}

	if err := store.Save(r.Context(), rec); err != nil {
		writeError(w, http.StatusServiceUnavailable, "會話儲存暫時無法使用，請稍後再試")
		return
	}

	resp := map[string]any{
		"session_id":     rec.ID,
		"response":       reply.Text,
		"state":          rec.State,
		"requires_input": reply.RequiresInput,
	}
	for k, v := range reply.Fields {
		resp[k] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ChatEndpoint) Command(getServerURL func() string) *cobra.Command {
	var category, selectedDate string
	cmd := &cobra.Command{
		Use:   "chat <session-id> <message>",
		Short: fmt.Sprintf("Send one message in a %s %s-tier session", e.Module, e.Tier),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := ChatRequest{
				SessionID:    args[0],
				Message:      args[1],
				Category:     category,
				SelectedDate: selectedDate,
			}
			var resp map[string]any
			_, path, _ := e.Route()
			if err := client.Post(cmd.Context(), path, req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	if e.Module == session.ModuleAuspicious {
		cmd.Flags().StringVar(&category, "category", "", "Date-selection category key")
		cmd.Flags().StringVar(&selectedDate, "date", "", "Selected date (YYYY-MM-DD)")
	}
	return cmd
}

// ResetRequest is the request body for discarding a session.
type ResetRequest struct {
	SessionID string `json:"session_id"`
}

// ResetResponse confirms a session reset.
type ResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResetEndpoint handles POST /{prefix}/{tier}/api/reset.
type ResetEndpoint struct {
	Module string
	Tier   string
}

func (e *ResetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", fmt.Sprintf("/%s/%s/api/reset", routePrefixes[e.Module], e.Tier), e.handler
}

func (e *ResetEndpoint) RequiresInit() bool { return true }

func (e *ResetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "缺少 session_id")
		return
	}

	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "server not fully initialized")
		return
	}

	if err := store.Delete(r.Context(), e.Module, e.Tier, req.SessionID); err != nil {
		writeError(w, http.StatusServiceUnavailable, "會話儲存暫時無法使用，請稍後再試")
		return
	}

	writeJSON(w, http.StatusOK, ResetResponse{Success: true, Message: "會話已重置"})
}

func (e *ResetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <session-id>",
		Short: fmt.Sprintf("Discard a %s %s-tier session", e.Module, e.Tier),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ResetResponse
			_, path, _ := e.Route()
			if err := client.Post(cmd.Context(), path, ResetRequest{SessionID: args[0]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
