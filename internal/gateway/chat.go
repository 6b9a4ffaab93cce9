package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bbdragon2023/aiSDR/internal/events"
	"github.com/bbdragon2023/aiSDR/internal/sessions"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type researchRequest struct {
	Company   string `json:"company"`
	Prospect  string `json:"prospect"`
	SessionID string `json:"session_id"`
}

// handleChat streams one agent turn as server-sent events: thinking,
// then a tool/tool_result pair per invocation, then content and done.
// A turn already in flight on the session is a 409.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sess, err := s.acquireSession(w, r, req.SessionID)
	if err != nil {
		return
	}
	defer sess.Release()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(event string, payload map[string]any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	_, err = sess.Agent.Chat(r.Context(), req.Message, func(e events.Event) {
		switch e.Type {
		case events.EventThinking:
			send("thinking", map[string]any{"status": "processing"})
		case events.EventToolCall:
			if p, ok := events.GetToolCallPayload(e); ok {
				send("tool", map[string]any{"name": p.Name, "input": p.Arguments})
			}
		case events.EventToolResult:
			if p, ok := events.GetToolResultPayload(e); ok {
				send("tool_result", map[string]any{"name": p.Name, "success": p.Success})
			}
		case events.EventAssistantMessage:
			p, ok := events.GetAssistantMessagePayload(e)
			if !ok {
				return
			}
			if p.Error != "" {
				send("error", map[string]any{"error": p.Error})
			} else {
				send("content", map[string]any{"text": p.Content})
			}
		}
	})
	if err != nil {
		slog.Error("chat turn failed", "session", sess.ID, "error", err)
		// the error event was already streamed by the observer
	}

	send("done", map[string]any{"status": "complete", "session_id": sess.ID})
}

func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, ok := s.store.Get(req.SessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	// clearing mid-turn would yank the conversation out from under
	// the loop, so it takes the same turn lock as chat
	if err := sess.Acquire(); err != nil {
		writeError(w, http.StatusConflict, "a turn is already in progress on this session")
		return
	}
	defer sess.Release()

	sess.Agent.Reset()
	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared", "session_id": sess.ID})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	sess, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	history := sess.Agent.History()
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"turns":      history,
		"count":      len(history),
	})
}

func (s *Server) handleResearchCompany(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Company == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}

	sess, err := s.acquireSession(w, r, req.SessionID)
	if err != nil {
		return
	}
	defer sess.Release()

	report, err := sess.Agent.ResearchCompany(r.Context(), req.Company, nil)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"company":    req.Company,
		"report":     report,
		"session_id": sess.ID,
	})
}

func (s *Server) handleResearchProspect(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prospect == "" {
		writeError(w, http.StatusBadRequest, "prospect is required")
		return
	}

	sess, err := s.acquireSession(w, r, req.SessionID)
	if err != nil {
		return
	}
	defer sess.Release()

	report, err := sess.Agent.ResearchProspect(r.Context(), req.Prospect, req.Company, nil)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"prospect":   req.Prospect,
		"company":    req.Company,
		"report":     report,
		"session_id": sess.ID,
	})
}

// acquireSession resolves (or creates) the session and claims it for
// one turn. On failure the response is already written.
func (s *Server) acquireSession(w http.ResponseWriter, r *http.Request, id string) (*sessions.Session, error) {
	sess, err := s.store.GetOrCreate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, err
	}
	if err := sess.Acquire(); err != nil {
		writeError(w, http.StatusConflict, "a turn is already in progress on this session")
		return nil, err
	}
	return sess, nil
}
