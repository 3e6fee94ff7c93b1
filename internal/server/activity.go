package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const defaultActivityLimit = 20

func (s *Server) handleActivityGet(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	switch r.URL.Query().Get("type") {
	case "", "sessions":
		respondData(w, http.StatusOK, s.deps.Activity.RecentSessions(r.Context(), limit))
	case "changes":
		respondData(w, http.StatusOK, s.deps.Activity.RecentChanges(r.Context(), limit))
	case "stats":
		respondData(w, http.StatusOK, s.deps.Activity.Stats(r.Context()))
	default:
		respondError(w, http.StatusBadRequest, "type must be sessions, changes or stats")
	}
}

type changeRequest struct {
	Action  string `json:"action"`
	Details string `json:"details"`
	Section string `json:"section"`
	ItemID  string `json:"itemId"`
}

func (s *Server) handleActivityPost(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Action == "" || req.Section == "" {
		respondError(w, http.StatusBadRequest, "action and section are required")
		return
	}

	if err := s.deps.Activity.RecordChange(r.Context(), req.Action, req.Details, req.Section, req.ItemID); err != nil {
		s.deps.Logger.Error("recording change failed", "action", req.Action, "error", err)
		respondError(w, http.StatusInternalServerError, "Could not record change")
		return
	}
	respondMessage(w, http.StatusOK, "Change recorded")
}
