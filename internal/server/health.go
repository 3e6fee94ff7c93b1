package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"groundcms/internal/content"
)

const healthCheckTimeout = 2 * time.Second

type backendHealth struct {
	Backend string `json:"backend"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

type healthReport struct {
	Status string        `json:"status"`
	Store  backendHealth `json:"store"`
	Blobs  backendHealth `json:"blobs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	report := healthReport{
		Status: "ok",
		Store:  backendHealth{Backend: s.deps.Store.Backend(), OK: true},
		Blobs:  backendHealth{Backend: s.deps.Blobs.Backend(), OK: true},
	}

	if err := s.deps.Store.Ping(ctx); err != nil {
		report.Store.OK = false
		report.Store.Error = err.Error()
		report.Status = "degraded"
	}
	if err := s.deps.Blobs.Ping(ctx); err != nil {
		report.Blobs.OK = false
		report.Blobs.Error = err.Error()
		report.Status = "degraded"
	}

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	respondData(w, status, report)
}

func (s *Server) handlePagesGet(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, s.deps.Pages.Get(r.Context()))
}

type pageUpdateRequest struct {
	Section string `json:"section"`
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

func (s *Server) handlePagesPut(w http.ResponseWriter, r *http.Request) {
	var req pageUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Section == "" {
		respondError(w, http.StatusBadRequest, "section is required")
		return
	}

	doc, err := s.deps.Pages.UpdateSection(r.Context(), req.Section, content.PageSection{
		Heading: req.Heading,
		Body:    req.Body,
	})
	if err != nil {
		if errors.Is(err, content.ErrUnknownSection) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, doc)
}
