package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"groundcms/internal/auth"
)

// activityCookieName carries the activity-log session id between login
// and logout. It is a separate cookie so the trust token keeps its
// fixed shape.
const activityCookieName = "admin_activity"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username  string `json:"username"`
	ExpiresAt string `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !s.deps.Auth.ValidateCredentials(req.Username, req.Password) {
		s.deps.Logger.Warn("login rejected", "username", req.Username, "ip", clientIP(r))
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	session := s.deps.Auth.NewSession(req.Username)
	if err := s.deps.Auth.WriteCookie(w, session); err != nil {
		respondError(w, http.StatusInternalServerError, "Could not create session")
		return
	}

	// Audit is best-effort: a storage failure here must not fail a
	// valid login.
	if s.deps.Activity != nil {
		id, err := s.deps.Activity.RecordLogin(r.Context(), clientIP(r), r.UserAgent())
		if err != nil {
			s.deps.Logger.Warn("recording login failed", "error", err)
		} else {
			s.setActivityCookie(w, id)
		}
	}

	s.deps.Logger.Info("admin logged in", "username", req.Username, "ip", clientIP(r))
	respondData(w, http.StatusOK, loginResponse{
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.deps.Activity != nil {
		if cookie, err := r.Cookie(activityCookieName); err == nil && cookie.Value != "" {
			if err := s.deps.Activity.RecordLogout(r.Context(), cookie.Value); err != nil {
				s.deps.Logger.Warn("recording logout failed", "error", err)
			}
		}
	}

	s.deps.Auth.ClearCookie(w)
	s.clearActivityCookie(w)
	respondMessage(w, http.StatusOK, "Logged out")
}

func (s *Server) setActivityCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     activityCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearActivityCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     activityCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clientIP prefers the first X-Forwarded-For hop (the service runs
// behind a proxy in production) and falls back to the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
