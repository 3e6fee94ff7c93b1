package server

import "net/http"

// requireSession gates the admin routes. A missing, unparseable or
// expired session cookie yields the same 401 regardless of cause: the
// client learns nothing beyond "log in again".
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.deps.Auth.ReadCookie(r)
		if err != nil || !session.Valid(s.deps.Auth.Now()) {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
