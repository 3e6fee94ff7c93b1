// Package auth implements the admin credential check and the
// cookie-carried session token. There is no server-side session store:
// the cookie is the sole source of truth, so clearing it is the only
// logout and validity is purely an expiry check.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// CookieName is the admin session cookie.
const CookieName = "admin_session"

// SessionTTL is the fixed session lifetime. Expiry is absolute, not
// sliding: activity does not renew a session.
const SessionTTL = 24 * time.Hour

// Session is the cookie-carried trust token granting admin access.
type Session struct {
	Username   string    `json:"username"`
	LoggedInAt time.Time `json:"loggedInAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Valid reports whether the session is still usable at the given
// instant. A session expiring exactly now is invalid.
func (s Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Clock abstracts time retrieval so expiry is deterministic in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Authenticator validates the single configured admin credential and
// issues sessions. The configured password may be plaintext or a bcrypt
// hash; a "$2" prefix selects bcrypt comparison.
type Authenticator struct {
	username string
	password string
	secure   bool // sets the Secure cookie flag (production)
	clock    Clock
}

// NewAuthenticator creates an Authenticator. clock may be nil, selecting
// the real clock.
func NewAuthenticator(username, password string, secure bool, clock Clock) *Authenticator {
	if clock == nil {
		clock = realClock{}
	}
	return &Authenticator{
		username: username,
		password: password,
		secure:   secure,
		clock:    clock,
	}
}

// ValidateCredentials compares the submitted credentials against the
// configured values. Comparison is constant-time, and the result never
// distinguishes a wrong username from a wrong password.
func (a *Authenticator) ValidateCredentials(username, password string) bool {
	if a.username == "" || a.password == "" {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1

	var passOK bool
	if strings.HasPrefix(a.password, "$2") {
		passOK = bcrypt.CompareHashAndPassword([]byte(a.password), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	}

	return userOK && passOK
}

// NewSession issues a session for username with the fixed TTL.
func (a *Authenticator) NewSession(username string) Session {
	now := a.clock.Now().UTC()
	return Session{
		Username:   username,
		LoggedInAt: now,
		ExpiresAt:  now.Add(SessionTTL),
	}
}

// WriteCookie sets the session cookie: base64-encoded JSON, HttpOnly,
// SameSite=Strict, Secure in production.
func (a *Authenticator) WriteCookie(w http.ResponseWriter, s Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// ReadCookie extracts and decodes the session from the request cookie.
// A missing or unparseable cookie is an error; the caller treats every
// failure identically (redirect to login / 401).
func (a *Authenticator) ReadCookie(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, fmt.Errorf("no session cookie: %w", err)
	}

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return Session{}, fmt.Errorf("malformed session cookie: %w", err)
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return Session{}, fmt.Errorf("malformed session payload: %w", err)
	}
	return s, nil
}

// ClearCookie removes the session cookie from the client.
func (a *Authenticator) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Now exposes the authenticator's clock for expiry checks at the gate.
func (a *Authenticator) Now() time.Time { return a.clock.Now() }
