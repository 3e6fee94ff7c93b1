// Package activity keeps the admin audit trail: one bounded list of
// login sessions and one of content changes, persisted together as a
// single document under the admin-activity storage key.
package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"groundcms/internal/store"
)

// StorageKey holds the whole activity document.
const StorageKey = "admin-activity"

// Retention bounds. The oldest entries beyond these are evicted on
// every append.
const (
	MaxSessions = 50
	MaxChanges  = 100
)

// Session is one login/logout audit entry. Duration is whole minutes,
// set at logout; it stays nil while the session is open.
type Session struct {
	ID         string     `json:"id"`
	LoginTime  time.Time  `json:"loginTime"`
	LogoutTime *time.Time `json:"logoutTime,omitempty"`
	IPAddress  string     `json:"ipAddress,omitempty"`
	UserAgent  string     `json:"userAgent,omitempty"`
	Duration   *int64     `json:"duration,omitempty"`
}

// Change is one audit entry describing a content mutation.
type Change struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Section   string    `json:"section"`
	ItemID    string    `json:"itemId,omitempty"`
}

// Stats summarizes the audit trail for the admin dashboard.
// AverageSessionDuration is the mean over sessions that have logged
// out; open sessions are excluded, not counted as zero.
type Stats struct {
	TotalSessions          int        `json:"totalSessions"`
	TotalChanges           int        `json:"totalChanges"`
	LastLogin              *time.Time `json:"lastLogin,omitempty"`
	ChangesThisWeek        int        `json:"changesThisWeek"`
	AverageSessionDuration *float64   `json:"averageSessionDuration,omitempty"`
}

// document is the persisted shape: both lists most-recent-first.
type document struct {
	Sessions []Session `json:"sessions"`
	Changes  []Change  `json:"changes"`
}

// Clock abstracts time retrieval so the log is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type uuidGenerator struct{}

func (uuidGenerator) New() string { return uuid.New().String() }

// Log is the admin activity log. Every operation is a whole-document
// read-modify-write against one storage key, serialized in-process by
// a mutex.
type Log struct {
	store store.Store
	clock Clock
	idgen IDGenerator
	mu    sync.Mutex
}

// NewLog creates an activity log over the given store. clock and idgen
// may be nil, selecting the real implementations.
func NewLog(st store.Store, clock Clock, idgen IDGenerator) *Log {
	if clock == nil {
		clock = realClock{}
	}
	if idgen == nil {
		idgen = uuidGenerator{}
	}
	return &Log{store: st, clock: clock, idgen: idgen}
}

func (l *Log) load(ctx context.Context) document {
	return store.GetJSON(ctx, l.store, StorageKey, document{})
}

func (l *Log) persist(ctx context.Context, doc document) error {
	return store.SetJSON(ctx, l.store, StorageKey, doc)
}

// RecordLogin appends a fresh session entry and returns its id.
// The newest session is always first; entries beyond MaxSessions are
// evicted.
func (l *Log) RecordLogin(ctx context.Context, ip, userAgent string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc := l.load(ctx)

	s := Session{
		ID:        l.idgen.New(),
		LoginTime: l.clock.Now().UTC(),
		IPAddress: ip,
		UserAgent: userAgent,
	}
	doc.Sessions = append([]Session{s}, doc.Sessions...)
	if len(doc.Sessions) > MaxSessions {
		doc.Sessions = doc.Sessions[:MaxSessions]
	}

	if err := l.persist(ctx, doc); err != nil {
		return "", fmt.Errorf("recording login: %w", err)
	}
	return s.ID, nil
}

// RecordLogout stamps the logout time and duration of the session with
// the given id. An unknown or already-evicted session id is a silent
// no-op: logging out twice must not error.
func (l *Log) RecordLogout(ctx context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc := l.load(ctx)

	found := false
	for i := range doc.Sessions {
		if doc.Sessions[i].ID != sessionID {
			continue
		}
		now := l.clock.Now().UTC()
		minutes := int64(now.Sub(doc.Sessions[i].LoginTime).Minutes())
		doc.Sessions[i].LogoutTime = &now
		doc.Sessions[i].Duration = &minutes
		found = true
		break
	}
	if !found {
		return nil
	}

	if err := l.persist(ctx, doc); err != nil {
		return fmt.Errorf("recording logout: %w", err)
	}
	return nil
}

// RecordChange appends one change entry, newest first, evicting beyond
// MaxChanges.
func (l *Log) RecordChange(ctx context.Context, action, details, section, itemID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc := l.load(ctx)

	c := Change{
		ID:        l.idgen.New(),
		Timestamp: l.clock.Now().UTC(),
		Action:    action,
		Details:   details,
		Section:   section,
		ItemID:    itemID,
	}
	doc.Changes = append([]Change{c}, doc.Changes...)
	if len(doc.Changes) > MaxChanges {
		doc.Changes = doc.Changes[:MaxChanges]
	}

	if err := l.persist(ctx, doc); err != nil {
		return fmt.Errorf("recording change: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func (l *Log) RecentSessions(ctx context.Context, limit int) []Session {
	doc := l.load(ctx)
	if limit < 0 || limit > len(doc.Sessions) {
		limit = len(doc.Sessions)
	}
	return doc.Sessions[:limit]
}

// RecentChanges returns up to limit changes, newest first.
func (l *Log) RecentChanges(ctx context.Context, limit int) []Change {
	doc := l.load(ctx)
	if limit < 0 || limit > len(doc.Changes) {
		limit = len(doc.Changes)
	}
	return doc.Changes[:limit]
}

// Stats computes dashboard statistics over the retained entries.
func (l *Log) Stats(ctx context.Context) Stats {
	doc := l.load(ctx)
	now := l.clock.Now().UTC()
	weekAgo := now.AddDate(0, 0, -7)

	stats := Stats{
		TotalSessions: len(doc.Sessions),
		TotalChanges:  len(doc.Changes),
	}

	if len(doc.Sessions) > 0 {
		t := doc.Sessions[0].LoginTime
		stats.LastLogin = &t
	}

	for _, c := range doc.Changes {
		if c.Timestamp.After(weekAgo) {
			stats.ChangesThisWeek++
		}
	}

	var total, closed int64
	for _, s := range doc.Sessions {
		if s.Duration != nil {
			total += *s.Duration
			closed++
		}
	}
	if closed > 0 {
		avg := float64(total) / float64(closed)
		stats.AverageSessionDuration = &avg
	}

	return stats
}
