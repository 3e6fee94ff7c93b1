package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"groundcms/internal/store"
)

// fakeClock returns a fixed time, advanced explicitly by tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// seqIDs produces id-1, id-2, ...
type seqIDs struct {
	n int
}

func (g *seqIDs) New() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func newTestLog(t *testing.T) (*Log, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	return NewLog(store.NewMemoryStore(), clock, &seqIDs{}), clock
}

func TestLog_RecordLogin(t *testing.T) {
	l, _ := newTestLog(t)
	ctx := context.Background()

	id, err := l.RecordLogin(ctx, "203.0.113.9", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("RecordLogin() error = %v", err)
	}
	if id == "" {
		t.Fatal("RecordLogin() returned empty id")
	}

	sessions := l.RecentSessions(ctx, 10)
	if len(sessions) != 1 {
		t.Fatalf("RecentSessions() len = %d, want 1", len(sessions))
	}
	s := sessions[0]
	if s.ID != id || s.IPAddress != "203.0.113.9" || s.UserAgent != "Mozilla/5.0" {
		t.Errorf("session = %+v", s)
	}
	if s.LogoutTime != nil || s.Duration != nil {
		t.Error("open session has logout fields set")
	}
}

func TestLog_SessionRetention(t *testing.T) {
	l, clock := newTestLog(t)
	ctx := context.Background()

	var lastID string
	for i := 0; i < 60; i++ {
		clock.advance(time.Minute)
		id, err := l.RecordLogin(ctx, "", "")
		if err != nil {
			t.Fatalf("RecordLogin() #%d error = %v", i, err)
		}
		lastID = id
	}

	sessions := l.RecentSessions(ctx, 100)
	if len(sessions) != MaxSessions {
		t.Fatalf("RecentSessions() len = %d, want %d", len(sessions), MaxSessions)
	}
	if sessions[0].ID != lastID {
		t.Errorf("newest session first: got %s, want %s", sessions[0].ID, lastID)
	}
	for i := 1; i < len(sessions); i++ {
		if sessions[i].LoginTime.After(sessions[i-1].LoginTime) {
			t.Fatalf("sessions out of order at %d", i)
		}
	}
}

func TestLog_RecordLogout(t *testing.T) {
	t.Run("stamps duration in whole minutes", func(t *testing.T) {
		l, clock := newTestLog(t)
		ctx := context.Background()

		id, _ := l.RecordLogin(ctx, "", "")
		clock.advance(42*time.Minute + 55*time.Second)

		if err := l.RecordLogout(ctx, id); err != nil {
			t.Fatalf("RecordLogout() error = %v", err)
		}

		s := l.RecentSessions(ctx, 1)[0]
		if s.LogoutTime == nil {
			t.Fatal("LogoutTime not set")
		}
		if s.Duration == nil || *s.Duration != 42 {
			t.Errorf("Duration = %v, want 42 (floor of 42m55s)", s.Duration)
		}
	})

	t.Run("unknown session is a silent no-op", func(t *testing.T) {
		l, _ := newTestLog(t)
		ctx := context.Background()

		l.RecordLogin(ctx, "", "")
		if err := l.RecordLogout(ctx, "no-such-session"); err != nil {
			t.Fatalf("RecordLogout() error = %v, want nil", err)
		}
		if s := l.RecentSessions(ctx, 1)[0]; s.LogoutTime != nil {
			t.Error("unrelated session was mutated")
		}
	})
}

func TestLog_ChangeRetention(t *testing.T) {
	l, clock := newTestLog(t)
	ctx := context.Background()

	for i := 0; i < 110; i++ {
		clock.advance(time.Second)
		details := fmt.Sprintf("change %d", i)
		if err := l.RecordChange(ctx, "update", details, "machines", ""); err != nil {
			t.Fatalf("RecordChange() #%d error = %v", i, err)
		}
	}

	changes := l.RecentChanges(ctx, 200)
	if len(changes) != MaxChanges {
		t.Fatalf("RecentChanges() len = %d, want %d", len(changes), MaxChanges)
	}
	if changes[0].Details != "change 109" {
		t.Errorf("newest change first: got %q", changes[0].Details)
	}
	if changes[len(changes)-1].Details != "change 10" {
		t.Errorf("oldest retained change = %q, want %q", changes[len(changes)-1].Details, "change 10")
	}
}

func TestLog_RecentLimits(t *testing.T) {
	l, _ := newTestLog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		l.RecordChange(ctx, "create", "x", "services", "")
	}

	if got := len(l.RecentChanges(ctx, 3)); got != 3 {
		t.Errorf("RecentChanges(3) len = %d, want 3", got)
	}
	if got := len(l.RecentChanges(ctx, 50)); got != 5 {
		t.Errorf("RecentChanges(50) len = %d, want 5", got)
	}
}

func TestLog_Stats(t *testing.T) {
	l, clock := newTestLog(t)
	ctx := context.Background()

	// Two logins; only the first logs out.
	first, _ := l.RecordLogin(ctx, "", "")
	clock.advance(30 * time.Minute)
	l.RecordLogin(ctx, "", "")
	clock.advance(10 * time.Minute)
	if err := l.RecordLogout(ctx, first); err != nil {
		t.Fatalf("RecordLogout() error = %v", err)
	}

	stats := l.Stats(ctx)
	if stats.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2", stats.TotalSessions)
	}

	sessions := l.RecentSessions(ctx, 2)
	if sessions[1].Duration == nil || *sessions[1].Duration != 40 {
		t.Errorf("first session duration = %v, want 40", sessions[1].Duration)
	}
	if sessions[0].Duration != nil {
		t.Error("second session should still be open")
	}

	// Average covers closed sessions only.
	if stats.AverageSessionDuration == nil || *stats.AverageSessionDuration != 40 {
		t.Errorf("AverageSessionDuration = %v, want 40", stats.AverageSessionDuration)
	}

	if stats.LastLogin == nil || !stats.LastLogin.Equal(sessions[0].LoginTime) {
		t.Errorf("LastLogin = %v, want most recent login time", stats.LastLogin)
	}
}

func TestLog_StatsChangesThisWeek(t *testing.T) {
	l, clock := newTestLog(t)
	ctx := context.Background()

	l.RecordChange(ctx, "create", "old", "projects", "")
	clock.advance(8 * 24 * time.Hour)
	l.RecordChange(ctx, "create", "recent", "projects", "")
	clock.advance(time.Hour)

	stats := l.Stats(ctx)
	if stats.TotalChanges != 2 {
		t.Errorf("TotalChanges = %d, want 2", stats.TotalChanges)
	}
	if stats.ChangesThisWeek != 1 {
		t.Errorf("ChangesThisWeek = %d, want 1", stats.ChangesThisWeek)
	}
}

func TestLog_StatsEmpty(t *testing.T) {
	l, _ := newTestLog(t)

	stats := l.Stats(context.Background())
	if stats.TotalSessions != 0 || stats.TotalChanges != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
	if stats.LastLogin != nil || stats.AverageSessionDuration != nil {
		t.Error("empty log should have nil LastLogin and AverageSessionDuration")
	}
}
