package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/model"

	"github.com/rs/zerolog"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newStore(cfg Config, clk *fakeClock) *Store {
	nop := zerolog.Nop()
	return New(cfg, &nop, WithClock(clk.Now))
}

func TestResolve_CreatesAndReuses(t *testing.T) {
	clk := newClock()
	s := newStore(Config{MaxSessions: 10, MaxMessages: 5}, clk)

	first := s.Resolve("abc")
	if first.ID != "abc" || !first.CreatedAt.Equal(clk.Now()) {
		t.Fatalf("unexpected session: %+v", first)
	}
	if _, err := s.Append("abc", model.RoleUser, "hi", nil); err != nil {
		t.Fatalf("Append: %v", err)
	}

	clk.Advance(time.Minute)
	second := s.Resolve("abc")
	third := s.Resolve("abc")
	if len(second.Messages) != 1 || len(third.Messages) != 1 {
		t.Fatalf("resolve changed history: %d / %d", len(second.Messages), len(third.Messages))
	}
	if third.LastActivity.Before(second.LastActivity) || !second.LastActivity.Equal(clk.Now()) {
		t.Fatalf("lastActivity not refreshed: %v -> %v", second.LastActivity, third.LastActivity)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d", s.Len())
	}
}

func TestResolve_EmptyIDIsGenerated(t *testing.T) {
	clk := newClock()
	nop := zerolog.Nop()
	n := 0
	s := New(Config{}, &nop, WithClock(clk.Now), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}))

	a := s.Resolve("")
	b := s.Resolve("")
	if a.ID != "gen-1" || b.ID != "gen-2" {
		t.Fatalf("ids = %q, %q", a.ID, b.ID)
	}
}

func TestResolve_EvictsOldestAtCapacity(t *testing.T) {
	clk := newClock()
	const limit = 3
	s := newStore(Config{MaxSessions: limit}, clk)

	for i := 0; i < limit; i++ {
		s.Resolve(fmt.Sprintf("s%d", i))
		clk.Advance(time.Second)
	}
	// s0 becomes the most recent; s1 is now the oldest
	s.Resolve("s0")
	clk.Advance(time.Second)

	s.Resolve("new")
	if s.Len() != limit {
		t.Fatalf("Len = %d, want %d", s.Len(), limit)
	}
	if _, ok := s.Get("s1"); ok {
		t.Fatalf("s1 should have been evicted")
	}
	for _, id := range []string{"s0", "s2", "new"} {
		if _, ok := s.Get(id); !ok {
			t.Fatalf("%s missing", id)
		}
	}
}

func TestAppend_TruncatesOldestFirst(t *testing.T) {
	clk := newClock()
	const limit = 4
	s := newStore(Config{MaxMessages: limit}, clk)
	s.Resolve("x")

	for i := 1; i <= 10; i++ {
		msg, err := s.Append("x", model.RoleUser, fmt.Sprintf("m%d", i), nil)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if msg.ID != fmt.Sprintf("x-%d", i) {
			t.Fatalf("message id = %q", msg.ID)
		}
	}

	hist, err := s.History("x")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != limit {
		t.Fatalf("history len = %d", len(hist))
	}
	for i, m := range hist {
		if want := fmt.Sprintf("m%d", 7+i); m.Content != want {
			t.Fatalf("hist[%d] = %q, want %q", i, m.Content, want)
		}
	}
	sess, _ := s.Get("x")
	if sess.MessageCount != 10 {
		t.Fatalf("MessageCount = %d", sess.MessageCount)
	}
}

func TestHistory_IsACopy(t *testing.T) {
	s := newStore(Config{}, newClock())
	s.Resolve("x")
	_, _ = s.Append("x", model.RoleUser, "original", nil)

	hist, _ := s.History("x")
	hist[0].Content = "changed"

	again, _ := s.History("x")
	if again[0].Content != "original" {
		t.Fatalf("store mutated through History copy")
	}
}

func TestGet_DoesNotTouch(t *testing.T) {
	clk := newClock()
	s := newStore(Config{}, clk)
	created := s.Resolve("x").LastActivity

	clk.Advance(time.Hour)
	sess, ok := s.Get("x")
	if !ok || !sess.LastActivity.Equal(created) {
		t.Fatalf("Get touched the session: %v", sess.LastActivity)
	}
}

func TestMissingSession(t *testing.T) {
	s := newStore(Config{}, newClock())

	if _, err := s.Append("nope", model.RoleUser, "x", nil); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("Append err = %v", err)
	}
	if _, err := s.History("nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("History err = %v", err)
	}
	if err := s.SetPreference("nope", "k", 1); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("SetPreference err = %v", err)
	}
	if s.Remove("nope") {
		t.Fatalf("Remove reported success for missing session")
	}
}

func TestPreferencesAndContext(t *testing.T) {
	s := newStore(Config{}, newClock())
	s.Resolve("x")
	if err := s.SetPreference("x", "tone", "casual"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetContext("x", "lastCategory", "defi"); err != nil {
		t.Fatal(err)
	}

	sess, _ := s.Get("x")
	if sess.Preferences["tone"] != "casual" || sess.Context["lastCategory"] != "defi" {
		t.Fatalf("unexpected maps: %+v %+v", sess.Preferences, sess.Context)
	}
	sess.Preferences["tone"] = "formal"
	again, _ := s.Get("x")
	if again.Preferences["tone"] != "casual" {
		t.Fatalf("store mutated through Get copy")
	}
}

func TestReap_RemovesIdleOnly(t *testing.T) {
	clk := newClock()
	s := newStore(Config{IdleTimeout: 10 * time.Minute}, clk)

	s.Resolve("stale")
	clk.Advance(8 * time.Minute)
	s.Resolve("fresh")
	clk.Advance(5 * time.Minute)

	if n := s.Reap(clk.Now()); n != 1 {
		t.Fatalf("Reap removed %d, want 1", n)
	}
	if _, ok := s.Get("stale"); ok {
		t.Fatalf("stale survived")
	}
	if _, ok := s.Get("fresh"); !ok {
		t.Fatalf("fresh was reaped")
	}
	// exactly at the timeout is not yet idle
	clk.Advance(5 * time.Minute)
	if n := s.Reap(clk.Now()); n != 0 {
		t.Fatalf("Reap at boundary removed %d", n)
	}
}

func TestRemove(t *testing.T) {
	s := newStore(Config{}, newClock())
	s.Resolve("x")
	if !s.Remove("x") || s.Len() != 0 {
		t.Fatalf("Remove failed")
	}
}

func TestConcurrentAccess(t *testing.T) {
	clk := newClock()
	s := newStore(Config{MaxSessions: 8, MaxMessages: 3}, clk)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("s%d", (g+i)%12)
				s.Resolve(id)
				_, _ = s.Append(id, model.RoleUser, "x", nil)
				_, _ = s.History(id)
				if i%10 == 0 {
					s.Reap(clk.Now())
				}
			}
		}(g)
	}
	wg.Wait()

	if s.Len() > 8 {
		t.Fatalf("Len = %d exceeds capacity", s.Len())
	}
	for i := 0; i < 12; i++ {
		if hist, err := s.History(fmt.Sprintf("s%d", i)); err == nil && len(hist) > 3 {
			t.Fatalf("history len %d exceeds max", len(hist))
		}
	}
}

func TestReap_KeepsSessionTouchedAfterScan(t *testing.T) {
	clk := newClock()
	s := newStore(Config{IdleTimeout: time.Minute}, clk)

	s.Resolve("busy")
	s.Resolve("idle")
	clk.Advance(2 * time.Minute)

	// a request lands on "busy" while the reaper is between scan and delete
	s.afterScan = func() {
		clk.Advance(time.Second)
		s.Resolve("busy")
	}
	if n := s.Reap(clk.Now()); n != 1 {
		t.Fatalf("Reap removed %d, want 1", n)
	}
	if _, ok := s.Get("busy"); !ok {
		t.Fatalf("session touched after the scan was reaped")
	}
	if _, ok := s.Get("idle"); ok {
		t.Fatalf("idle session survived")
	}
}
