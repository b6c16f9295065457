package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/circleworks/beacon/internal/types"
)

func newIntentFixture() types.NewIntent {
	return types.NewIntent{
		Kind:   types.KindAsk,
		Level:  types.LevelFriend,
		Author: "ana",
	}
}

func TestValidateSessionID(t *testing.T) {
	valid := []string{"default", "user-42", "A1", "x"}
	for _, id := range valid {
		if err := ValidateSessionID(id); err != nil {
			t.Errorf("ValidateSessionID(%q): unexpected error %v", id, err)
		}
	}

	invalid := []string{"", "-leading", "trailing-", "has space", "dot.dot", strings.Repeat("a", 129)}
	for _, id := range invalid {
		if err := ValidateSessionID(id); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("ValidateSessionID(%q): got %v, want ErrInvalidSessionID", id, err)
		}
	}
}

func TestManager_GetCreatesOnce(t *testing.T) {
	m := NewManager(nil)

	a, err := m.Get("alpha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	b, err := m.Get("alpha")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}

	if a != b {
		t.Error("same ID returned distinct sessions")
	}
	if m.Count() != 1 {
		t.Errorf("Count: got %d, want 1", m.Count())
	}
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := NewManager(nil)

	a, _ := m.Get("alpha")
	b, _ := m.Get("beta")

	a.Store.Create(newIntentFixture())
	if b.Store.Count() != 0 {
		t.Error("intent leaked across sessions")
	}
}

func TestManager_PruneIdle(t *testing.T) {
	m := NewManager(nil)

	stale, _ := m.Get("stale")
	m.Get("fresh")

	stale.mu.Lock()
	stale.lastAccessed = time.Now().UTC().Add(-time.Hour)
	stale.mu.Unlock()

	if pruned := m.PruneIdle(30 * time.Minute); pruned != 1 {
		t.Fatalf("PruneIdle: got %d, want 1", pruned)
	}
	if m.Count() != 1 {
		t.Errorf("Count after prune: got %d, want 1", m.Count())
	}

	// Pruned session is recreated empty on next access.
	again, err := m.Get("stale")
	if err != nil {
		t.Fatalf("Get after prune failed: %v", err)
	}
	if again == stale {
		t.Error("pruned session instance was reused")
	}
}
