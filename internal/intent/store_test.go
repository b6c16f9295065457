package intent

import (
	"errors"
	"testing"

	"github.com/circleworks/beacon/internal/types"
)

func newAsk(s *Store, author string) *types.Intent {
	return s.Create(types.NewIntent{
		Kind:   types.KindAsk,
		Level:  types.LevelFriend,
		Author: author,
		Tags:   []string{"tools"},
	})
}

func TestStore_CreateAssignsFields(t *testing.T) {
	s := NewStore()

	in := s.Create(types.NewIntent{
		Kind:    types.KindOffer,
		Level:   types.LevelPublic,
		Author:  "You",
		Tags:    []string{"garden", "spring"},
		Context: "seedlings to give away",
		Location: &types.Location{
			City: "Toronto", Country: "Canada", Lat: 43.65, Lng: -79.38,
		},
	})

	if in.ID == "" {
		t.Error("no id assigned")
	}
	if in.Status != types.StatusActive {
		t.Errorf("status: got %q, want active", in.Status)
	}
	if in.Outcome != nil {
		t.Error("new intent has an outcome")
	}
	if len(in.Contributions) != 0 {
		t.Errorf("new intent has %d contributions", len(in.Contributions))
	}
	if in.CreatedAt.IsZero() {
		t.Error("no created timestamp")
	}

	got, err := s.Get(in.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Context != "seedlings to give away" {
		t.Errorf("Context: got %q", got.Context)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := NewStore()
	if _, err := s.Get("01JMISSING0000000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestStore_ListInsertionOrder(t *testing.T) {
	s := NewStore()
	first := newAsk(s, "ana")
	second := newAsk(s, "bo")
	third := newAsk(s, "You")

	got := s.List()
	if len(got) != 3 {
		t.Fatalf("got %d intents, want 3", len(got))
	}
	for i, want := range []string{first.ID, second.ID, third.ID} {
		if got[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestStore_ListReturnsCopies(t *testing.T) {
	s := NewStore()
	in := newAsk(s, "ana")

	list := s.List()
	list[0].Tags[0] = "mutated"
	list[0].Author = "mallory"

	got, _ := s.Get(in.ID)
	if got.Tags[0] != "tools" || got.Author != "ana" {
		t.Errorf("caller mutation leaked into store: %+v", got)
	}
}

func TestStore_Edit(t *testing.T) {
	s := NewStore()
	in := newAsk(s, "You")

	tags := []string{"tools", "urgent"}
	ctx := "need a tile saw this weekend"
	got, err := s.Edit(in.ID, types.IntentEdit{Tags: &tags, Context: &ctx})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if len(got.Tags) != 2 || got.Context != ctx {
		t.Errorf("edit not applied: %+v", got)
	}

	// Nil fields are untouched.
	got, err = s.Edit(in.ID, types.IntentEdit{})
	if err != nil {
		t.Fatalf("empty Edit failed: %v", err)
	}
	if len(got.Tags) != 2 || got.Context != ctx {
		t.Errorf("empty edit clobbered fields: %+v", got)
	}
}

func TestStore_EditClosedIntent(t *testing.T) {
	s := NewStore()
	in := newAsk(s, "You")
	if _, err := s.Transition(in.ID, types.StatusCompleted, types.Outcome{Reason: "fulfilled", Rating: 5}); err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	ctx := "still editing"
	if _, err := s.Edit(in.ID, types.IntentEdit{Context: &ctx}); !errors.Is(err, ErrIntentClosed) {
		t.Fatalf("got %v, want ErrIntentClosed", err)
	}
}

func TestStore_PledgeAppends(t *testing.T) {
	s := NewStore()
	in := newAsk(s, "ana")

	input := types.ContributionInput{
		Contributor:       "bo",
		Type:              types.ContributionServices,
		Details:           "two hours of help",
		ReturnExpectation: types.ReturnNothing,
	}

	c, err := s.Pledge(in.ID, input)
	if err != nil {
		t.Fatalf("Pledge failed: %v", err)
	}
	if c.ID == "" || c.Status != types.ContributionPledged {
		t.Errorf("contribution: %+v", c)
	}

	got, _ := s.Get(in.ID)
	if len(got.Contributions) != 1 {
		t.Fatalf("got %d contributions, want 1", len(got.Contributions))
	}
}

func TestStore_PledgeNotIdempotent(t *testing.T) {
	s := NewStore()
	in := newAsk(s, "ana")

	input := types.ContributionInput{
		Contributor:       "bo",
		Type:              types.ContributionGoods,
		Details:           "one ladder",
		ReturnExpectation: types.ReturnCredit,
	}

	first, err := s.Pledge(in.ID, input)
	if err != nil {
		t.Fatalf("first Pledge failed: %v", err)
	}
	second, err := s.Pledge(in.ID, input)
	if err != nil {
		t.Fatalf("second Pledge failed: %v", err)
	}

	if first.ID == second.ID {
		t.Error("identical pledges were merged")
	}
	got, _ := s.Get(in.ID)
	if len(got.Contributions) != 2 {
		t.Errorf("got %d contributions, want 2 distinct entries", len(got.Contributions))
	}
	// Pledge order is insertion order.
	if got.Contributions[0].ID != first.ID || got.Contributions[1].ID != second.ID {
		t.Error("pledge order not preserved")
	}
}

func TestStore_PledgeMissingIntent(t *testing.T) {
	s := NewStore()
	_, err := s.Pledge("01JMISSING0000000000000000", types.ContributionInput{Contributor: "bo"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestStore_MarkReceived(t *testing.T) {
	s := NewStore()
	in := newAsk(s, "ana")
	c, _ := s.Pledge(in.ID, types.ContributionInput{Contributor: "bo", Type: types.ContributionMonetary, Value: "50"})

	got, err := s.MarkReceived(in.ID, c.ID)
	if err != nil {
		t.Fatalf("MarkReceived failed: %v", err)
	}
	if got.Status != types.ContributionReceived {
		t.Errorf("status: got %q, want Received", got.Status)
	}
	if got.Contributor != "bo" {
		t.Errorf("contributor changed: %q", got.Contributor)
	}

	// Received is terminal for a contribution.
	if _, err := s.MarkReceived(in.ID, c.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
}

func TestStore_MarkReceivedMissingContribution(t *testing.T) {
	s := NewStore()
	in := newAsk(s, "ana")

	_, err := s.MarkReceived(in.ID, "01JMISSING0000000000000000")
	if !errors.Is(err, ErrContributionNotFound) {
		t.Fatalf("got %v, want ErrContributionNotFound", err)
	}
}

func TestStore_Stats(t *testing.T) {
	s := NewStore()
	a := newAsk(s, "ana")
	newAsk(s, "bo")
	s.Create(types.NewIntent{Kind: types.KindRally, Level: types.LevelPublic, Author: "cam"})
	s.Pledge(a.ID, types.ContributionInput{Contributor: "bo"})
	s.Transition(a.ID, types.StatusArchived, types.Outcome{Reason: "expired"})

	stats := s.Stats()
	if stats.IntentCount != 3 {
		t.Errorf("IntentCount: got %d, want 3", stats.IntentCount)
	}
	if stats.ByStatus["active"] != 2 || stats.ByStatus["archived"] != 1 {
		t.Errorf("ByStatus: %+v", stats.ByStatus)
	}
	if stats.ByKind["ask"] != 2 || stats.ByKind["rally"] != 1 {
		t.Errorf("ByKind: %+v", stats.ByKind)
	}
	if stats.Contributions != 1 {
		t.Errorf("Contributions: got %d, want 1", stats.Contributions)
	}
}
