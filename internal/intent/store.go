package intent

import (
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/circleworks/beacon/internal/types"
)

// Store is the in-memory intent collection for one session. It owns every
// Intent and Contribution record it holds: accessors hand out copies, and
// all mutation goes through Store methods. Geocoding state lives elsewhere
// and is never touched by store mutations.
type Store struct {
	mu      sync.RWMutex
	order   []string
	intents map[string]*types.Intent
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{intents: make(map[string]*types.Intent)}
}

// Create posts a new intent. The store assigns the id and timestamps,
// forces status to active, and starts with no contributions or outcome.
func (s *Store) Create(input types.NewIntent) *types.Intent {
	now := time.Now().UTC()
	in := &types.Intent{
		ID:            ulid.Make().String(),
		Kind:          input.Kind,
		Level:         input.Level,
		Author:        input.Author,
		Tags:          append([]string(nil), input.Tags...),
		Context:       input.Context,
		Status:        types.StatusActive,
		Contributions: []types.Contribution{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.Location != nil {
		loc := *input.Location
		in.Location = &loc
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[in.ID] = in
	s.order = append(s.order, in.ID)

	return copyIntent(in)
}

// Get returns a copy of the intent with the given id.
func (s *Store) Get(id string) (*types.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	in, ok := s.intents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyIntent(in), nil
}

// List returns copies of all intents in insertion order.
func (s *Store) List() []types.Intent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Intent, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *copyIntent(s.intents[id]))
	}
	return out
}

// Count returns the number of intents in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Edit updates an active intent's mutable fields. Nil edit fields are left
// as they are. Closed intents reject edits with ErrIntentClosed.
func (s *Store) Edit(id string, edit types.IntentEdit) (*types.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.intents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if in.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrIntentClosed, id, in.Status)
	}

	if edit.Tags != nil {
		in.Tags = append([]string(nil), (*edit.Tags)...)
	}
	if edit.Context != nil {
		in.Context = *edit.Context
	}
	in.UpdatedAt = time.Now().UTC()

	return copyIntent(in), nil
}

// Pledge appends a contribution to an active intent. Every call produces a
// distinct entry, even for byte-identical input: each pledge is a separate
// commitment and is never merged or deduplicated.
func (s *Store) Pledge(id string, input types.ContributionInput) (*types.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.intents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if in.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrIntentClosed, id, in.Status)
	}

	c := types.Contribution{
		ID:                ulid.Make().String(),
		Contributor:       input.Contributor,
		Type:              input.Type,
		Details:           input.Details,
		Value:             input.Value,
		ReturnExpectation: input.ReturnExpectation,
		Status:            types.ContributionPledged,
		CreatedAt:         time.Now().UTC(),
	}
	in.Contributions = append(in.Contributions, c)
	in.UpdatedAt = c.CreatedAt

	return &c, nil
}

// MarkReceived moves a contribution from Pledged to Received. That is the
// only mutation a contribution admits; id and contributor are immutable.
func (s *Store) MarkReceived(intentID, contributionID string) (*types.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, intentID)
	}

	for i := range in.Contributions {
		c := &in.Contributions[i]
		if c.ID != contributionID {
			continue
		}
		if c.Status == types.ContributionReceived {
			return nil, fmt.Errorf("%w: contribution %s already received", ErrInvalidTransition, contributionID)
		}
		c.Status = types.ContributionReceived
		in.UpdatedAt = time.Now().UTC()
		out := *c
		return &out, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrContributionNotFound, contributionID)
}

// Transition closes an intent via the lifecycle rules in lifecycle.go.
func (s *Store) Transition(id string, target types.Status, outcome types.Outcome) (*types.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.intents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := transition(in, target, outcome); err != nil {
		return nil, err
	}
	return copyIntent(in), nil
}

// Stats summarises the store contents.
func (s *Store) Stats() types.StatsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.StatsResponse{
		IntentCount: len(s.order),
		ByStatus:    map[string]int{},
		ByKind:      map[string]int{},
	}
	for _, in := range s.intents {
		stats.ByStatus[string(in.Status)]++
		stats.ByKind[string(in.Kind)]++
		stats.Contributions += len(in.Contributions)
	}
	return stats
}

// copyIntent returns a deep copy so callers cannot mutate store-owned records.
func copyIntent(in *types.Intent) *types.Intent {
	out := *in
	out.Tags = append([]string(nil), in.Tags...)
	out.Contributions = append([]types.Contribution(nil), in.Contributions...)
	if in.Location != nil {
		loc := *in.Location
		out.Location = &loc
	}
	if in.Outcome != nil {
		o := *in.Outcome
		out.Outcome = &o
	}
	return &out
}
