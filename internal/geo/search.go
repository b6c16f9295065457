package geo

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/circleworks/beacon/internal/types"
)

// ErrStale means a newer lookup superseded this one while it was in
// flight; its result was discarded.
var ErrStale = errors.New("superseded by newer lookup")

// Search holds one session's geographic filter state. It serialises city
// resolution so a lookup for an older city string never overwrites the
// result of a newer one: each SetCity call takes a generation token, and
// results arriving under an old token are dropped.
//
// A transient lookup failure leaves the last successfully resolved filter
// untouched, so an existing radius filter keeps working until the city
// resolves again.
type Search struct {
	resolver Resolver

	mu      sync.Mutex
	gen     uint64
	current types.GeoFilter
}

// NewSearch creates an empty Search over the given resolver.
func NewSearch(resolver Resolver) *Search {
	return &Search{resolver: resolver}
}

// Current returns a copy of the filter state.
func (s *Search) Current() types.GeoFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetRadius updates the radius without touching the resolved coordinates.
func (s *Search) SetRadius(km float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.RadiusKm = km
}

// Clear resets the filter to its empty state.
func (s *Search) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.current = types.GeoFilter{}
}

// SetCity resolves city and installs the result as the filter center.
// Blank input clears the filter. On ErrNotFound or a transient failure the
// previous resolved state is preserved and the error is returned. If a
// newer SetCity call started while this one was resolving, the late result
// is discarded and ErrStale is returned.
func (s *Search) SetCity(ctx context.Context, city string) (types.GeoFilter, error) {
	if strings.TrimSpace(city) == "" {
		s.Clear()
		return s.Current(), nil
	}

	s.mu.Lock()
	// Unchanged city with coordinates already in hand needs no lookup.
	if s.current.Resolved() && NormalizeCity(city) == s.current.City {
		current := s.current
		s.mu.Unlock()
		return current, nil
	}
	s.gen++
	token := s.gen
	s.mu.Unlock()

	place, err := s.resolver.Resolve(ctx, city)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.gen {
		return s.current, ErrStale
	}
	if err != nil {
		// Keep last-known-good state on any failure.
		return s.current, err
	}

	s.current = types.GeoFilter{
		City:        NormalizeCity(city),
		DisplayName: place.DisplayName,
		RadiusKm:    s.current.RadiusKm,
		Lat:         &place.Lat,
		Lng:         &place.Lng,
	}
	return s.current, nil
}
