package geo

import (
	"context"
	"errors"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/circleworks/beacon/internal/types"
)

// Compile-time interface check
var _ Resolver = (*MemoResolver)(nil)

// MemoResolver memoizes successful resolutions keyed by normalized city
// string, so retyping or re-submitting the same city never issues a second
// lookup. Failures are not memoized. An optional persistent cache sits
// behind the in-process LRU.
type MemoResolver struct {
	inner Resolver
	memo  *lru.Cache[string, types.Place]
	disk  *Cache // nil when persistence is disabled
}

// NewMemoResolver wraps inner with an LRU memo of the given size.
// disk may be nil.
func NewMemoResolver(inner Resolver, size int, disk *Cache) (*MemoResolver, error) {
	memo, err := lru.New[string, types.Place](size)
	if err != nil {
		return nil, err
	}
	return &MemoResolver{inner: inner, memo: memo, disk: disk}, nil
}

// Resolve returns the memoized place for the normalized city when present,
// consulting the persistent cache before falling through to the network.
func (m *MemoResolver) Resolve(ctx context.Context, city string) (*types.Place, error) {
	key := NormalizeCity(city)
	if key == "" {
		return nil, ErrEmptyQuery
	}

	if place, ok := m.memo.Get(key); ok {
		return &place, nil
	}

	if m.disk != nil {
		if place, ok, err := m.disk.Get(ctx, key); err != nil {
			slog.Warn("geocode cache read failed", "city", key, "error", err)
		} else if ok {
			m.memo.Add(key, place)
			return &place, nil
		}
	}

	place, err := m.inner.Resolve(ctx, city)
	if err != nil {
		return nil, err
	}

	m.memo.Add(key, *place)
	if m.disk != nil {
		if err := m.disk.Put(ctx, key, *place); err != nil {
			slog.Warn("geocode cache write failed", "city", key, "error", err)
		}
	}

	return place, nil
}

// Contains reports whether the city is memoized in process, without
// touching the persistent cache or the network.
func (m *MemoResolver) Contains(city string) bool {
	return m.memo.Contains(NormalizeCity(city))
}

// IsTransient reports whether err is a recoverable lookup failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
