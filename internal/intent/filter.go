package intent

import (
	"github.com/circleworks/beacon/internal/geo"
	"github.com/circleworks/beacon/internal/types"
)

// PolicyUnlocatedPasses names the geographic filtering policy for intents
// without a location: they always pass the radius predicate and so appear
// in every geo-filtered view. The permissive default is deliberate (an
// unlocated intent is "everywhere"), but it is an open product choice;
// flipping this to false would hide unlocated intents from radius-filtered
// views instead.
const PolicyUnlocatedPasses = true

// Apply filters intents for a view. The result is a fresh slice holding an
// order-preserving subsequence of the input; the input is never mutated.
// All predicates must hold:
//
//  1. audience: "mine" keeps intents authored by user, "incoming" drops them;
//  2. kind: skipped when criteria.Kind is "all";
//  3. level: skipped when criteria.Level is "all"; when filtering for L1,
//     intents authored by user match regardless of their stored level, since
//     one's own intents are always at the closest social distance;
//  4. geo: active only when the filter's city has resolved coordinates;
//     an intent then passes when it has no location (PolicyUnlocatedPasses)
//     or lies within RadiusKm of the filter center.
func Apply(intents []types.Intent, user string, criteria types.FilterCriteria) []types.Intent {
	out := make([]types.Intent, 0, len(intents))
	for _, in := range intents {
		if !matchesAudience(in, user, criteria.Audience) {
			continue
		}
		if !matchesKind(in, criteria.Kind) {
			continue
		}
		if !matchesLevel(in, user, criteria.Level) {
			continue
		}
		if !matchesGeo(in, criteria.Geo) {
			continue
		}
		out = append(out, in)
	}
	return out
}

func matchesAudience(in types.Intent, user string, audience types.Audience) bool {
	switch audience {
	case types.AudienceMine:
		return in.Author == user
	case types.AudienceIncoming:
		return in.Author != user
	default:
		return true
	}
}

func matchesKind(in types.Intent, kind string) bool {
	if kind == "" || kind == types.FilterAll {
		return true
	}
	return string(in.Kind) == kind
}

func matchesLevel(in types.Intent, user string, level string) bool {
	if level == "" || level == types.FilterAll {
		return true
	}
	// Self-authored intents are always "closest".
	if level == string(types.LevelDirect) && in.Author == user {
		return true
	}
	return string(in.Level) == level
}

func matchesGeo(in types.Intent, filter *types.GeoFilter) bool {
	if filter == nil || !filter.Resolved() {
		return true
	}
	if in.Location == nil {
		return PolicyUnlocatedPasses
	}
	return geo.DistanceKm(filter.Center(), in.Location.Point()) <= filter.RadiusKm
}
