package types

import (
	"encoding/json"
	"time"
)

// Kind classifies what an intent asks of the network.
type Kind string

const (
	KindAsk   Kind = "ask"
	KindOffer Kind = "offer"
	KindRally Kind = "rally"
)

// Level is the social-distance tier an intent is visible at.
type Level string

const (
	LevelDirect Level = "L1" // direct connection
	LevelFriend Level = "L2" // friend-of-friend
	LevelPublic Level = "L3" // public / anonymous reach
)

// Status is the lifecycle state of an intent.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusArchived
}

// ContributionType classifies what a contributor pledges.
type ContributionType string

const (
	ContributionServices ContributionType = "services"
	ContributionMonetary ContributionType = "monetary"
	ContributionGoods    ContributionType = "goods"
)

// ReturnExpectation is what the contributor expects back.
type ReturnExpectation string

const (
	ReturnNothing  ReturnExpectation = "nothing"
	ReturnSpecific ReturnExpectation = "specific"
	ReturnCredit   ReturnExpectation = "credit"
)

// ContributionStatus tracks a pledge from commitment to delivery.
type ContributionStatus string

const (
	ContributionPledged  ContributionStatus = "Pledged"
	ContributionReceived ContributionStatus = "Received"
)

// GeoPoint is a WGS-84 coordinate pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location anchors an intent to a place.
type Location struct {
	City    string  `json:"city"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Point returns the location's coordinates.
func (l Location) Point() GeoPoint {
	return GeoPoint{Lat: l.Lat, Lng: l.Lng}
}

// Contribution is a pledge made against an intent.
// ID and Contributor are immutable once created; only Status may change,
// and only from Pledged to Received.
type Contribution struct {
	ID                string             `json:"id"`
	Contributor       string             `json:"contributor"`
	Type              ContributionType   `json:"type"`
	Details           string             `json:"details,omitempty"`
	Value             string             `json:"value,omitempty"`
	ReturnExpectation ReturnExpectation  `json:"return_expectation"`
	Status            ContributionStatus `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
}

// Outcome records why and how an intent was closed.
// Present exactly when the intent's status is terminal.
type Outcome struct {
	Reason  string `json:"reason"`
	Comment string `json:"comment,omitempty"`
	Rating  int    `json:"rating"`
}

// Intent is a posted social signal with a lifecycle and geo/social metadata.
type Intent struct {
	ID            string         `json:"id"`
	Kind          Kind           `json:"kind"`
	Level         Level          `json:"level"`
	Author        string         `json:"author"`
	Tags          []string       `json:"tags"`
	Context       string         `json:"context,omitempty"`
	Status        Status         `json:"status"`
	Location      *Location      `json:"location,omitempty"`
	Contributions []Contribution `json:"contributions"`
	Outcome       *Outcome       `json:"outcome,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewIntent is the input type for posting an intent (without generated fields).
type NewIntent struct {
	Kind     Kind      `json:"kind"`
	Level    Level     `json:"level"`
	Author   string    `json:"author"`
	Tags     []string  `json:"tags"`
	Context  string    `json:"context,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// ContributionInput is the input type for pledging a contribution.
type ContributionInput struct {
	Contributor       string            `json:"contributor"`
	Type              ContributionType  `json:"type"`
	Details           string            `json:"details,omitempty"`
	Value             string            `json:"value,omitempty"`
	ReturnExpectation ReturnExpectation `json:"return_expectation"`
}

// IntentEdit carries the fields an author may change while an intent
// is active. Nil fields are left untouched.
type IntentEdit struct {
	Tags    *[]string `json:"tags,omitempty"`
	Context *string   `json:"context,omitempty"`
}

// Audience selects whose intents a filtered view shows.
type Audience string

const (
	AudienceMine     Audience = "mine"
	AudienceIncoming Audience = "incoming"
)

// FilterAll skips the kind or level predicate.
const FilterAll = "all"

// GeoFilter is a distance-bounded inclusion test around a resolved city.
// Lat/Lng are populated only after City resolves successfully; until then
// the filter is inert.
type GeoFilter struct {
	City        string   `json:"city"`
	DisplayName string   `json:"display_name,omitempty"`
	RadiusKm    float64  `json:"radius_km"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
}

// Resolved reports whether the filter's city has coordinates.
func (g GeoFilter) Resolved() bool {
	return g.Lat != nil && g.Lng != nil
}

// Center returns the resolved coordinates. Valid only when Resolved().
func (g GeoFilter) Center() GeoPoint {
	return GeoPoint{Lat: *g.Lat, Lng: *g.Lng}
}

// FilterCriteria is the full predicate set a view applies to a store.
// Kind and Level use FilterAll to skip their predicate; a nil Geo skips
// radius filtering.
type FilterCriteria struct {
	Audience Audience   `json:"audience"`
	Kind     string     `json:"kind"`
	Level    string     `json:"level"`
	Geo      *GeoFilter `json:"geo,omitempty"`
}

// Place is a successful geocoding result.
type Place struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Sessions int    `json:"sessions"`
}

// StatsResponse summarises one session's store.
type StatsResponse struct {
	IntentCount   int            `json:"intent_count"`
	ByStatus      map[string]int `json:"by_status"`
	ByKind        map[string]int `json:"by_kind"`
	Contributions int            `json:"contributions"`
}

// MarshalJSON ensures nil maps in StatsResponse marshal as {} not null.
func (s StatsResponse) MarshalJSON() ([]byte, error) {
	if s.ByStatus == nil {
		s.ByStatus = map[string]int{}
	}
	if s.ByKind == nil {
		s.ByKind = map[string]int{}
	}
	type Alias StatsResponse
	return json.Marshal(Alias(s))
}

// IntentListResponse is the filtered view returned to callers.
type IntentListResponse struct {
	Intents []Intent   `json:"intents"`
	Geo     *GeoFilter `json:"geo,omitempty"`
}

// MarshalJSON ensures nil slices in IntentListResponse marshal as [] not null.
func (r IntentListResponse) MarshalJSON() ([]byte, error) {
	if r.Intents == nil {
		r.Intents = []Intent{}
	}
	type Alias IntentListResponse
	return json.Marshal(Alias(r))
}

// MarshalJSON ensures nil slices in Intent marshal as [] not null.
func (i Intent) MarshalJSON() ([]byte, error) {
	if i.Tags == nil {
		i.Tags = []string{}
	}
	if i.Contributions == nil {
		i.Contributions = []Contribution{}
	}
	type Alias Intent
	return json.Marshal(Alias(i))
}
