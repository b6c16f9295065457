package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIntent_MarshalNilSlices(t *testing.T) {
	data, err := json.Marshal(Intent{ID: "01JTEST000000000000000000"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	s := string(data)
	if strings.Contains(s, `"tags":null`) {
		t.Errorf("tags marshalled as null: %s", s)
	}
	if !strings.Contains(s, `"tags":[]`) {
		t.Errorf("expected empty tags array: %s", s)
	}
	if !strings.Contains(s, `"contributions":[]`) {
		t.Errorf("expected empty contributions array: %s", s)
	}
}

func TestIntentListResponse_MarshalNilSlices(t *testing.T) {
	data, err := json.Marshal(IntentListResponse{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"intents":[]`) {
		t.Errorf("expected empty intents array: %s", data)
	}
}

func TestStatsResponse_MarshalNilMaps(t *testing.T) {
	data, err := json.Marshal(StatsResponse{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"by_status":{}`) || !strings.Contains(s, `"by_kind":{}`) {
		t.Errorf("expected empty maps: %s", s)
	}
}

func TestStatus_Terminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusActive, false},
		{StatusCompleted, true},
		{StatusArchived, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%q): got %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestGeoFilter_Resolved(t *testing.T) {
	lat, lng := 43.6532, -79.3832

	f := GeoFilter{City: "toronto", RadiusKm: 25}
	if f.Resolved() {
		t.Error("unresolved filter reported as resolved")
	}

	f.Lat, f.Lng = &lat, &lng
	if !f.Resolved() {
		t.Error("resolved filter reported as unresolved")
	}
	if p := f.Center(); p.Lat != lat || p.Lng != lng {
		t.Errorf("Center: got %+v", p)
	}
}
