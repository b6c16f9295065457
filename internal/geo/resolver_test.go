package geo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/circleworks/beacon/internal/types"
)

// mockDoer implements httpDoer for testing without a live provider.
type mockDoer struct {
	resp    *http.Response
	err     error
	calls   int
	lastURL string
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	m.calls++
	m.lastURL = req.URL.String()
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(doer httpDoer) *NominatimClient {
	return &NominatimClient{
		baseURL:   "https://nominatim.example.org",
		userAgent: "beacon-test",
		client:    doer,
	}
}

func TestNominatimClient_ResolveSuccess(t *testing.T) {
	doer := &mockDoer{resp: jsonResponse(http.StatusOK,
		`[{"lat":"43.6534817","lon":"-79.3839347","display_name":"Toronto, Golden Horseshoe, Ontario, Canada"}]`)}

	place, err := newTestClient(doer).Resolve(context.Background(), "Toronto")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if place.Lat != 43.6534817 || place.Lng != -79.3839347 {
		t.Errorf("coordinates: got (%v, %v)", place.Lat, place.Lng)
	}
	if !strings.HasPrefix(place.DisplayName, "Toronto") {
		t.Errorf("display name: got %q", place.DisplayName)
	}
	if !strings.Contains(doer.lastURL, "format=json") || !strings.Contains(doer.lastURL, "q=Toronto") {
		t.Errorf("request URL: got %q", doer.lastURL)
	}
}

func TestNominatimClient_ResolveQueryEscaped(t *testing.T) {
	doer := &mockDoer{resp: jsonResponse(http.StatusOK,
		`[{"lat":"45.5","lon":"-73.55","display_name":"Montreal"}]`)}

	if _, err := newTestClient(doer).Resolve(context.Background(), "Sao Paulo SP"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if strings.Contains(doer.lastURL, " ") {
		t.Errorf("query not escaped: %q", doer.lastURL)
	}
}

func TestNominatimClient_ResolveNoMatch(t *testing.T) {
	doer := &mockDoer{resp: jsonResponse(http.StatusOK, `[]`)}

	_, err := newTestClient(doer).Resolve(context.Background(), "Zzzznotacity")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestNominatimClient_ResolveNetworkFailure(t *testing.T) {
	doer := &mockDoer{err: errors.New("connection refused")}

	_, err := newTestClient(doer).Resolve(context.Background(), "Toronto")
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("got %v, want ErrTransient", err)
	}
}

func TestNominatimClient_ResolveServerError(t *testing.T) {
	doer := &mockDoer{resp: jsonResponse(http.StatusBadGateway, `upstream error`)}

	_, err := newTestClient(doer).Resolve(context.Background(), "Toronto")
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("got %v, want ErrTransient", err)
	}
}

func TestNominatimClient_ResolveBadCoordinates(t *testing.T) {
	doer := &mockDoer{resp: jsonResponse(http.StatusOK,
		`[{"lat":"not-a-number","lon":"-79.38","display_name":"Broken"}]`)}

	_, err := newTestClient(doer).Resolve(context.Background(), "Toronto")
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("got %v, want ErrTransient", err)
	}
}

func TestNominatimClient_ResolveEmptyQuery(t *testing.T) {
	doer := &mockDoer{}

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := newTestClient(doer).Resolve(context.Background(), q)
		if !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("Resolve(%q): got %v, want ErrEmptyQuery", q, err)
		}
	}
	if doer.calls != 0 {
		t.Errorf("blank input issued %d lookups, want 0", doer.calls)
	}
}

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Toronto", "toronto"},
		{"  New  York ", "new york"},
		{"SÃO PAULO", "são paulo"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCity(tt.in); got != tt.want {
			t.Errorf("NormalizeCity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// stubResolver implements Resolver for tests higher up the stack.
type stubResolver struct {
	place *types.Place
	err   error
	calls int
}

func (s *stubResolver) Resolve(ctx context.Context, city string) (*types.Place, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p := *s.place
	return &p, nil
}
