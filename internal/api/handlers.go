package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/circleworks/beacon/internal/geo"
	"github.com/circleworks/beacon/internal/intent"
	"github.com/circleworks/beacon/internal/session"
	"github.com/circleworks/beacon/internal/types"
	"github.com/circleworks/beacon/internal/validation"
)

// Handler implements the API handlers
type Handler struct {
	sessions *session.Manager
	resolver geo.Resolver
	version  string
}

// NewHandler creates a new Handler.
func NewHandler(sessions *session.Manager, resolver geo.Resolver, version string) *Handler {
	return &Handler{
		sessions: sessions,
		resolver: resolver,
		version:  version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := types.HealthResponse{
		Status:   "healthy",
		Version:  h.version,
		Sessions: h.sessions.Count(),
	}

	writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /api/v1/stats for the request's session.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	sess := MustSessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, sess.Store.Stats())
}

// CreateIntent handles POST /api/v1/intents. The author is always the
// acting user; an author field in the payload is ignored.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var input types.NewIntent
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	input.Author = Actor(r)

	if errs := validation.ValidateNewIntent(input); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Intent contains invalid fields", errs)
		return
	}

	sess := MustSessionFromContext(r.Context())
	created := sess.Store.Create(input)

	slog.Info("intent created",
		"session_id", sess.ID,
		"intent_id", created.ID,
		"kind", created.Kind,
		"level", created.Level,
	)
	writeJSON(w, http.StatusCreated, created)
}

// ListIntents handles GET /api/v1/intents. Query parameters:
//
//	audience   mine | incoming (optional)
//	kind       all | ask | offer | rally
//	level      all | L1 | L2 | L3
//	radius_km  radius for geographic filtering
//	city       free text; resolved through the session's geo state.
//	           Present-but-blank clears the geo filter; absent leaves
//	           the session's current filter in place.
func (h *Handler) ListIntents(w http.ResponseWriter, r *http.Request) {
	sess := MustSessionFromContext(r.Context())
	query := r.URL.Query()

	if v := query.Get("radius_km"); v != "" {
		km, err := strconv.ParseFloat(v, 64)
		if err != nil || km < 0 {
			WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("invalid radius_km %q", v))
			return
		}
		sess.Search.SetRadius(km)
	}

	if query.Has("city") {
		if _, err := sess.Search.SetCity(r.Context(), query.Get("city")); err != nil {
			// Previous resolved state is preserved; report the failure.
			MapDomainError(w, r, err)
			return
		}
	}

	geoFilter := sess.Search.Current()
	criteria := types.FilterCriteria{
		Audience: types.Audience(query.Get("audience")),
		Kind:     query.Get("kind"),
		Level:    query.Get("level"),
		Geo:      &geoFilter,
	}

	filtered := intent.Apply(sess.Store.List(), Actor(r), criteria)

	resp := types.IntentListResponse{Intents: filtered}
	if geoFilter.City != "" {
		resp.Geo = &geoFilter
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetIntent handles GET /api/v1/intents/{id}
func (h *Handler) GetIntent(w http.ResponseWriter, r *http.Request) {
	id, ok := intentID(w, r)
	if !ok {
		return
	}

	sess := MustSessionFromContext(r.Context())
	in, err := sess.Store.Get(id)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// EditIntent handles PATCH /api/v1/intents/{id}
func (h *Handler) EditIntent(w http.ResponseWriter, r *http.Request) {
	id, ok := intentID(w, r)
	if !ok {
		return
	}

	var edit types.IntentEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	sess := MustSessionFromContext(r.Context())
	in, err := sess.Store.Edit(id, edit)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// Pledge handles POST /api/v1/intents/{id}/contributions. The contributor
// is always the acting user; a contributor field in the payload is ignored.
func (h *Handler) Pledge(w http.ResponseWriter, r *http.Request) {
	id, ok := intentID(w, r)
	if !ok {
		return
	}

	var input types.ContributionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	input.Contributor = Actor(r)

	if errs := validation.ValidateContributionInput(input); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Contribution contains invalid fields", errs)
		return
	}

	sess := MustSessionFromContext(r.Context())
	c, err := sess.Store.Pledge(id, input)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	slog.Info("contribution pledged",
		"session_id", sess.ID,
		"intent_id", id,
		"contribution_id", c.ID,
		"type", c.Type,
	)
	writeJSON(w, http.StatusCreated, c)
}

// ReceiveContribution handles POST /api/v1/intents/{id}/contributions/{cid}/receive
func (h *Handler) ReceiveContribution(w http.ResponseWriter, r *http.Request) {
	id, ok := intentID(w, r)
	if !ok {
		return
	}
	cid := chi.URLParam(r, "cid")
	if err := validation.ValidateULID("cid", cid); err != nil {
		WriteProblemWithErrors(w, r, "Invalid contribution id", []validation.ValidationError{*err})
		return
	}

	sess := MustSessionFromContext(r.Context())
	c, err := sess.Store.MarkReceived(id, cid)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CompleteIntent handles POST /api/v1/intents/{id}/complete
func (h *Handler) CompleteIntent(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, types.StatusCompleted)
}

// ArchiveIntent handles POST /api/v1/intents/{id}/archive
func (h *Handler) ArchiveIntent(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, types.StatusArchived)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, target types.Status) {
	id, ok := intentID(w, r)
	if !ok {
		return
	}

	var outcome types.Outcome
	if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	// Rating range is a boundary concern; the state machine stores what
	// it is given.
	if errs := validation.ValidateOutcome(outcome); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Outcome contains invalid fields", errs)
		return
	}

	sess := MustSessionFromContext(r.Context())
	in, err := sess.Store.Transition(id, target, outcome)
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	slog.Info("intent closed",
		"session_id", sess.ID,
		"intent_id", id,
		"status", in.Status,
		"reason", outcome.Reason,
	)
	writeJSON(w, http.StatusOK, in)
}

// Geocode handles GET /api/v1/geocode?q=…
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	place, err := h.resolver.Resolve(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

// intentID extracts and validates the {id} path parameter.
func intentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateULID("id", id); err != nil {
		WriteProblemWithErrors(w, r, "Invalid intent id", []validation.ValidationError{*err})
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
