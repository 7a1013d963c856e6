// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rkohl/conference-central/internal/auth"
	"github.com/rkohl/conference-central/internal/model"
	"github.com/rkohl/conference-central/internal/query"
	"github.com/rkohl/conference-central/internal/repository"
	"github.com/rkohl/conference-central/internal/service"
)

// Handler holds all HTTP handlers for the conference API.
type Handler struct {
	profiles      *service.ProfileService
	conferences   *service.ConferenceService
	sessions      *service.SessionService
	announcements *service.AnnouncementService
	tokens        *auth.Tokens
}

// New constructs a Handler.
func New(
	profiles *service.ProfileService,
	conferences *service.ConferenceService,
	sessions *service.SessionService,
	announcements *service.AnnouncementService,
	tokens *auth.Tokens,
) *Handler {
	return &Handler{
		profiles:      profiles,
		conferences:   conferences,
		sessions:      sessions,
		announcements: announcements,
		tokens:        tokens,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainError maps the error taxonomy to HTTP statuses; anything
// unrecognized is treated as a bad request from the caller.
func writeDomainError(w http.ResponseWriter, err error) {
	var invalid *query.InvalidFilterError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authorization required")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrAlreadyRegistered),
		errors.Is(err, repository.ErrNoSeats),
		errors.Is(err, repository.ErrAlreadyInWishlist):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, query.ErrTooManyInequalityFields), errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return auth.Identity{}, false
	}
	return id, true
}

// Empty slices serialize as [] rather than null for client compatibility.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

type tokenRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// IssueToken handles POST /auth/token
// Development stand-in for an external identity provider: issues a bearer
// token whose stable user id is the given email.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := h.tokens.Issue(auth.Identity{
		UserID:      req.Email,
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// ─── Profile ──────────────────────────────────────────────────────────────────

// GetProfile handles GET /profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	prof, err := h.profiles.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

// SaveProfile handles POST /profile
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req model.SaveProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	prof, err := h.profiles.Save(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

// ─── Conferences ──────────────────────────────────────────────────────────────

// CreateConference handles POST /conferences
func (h *Handler) CreateConference(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req model.CreateConferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	conf, err := h.conferences.Create(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}

// UpdateConference handles PUT /conferences/{key}
func (h *Handler) UpdateConference(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req model.UpdateConferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	conf, err := h.conferences.Update(r.Context(), id, chi.URLParam(r, "key"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// GetConference handles GET /conferences/{key}
func (h *Handler) GetConference(w http.ResponseWriter, r *http.Request) {
	conf, err := h.conferences.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// QueryConferences handles POST /conferences/query
func (h *Handler) QueryConferences(w http.ResponseWriter, r *http.Request) {
	var req model.QueryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	confs, err := h.conferences.Query(r.Context(), req.Filters)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(confs))
}

// ConferencesCreated handles GET /conferences/created
func (h *Handler) ConferencesCreated(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	confs, err := h.conferences.CreatedBy(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conferences")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(confs))
}

// ConferencesAttending handles GET /conferences/attending
func (h *Handler) ConferencesAttending(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	confs, err := h.conferences.Attending(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conferences")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(confs))
}

// Register handles POST /conferences/{key}/registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	registered, err := h.conferences.Register(r.Context(), id, chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BooleanResponse{Data: registered})
}

// Unregister handles DELETE /conferences/{key}/registration
func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	removed, err := h.conferences.Unregister(r.Context(), id, chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BooleanResponse{Data: removed})
}

// ─── Sessions ─────────────────────────────────────────────────────────────────

// CreateSession handles POST /conferences/{key}/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req model.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sess, err := h.sessions.Create(r.Context(), id, chi.URLParam(r, "key"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// ConferenceSessions handles GET /conferences/{key}/sessions
func (h *Handler) ConferenceSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListByConference(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sessions))
}

// ConferenceSessionsByType handles GET /conferences/{key}/sessions/type/{type}
func (h *Handler) ConferenceSessionsByType(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListByConferenceAndType(r.Context(),
		chi.URLParam(r, "key"), chi.URLParam(r, "type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sessions))
}

// QuerySessions handles POST /sessions/query
func (h *Handler) QuerySessions(w http.ResponseWriter, r *http.Request) {
	var req model.QueryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sessions, err := h.sessions.Query(r.Context(), req.Filters)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sessions))
}

// SessionsBySpeaker handles GET /sessions/speaker/{speaker}
func (h *Handler) SessionsBySpeaker(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.BySpeaker(r.Context(), chi.URLParam(r, "speaker"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sessions))
}

// SessionsByLocation handles GET /sessions/location/{location}
func (h *Handler) SessionsByLocation(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ByLocation(r.Context(), chi.URLParam(r, "location"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sessions))
}

// SessionsByDateAndLocation handles GET /sessions/schedule?location=…&date=…
func (h *Handler) SessionsByDateAndLocation(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ByDateAndLocation(r.Context(),
		r.URL.Query().Get("location"), r.URL.Query().Get("date"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sessions))
}

// EarlyNonWorkshops handles GET /sessions/early-non-workshops
func (h *Handler) EarlyNonWorkshops(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.NonWorkshopsBeforeSeven(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sessions))
}

// ─── Wishlist ─────────────────────────────────────────────────────────────────

// AddToWishlist handles POST /sessions/{key}/wishlist
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	added, err := h.sessions.AddToWishlist(r.Context(), id, chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BooleanResponse{Data: added})
}

// RemoveFromWishlist handles DELETE /sessions/{key}/wishlist
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	removed, err := h.sessions.RemoveFromWishlist(r.Context(), id, chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BooleanResponse{Data: removed})
}

// Wishlist handles GET /profile/wishlist
func (h *Handler) Wishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	sessions, err := h.sessions.Wishlist(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list wishlist")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sessions))
}

// ─── Announcements / featured speaker ─────────────────────────────────────────

// GetAnnouncement handles GET /announcement
func (h *Handler) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	announcement, err := h.announcements.Announcement(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read announcement")
		return
	}
	writeJSON(w, http.StatusOK, model.StringResponse{Data: announcement})
}

// RebuildAnnouncement handles POST /announcement/rebuild
// Stand-in for the periodic cache-population job.
func (h *Handler) RebuildAnnouncement(w http.ResponseWriter, r *http.Request) {
	announcement, err := h.announcements.RebuildAnnouncement(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rebuild announcement")
		return
	}
	writeJSON(w, http.StatusOK, model.StringResponse{Data: announcement})
}

// GetFeaturedSpeaker handles GET /speaker/featured
func (h *Handler) GetFeaturedSpeaker(w http.ResponseWriter, r *http.Request) {
	featured, err := h.announcements.FeaturedSpeaker(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read featured speaker")
		return
	}
	writeJSON(w, http.StatusOK, model.StringResponse{Data: featured})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
