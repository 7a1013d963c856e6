package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rkohl/conference-central/internal/auth"
	"github.com/rkohl/conference-central/internal/model"
	"github.com/rkohl/conference-central/internal/query"
	"github.com/rkohl/conference-central/internal/repository"
)

// nonWorkshopCutoff is the fixed upper bound for the early-evening session
// listing: 19:00.
var nonWorkshopCutoff = time.Date(0, time.January, 1, 19, 0, 0, 0, time.UTC)

// SessionRepo is the session persistence surface the service needs.
type SessionRepo interface {
	Create(ctx context.Context, s model.Session) (*model.Session, error)
	ListByConference(ctx context.Context, conferenceKey string) ([]model.Session, error)
	ListByConferenceAndType(ctx context.Context, conferenceKey string, typ model.SessionType) ([]model.Session, error)
	ListBySpeaker(ctx context.Context, speaker string) ([]model.Session, error)
	ListByLocation(ctx context.Context, location string) ([]model.Session, error)
	ListByDateAndLocation(ctx context.Context, location string, date *time.Time) ([]model.Session, error)
	ListNonWorkshopsBefore(ctx context.Context, cutoff time.Time) ([]model.Session, error)
	ListByKeys(ctx context.Context, keys []string) ([]model.Session, error)
	Query(ctx context.Context, plan *query.Plan) ([]model.Session, error)
}

// WishlistRepo is the transactional wishlist engine.
type WishlistRepo interface {
	Add(ctx context.Context, userID, sessionKey string) error
	Remove(ctx context.Context, userID, sessionKey string) (bool, error)
}

// SpeakerFeaturer recomputes the featured-speaker cache entry after a
// session is created.
type SpeakerFeaturer interface {
	FeatureSpeaker(ctx context.Context, conferenceKey, speaker string) (string, error)
}

// SessionService orchestrates session creation, the fixed session queries,
// and wishlist membership.
type SessionService struct {
	sessions    SessionRepo
	conferences ConferenceRepo
	profiles    ProfileRepo
	wishlist    WishlistRepo
	featured    SpeakerFeaturer
	log         *slog.Logger
}

// NewSessionService constructs a SessionService with its dependencies.
func NewSessionService(sessions SessionRepo, conferences ConferenceRepo, profiles ProfileRepo, wishlist WishlistRepo, featured SpeakerFeaturer, log *slog.Logger) *SessionService {
	return &SessionService{
		sessions:    sessions,
		conferences: conferences,
		profiles:    profiles,
		wishlist:    wishlist,
		featured:    featured,
		log:         log,
	}
}

// Create validates and persists a session under a conference the caller
// organizes, then refreshes the featured-speaker cache entry.
func (s *SessionService) Create(ctx context.Context, id auth.Identity, conferenceKey string, req model.CreateSessionRequest) (*model.Session, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("session name is required")
	}
	if conferenceKey == "" {
		return nil, fmt.Errorf("conference key is required")
	}
	if req.DurationInMinutes < 0 {
		return nil, fmt.Errorf("duration_in_minutes cannot be negative")
	}

	conf, err := s.conferences.GetByKey(ctx, conferenceKey)
	if err != nil {
		return nil, err
	}
	if conf.OrganizerUserID != id.UserID {
		return nil, repository.ErrNotOwner
	}

	typ, err := model.ParseSessionType(req.TypeOfSession)
	if err != nil {
		return nil, err
	}

	sess := model.Session{
		ConferenceKey:     conferenceKey,
		Name:              req.Name,
		Highlights:        req.Highlights,
		Speaker:           req.Speaker,
		DurationInMinutes: req.DurationInMinutes,
		TypeOfSession:     typ,
		Location:          req.Location,
	}
	if req.Date != "" {
		date, err := model.ParseDate(req.Date)
		if err != nil {
			return nil, err
		}
		sess.Date = &date
	}
	if req.StartTime != "" {
		start, err := model.ParseClock(req.StartTime)
		if err != nil {
			return nil, err
		}
		sess.StartTime = &start
	}

	created, err := s.sessions.Create(ctx, sess)
	if err != nil {
		return nil, err
	}

	// A failed cache refresh never fails the creation.
	if created.Speaker != "" {
		if _, err := s.featured.FeatureSpeaker(ctx, conferenceKey, created.Speaker); err != nil {
			s.log.Error("refresh featured speaker",
				slog.String("conference", conferenceKey),
				slog.String("speaker", created.Speaker),
				slog.Any("err", err))
		}
	}

	return created, nil
}

// ListByConference returns a conference's sessions.
func (s *SessionService) ListByConference(ctx context.Context, conferenceKey string) ([]model.Session, error) {
	if _, err := s.conferences.GetByKey(ctx, conferenceKey); err != nil {
		return nil, err
	}
	return s.sessions.ListByConference(ctx, conferenceKey)
}

// ListByConferenceAndType returns a conference's sessions of one type.
func (s *SessionService) ListByConferenceAndType(ctx context.Context, conferenceKey, typeOfSession string) ([]model.Session, error) {
	typ, err := model.ParseSessionType(typeOfSession)
	if err != nil {
		return nil, err
	}
	if _, err := s.conferences.GetByKey(ctx, conferenceKey); err != nil {
		return nil, err
	}
	return s.sessions.ListByConferenceAndType(ctx, conferenceKey, typ)
}

// BySpeaker returns sessions by speaker across all conferences.
func (s *SessionService) BySpeaker(ctx context.Context, speaker string) ([]model.Session, error) {
	if speaker == "" {
		return nil, fmt.Errorf("speaker is required")
	}
	return s.sessions.ListBySpeaker(ctx, speaker)
}

// ByLocation returns sessions by location across all conferences.
func (s *SessionService) ByLocation(ctx context.Context, location string) ([]model.Session, error) {
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}
	return s.sessions.ListByLocation(ctx, location)
}

// ByDateAndLocation returns sessions at a location, optionally on one date,
// ordered by date then start time.
func (s *SessionService) ByDateAndLocation(ctx context.Context, location, date string) ([]model.Session, error) {
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}
	var day *time.Time
	if date != "" {
		d, err := model.ParseDate(date)
		if err != nil {
			return nil, err
		}
		day = &d
	}
	return s.sessions.ListByDateAndLocation(ctx, location, day)
}

// NonWorkshopsBeforeSeven returns Lecture and Keynote sessions starting
// before 19:00, across all conferences.
func (s *SessionService) NonWorkshopsBeforeSeven(ctx context.Context) ([]model.Session, error) {
	return s.sessions.ListNonWorkshopsBefore(ctx, nonWorkshopCutoff)
}

// Query compiles the caller's filters against the session registry and
// executes the resulting plan.
func (s *SessionService) Query(ctx context.Context, filters []model.FilterRequest) ([]model.Session, error) {
	plan, err := query.Compile(query.Sessions, toFilters(filters))
	if err != nil {
		return nil, err
	}
	return s.sessions.Query(ctx, plan)
}

// AddToWishlist puts a session on the caller's wishlist.
func (s *SessionService) AddToWishlist(ctx context.Context, id auth.Identity, sessionKey string) (bool, error) {
	if _, err := s.profiles.GetOrCreate(ctx, id.UserID, id.DisplayName, id.Email); err != nil {
		return false, err
	}
	if err := s.wishlist.Add(ctx, id.UserID, sessionKey); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveFromWishlist takes a session off the caller's wishlist; false means
// it was not there.
func (s *SessionService) RemoveFromWishlist(ctx context.Context, id auth.Identity, sessionKey string) (bool, error) {
	if _, err := s.profiles.GetOrCreate(ctx, id.UserID, id.DisplayName, id.Email); err != nil {
		return false, err
	}
	return s.wishlist.Remove(ctx, id.UserID, sessionKey)
}

// Wishlist resolves the sessions on the caller's wishlist.
func (s *SessionService) Wishlist(ctx context.Context, id auth.Identity) ([]model.Session, error) {
	prof, err := s.profiles.GetOrCreate(ctx, id.UserID, id.DisplayName, id.Email)
	if err != nil {
		return nil, err
	}
	return s.sessions.ListByKeys(ctx, prof.WishlistSessionKeys)
}
