// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rkohl/conference-central/internal/auth"
	"github.com/rkohl/conference-central/internal/model"
	"github.com/rkohl/conference-central/internal/query"
	"github.com/rkohl/conference-central/internal/repository"
)

// Defaults applied to conferences created with missing fields.
var (
	defaultCity   = "Default City"
	defaultTopics = []string{"Default", "Topic"}
)

// ConferenceRepo is the conference persistence surface the service needs.
type ConferenceRepo interface {
	Create(ctx context.Context, c model.Conference) (*model.Conference, error)
	GetByKey(ctx context.Context, key string) (*model.Conference, error)
	Update(ctx context.Context, c *model.Conference) error
	ListByOrganizer(ctx context.Context, userID string) ([]model.Conference, error)
	ListByKeys(ctx context.Context, keys []string) ([]model.Conference, error)
	Query(ctx context.Context, plan *query.Plan) ([]model.Conference, error)
}

// ProfileRepo is the profile persistence surface shared by the services.
type ProfileRepo interface {
	GetOrCreate(ctx context.Context, userID, displayName, email string) (*model.Profile, error)
	Get(ctx context.Context, userID string) (*model.Profile, error)
	SaveDisplayName(ctx context.Context, userID, displayName string) error
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// RegistrationRepo is the transactional registration engine.
type RegistrationRepo interface {
	Register(ctx context.Context, userID, conferenceKey string) error
	Unregister(ctx context.Context, userID, conferenceKey string) (bool, error)
}

// ConferenceService orchestrates conference reads, writes, and registration.
type ConferenceService struct {
	conferences   ConferenceRepo
	profiles      ProfileRepo
	registrations RegistrationRepo
	log           *slog.Logger
}

// NewConferenceService constructs a ConferenceService with its dependencies.
func NewConferenceService(conferences ConferenceRepo, profiles ProfileRepo, registrations RegistrationRepo, log *slog.Logger) *ConferenceService {
	return &ConferenceService{
		conferences:   conferences,
		profiles:      profiles,
		registrations: registrations,
		log:           log,
	}
}

// Create validates the request, fills in defaults, derives the month, and
// persists a conference owned by the caller.
func (s *ConferenceService) Create(ctx context.Context, id auth.Identity, req model.CreateConferenceRequest) (*model.Conference, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("conference name is required")
	}
	if req.MaxAttendees < 0 {
		return nil, fmt.Errorf("max_attendees cannot be negative")
	}

	// The organizer's profile anchors the conference; create it lazily.
	if _, err := s.profiles.GetOrCreate(ctx, id.UserID, id.DisplayName, id.Email); err != nil {
		return nil, fmt.Errorf("ensure organizer profile: %w", err)
	}

	conf := model.Conference{
		Name:            req.Name,
		Description:     req.Description,
		OrganizerUserID: id.UserID,
		Topics:          req.Topics,
		City:            req.City,
		MaxAttendees:    req.MaxAttendees,
	}
	if conf.City == "" {
		conf.City = defaultCity
	}
	if len(conf.Topics) == 0 {
		conf.Topics = defaultTopics
	}

	if req.StartDate != "" {
		start, err := model.ParseDate(req.StartDate)
		if err != nil {
			return nil, err
		}
		conf.StartDate = &start
		conf.Month = int(start.Month())
	}
	if req.EndDate != "" {
		end, err := model.ParseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		conf.EndDate = &end
	}

	// Every seat starts free.
	if conf.MaxAttendees > 0 {
		conf.SeatsAvailable = conf.MaxAttendees
	}

	return s.conferences.Create(ctx, conf)
}

// Update applies a partial update to a conference the caller organizes,
// re-deriving the month when the start date changes.
func (s *ConferenceService) Update(ctx context.Context, id auth.Identity, key string, req model.UpdateConferenceRequest) (*model.Conference, error) {
	conf, err := s.conferences.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if conf.OrganizerUserID != id.UserID {
		return nil, repository.ErrNotOwner
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("conference name is required")
		}
		conf.Name = name
	}
	if req.Description != nil {
		conf.Description = *req.Description
	}
	if len(req.Topics) != 0 {
		conf.Topics = req.Topics
	}
	if req.City != nil {
		conf.City = *req.City
	}
	if req.StartDate != nil {
		start, err := model.ParseDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		conf.StartDate = &start
		conf.Month = int(start.Month())
	}
	if req.EndDate != nil {
		end, err := model.ParseDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		conf.EndDate = &end
	}
	if req.MaxAttendees != nil {
		if *req.MaxAttendees < 0 {
			return nil, fmt.Errorf("max_attendees cannot be negative")
		}
		conf.MaxAttendees = *req.MaxAttendees
	}

	if err := s.conferences.Update(ctx, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// Get returns a single conference by key.
func (s *ConferenceService) Get(ctx context.Context, key string) (*model.Conference, error) {
	if key == "" {
		return nil, fmt.Errorf("conference key is required")
	}
	return s.conferences.GetByKey(ctx, key)
}

// Query compiles the caller's filters against the conference registry and
// executes the resulting plan.
func (s *ConferenceService) Query(ctx context.Context, filters []model.FilterRequest) ([]model.Conference, error) {
	plan, err := query.Compile(query.Conferences, toFilters(filters))
	if err != nil {
		return nil, err
	}
	confs, err := s.conferences.Query(ctx, plan)
	if err != nil {
		return nil, err
	}
	return s.withOrganizerNames(ctx, confs), nil
}

// CreatedBy returns the conferences the caller organizes.
func (s *ConferenceService) CreatedBy(ctx context.Context, id auth.Identity) ([]model.Conference, error) {
	return s.conferences.ListByOrganizer(ctx, id.UserID)
}

// Attending returns the conferences the caller is registered for.
func (s *ConferenceService) Attending(ctx context.Context, id auth.Identity) ([]model.Conference, error) {
	prof, err := s.profiles.GetOrCreate(ctx, id.UserID, id.DisplayName, id.Email)
	if err != nil {
		return nil, err
	}
	confs, err := s.conferences.ListByKeys(ctx, prof.ConferenceKeysToAttend)
	if err != nil {
		return nil, err
	}
	return s.withOrganizerNames(ctx, confs), nil
}

// withOrganizerNames annotates conferences with their organizers' display
// names. A lookup failure leaves the names blank rather than failing the
// read.
func (s *ConferenceService) withOrganizerNames(ctx context.Context, confs []model.Conference) []model.Conference {
	if len(confs) == 0 {
		return confs
	}
	ids := make([]string, 0, len(confs))
	seen := make(map[string]bool, len(confs))
	for _, c := range confs {
		if !seen[c.OrganizerUserID] {
			seen[c.OrganizerUserID] = true
			ids = append(ids, c.OrganizerUserID)
		}
	}
	names, err := s.profiles.DisplayNames(ctx, ids)
	if err != nil {
		s.log.Warn("resolve organizer names", slog.String("error", err.Error()))
		return confs
	}
	for i := range confs {
		confs[i].OrganizerName = names[confs[i].OrganizerUserID]
	}
	return confs
}

// Register registers the caller for a conference, taking one seat.
func (s *ConferenceService) Register(ctx context.Context, id auth.Identity, conferenceKey string) (bool, error) {
	if _, err := s.profiles.GetOrCreate(ctx, id.UserID, id.DisplayName, id.Email); err != nil {
		return false, err
	}
	if err := s.registrations.Register(ctx, id.UserID, conferenceKey); err != nil {
		return false, err
	}
	s.log.Info("registered", slog.String("user", id.UserID), slog.String("conference", conferenceKey))
	return true, nil
}

// Unregister removes the caller's registration, giving the seat back. A
// false result means the caller was not registered.
func (s *ConferenceService) Unregister(ctx context.Context, id auth.Identity, conferenceKey string) (bool, error) {
	if _, err := s.profiles.GetOrCreate(ctx, id.UserID, id.DisplayName, id.Email); err != nil {
		return false, err
	}
	return s.registrations.Unregister(ctx, id.UserID, conferenceKey)
}

func toFilters(reqs []model.FilterRequest) []query.Filter {
	filters := make([]query.Filter, len(reqs))
	for i, r := range reqs {
		filters[i] = query.Filter{Field: r.Field, Operator: r.Operator, Value: r.Value}
	}
	return filters
}
