package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rkohl/conference-central/internal/auth"
	"github.com/rkohl/conference-central/internal/model"
)

// ProfileService exposes the caller's profile, creating it lazily.
type ProfileService struct {
	profiles ProfileRepo
}

// NewProfileService constructs a ProfileService.
func NewProfileService(profiles ProfileRepo) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Get returns the caller's profile, creating an empty one on first access.
func (s *ProfileService) Get(ctx context.Context, id auth.Identity) (*model.Profile, error) {
	return s.profiles.GetOrCreate(ctx, id.UserID, id.DisplayName, id.Email)
}

// Save updates the caller's display name and returns the profile.
func (s *ProfileService) Save(ctx context.Context, id auth.Identity, req model.SaveProfileRequest) (*model.Profile, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		return nil, fmt.Errorf("display_name is required")
	}

	if _, err := s.profiles.GetOrCreate(ctx, id.UserID, id.DisplayName, id.Email); err != nil {
		return nil, err
	}
	if err := s.profiles.SaveDisplayName(ctx, id.UserID, req.DisplayName); err != nil {
		return nil, err
	}
	return s.profiles.Get(ctx, id.UserID)
}
