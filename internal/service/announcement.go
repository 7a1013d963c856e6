package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rkohl/conference-central/internal/cache"
)

const announcementPrefix = "Last chance to attend! The following conferences are nearly sold out:"

// AnnouncementRepo lists the conference names feeding the announcement.
type AnnouncementRepo interface {
	NearlySoldOutNames(ctx context.Context) ([]string, error)
}

// SpeakerSessionRepo lists one speaker's session names within a conference.
type SpeakerSessionRepo interface {
	SpeakerSessionNames(ctx context.Context, conferenceKey, speaker string) ([]string, error)
}

// AnnouncementService computes the derived cache strings: the nearly-sold-out
// announcement and the featured speaker.
type AnnouncementService struct {
	conferences AnnouncementRepo
	sessions    SpeakerSessionRepo
	cache       cache.Cache
	log         *slog.Logger
}

// NewAnnouncementService constructs an AnnouncementService.
func NewAnnouncementService(conferences AnnouncementRepo, sessions SpeakerSessionRepo, c cache.Cache, log *slog.Logger) *AnnouncementService {
	return &AnnouncementService{conferences: conferences, sessions: sessions, cache: c, log: log}
}

// RebuildAnnouncement recomputes the nearly-sold-out announcement and
// publishes it. When no conference qualifies, the cache entry is cleared
// and the empty string returned.
func (s *AnnouncementService) RebuildAnnouncement(ctx context.Context) (string, error) {
	names, err := s.conferences.NearlySoldOutNames(ctx)
	if err != nil {
		return "", fmt.Errorf("build announcement: %w", err)
	}

	if len(names) == 0 {
		if err := s.cache.Delete(ctx, cache.AnnouncementsKey); err != nil {
			return "", err
		}
		return "", nil
	}

	announcement := announcementPrefix + " " + strings.Join(names, ", ")
	if err := s.cache.Set(ctx, cache.AnnouncementsKey, announcement); err != nil {
		return "", err
	}
	s.log.Info("announcement rebuilt", slog.Int("conferences", len(names)))
	return announcement, nil
}

// Announcement returns the cached announcement, "" when none is set.
func (s *AnnouncementService) Announcement(ctx context.Context) (string, error) {
	return s.cache.Get(ctx, cache.AnnouncementsKey)
}

// FeatureSpeaker publishes "<speaker>: <name1>, <name2>, …" when the speaker
// has at least two sessions in the conference. With fewer, nothing is
// published and any prior entry is left alone.
func (s *AnnouncementService) FeatureSpeaker(ctx context.Context, conferenceKey, speaker string) (string, error) {
	names, err := s.sessions.SpeakerSessionNames(ctx, conferenceKey, speaker)
	if err != nil {
		return "", fmt.Errorf("build featured speaker: %w", err)
	}
	if len(names) < 2 {
		return "", nil
	}

	featured := speaker + ": " + strings.Join(names, ", ")
	if err := s.cache.Set(ctx, cache.FeaturedSpeakerKey, featured); err != nil {
		return "", err
	}
	s.log.Info("featured speaker set", slog.String("speaker", speaker), slog.Int("sessions", len(names)))
	return featured, nil
}

// FeaturedSpeaker returns the cached featured-speaker string, "" when unset.
func (s *AnnouncementService) FeaturedSpeaker(ctx context.Context) (string, error) {
	return s.cache.Get(ctx, cache.FeaturedSpeakerKey)
}
