package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkohl/conference-central/internal/auth"
	"github.com/rkohl/conference-central/internal/model"
	"github.com/rkohl/conference-central/internal/repository"
)

var organizer = auth.Identity{UserID: "org-1", DisplayName: "Org", Email: "org@example.com"}

func TestCreateConferenceAppliesDefaults(t *testing.T) {
	var stored model.Conference
	confs := &conferenceRepoMock{
		createFunc: func(_ context.Context, c model.Conference) (*model.Conference, error) {
			stored = c
			return &c, nil
		},
	}
	svc := NewConferenceService(confs, newProfileRepoMock(), &registrationRepoMock{}, newLogger())

	created, err := svc.Create(context.Background(), organizer, model.CreateConferenceRequest{
		Name:         "  GopherCon  ",
		StartDate:    "2026-09-14",
		MaxAttendees: 200,
	})
	require.NoError(t, err)

	assert.Equal(t, "GopherCon", created.Name)
	assert.Equal(t, "Default City", stored.City)
	assert.Equal(t, []string{"Default", "Topic"}, stored.Topics)
	assert.Equal(t, 9, stored.Month, "month derives from the start date")
	assert.Equal(t, 200, stored.SeatsAvailable, "all seats start free")
	assert.Equal(t, organizer.UserID, stored.OrganizerUserID)
}

func TestCreateConferenceWithoutStartDateHasMonthZero(t *testing.T) {
	var stored model.Conference
	confs := &conferenceRepoMock{
		createFunc: func(_ context.Context, c model.Conference) (*model.Conference, error) {
			stored = c
			return &c, nil
		},
	}
	svc := NewConferenceService(confs, newProfileRepoMock(), &registrationRepoMock{}, newLogger())

	_, err := svc.Create(context.Background(), organizer, model.CreateConferenceRequest{Name: "NoDates"})
	require.NoError(t, err)
	assert.Zero(t, stored.Month)
	assert.Zero(t, stored.SeatsAvailable)
}

func TestCreateConferenceRequiresName(t *testing.T) {
	svc := NewConferenceService(&conferenceRepoMock{}, newProfileRepoMock(), &registrationRepoMock{}, newLogger())

	_, err := svc.Create(context.Background(), organizer, model.CreateConferenceRequest{Name: "   "})
	assert.Error(t, err)
}

func TestUpdateConferenceRejectsNonOwner(t *testing.T) {
	confs := &conferenceRepoMock{
		getByKeyFunc: func(_ context.Context, key string) (*model.Conference, error) {
			return &model.Conference{Key: key, Name: "Other's", OrganizerUserID: "someone-else"}, nil
		},
	}
	svc := NewConferenceService(confs, newProfileRepoMock(), &registrationRepoMock{}, newLogger())

	name := "Hijacked"
	_, err := svc.Update(context.Background(), organizer, "conf-1", model.UpdateConferenceRequest{Name: &name})
	assert.ErrorIs(t, err, repository.ErrNotOwner)
}

func TestUpdateConferenceRecomputesMonth(t *testing.T) {
	var updated *model.Conference
	confs := &conferenceRepoMock{
		getByKeyFunc: func(_ context.Context, key string) (*model.Conference, error) {
			return &model.Conference{Key: key, Name: "Conf", OrganizerUserID: organizer.UserID, Month: 3}, nil
		},
		updateFunc: func(_ context.Context, c *model.Conference) error {
			updated = c
			return nil
		},
	}
	svc := NewConferenceService(confs, newProfileRepoMock(), &registrationRepoMock{}, newLogger())

	start := "2026-11-02"
	_, err := svc.Update(context.Background(), organizer, "conf-1", model.UpdateConferenceRequest{StartDate: &start})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 11, updated.Month)
}

func TestRegisterEnsuresProfileThenDelegates(t *testing.T) {
	profiles := newProfileRepoMock()
	var gotUser, gotConf string
	regs := &registrationRepoMock{
		registerFunc: func(_ context.Context, userID, conferenceKey string) error {
			gotUser, gotConf = userID, conferenceKey
			return nil
		},
	}
	svc := NewConferenceService(&conferenceRepoMock{}, profiles, regs, newLogger())

	attendee := auth.Identity{UserID: "u-9", DisplayName: "Ada", Email: "ada@example.com"}
	ok, err := svc.Register(context.Background(), attendee, "conf-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u-9", gotUser)
	assert.Equal(t, "conf-1", gotConf)
	assert.Contains(t, profiles.profiles, "u-9", "profile is created lazily before registering")
}

func TestRegisterSurfacesEngineErrors(t *testing.T) {
	regs := &registrationRepoMock{
		registerFunc: func(context.Context, string, string) error {
			return repository.ErrNoSeats
		},
	}
	svc := NewConferenceService(&conferenceRepoMock{}, newProfileRepoMock(), regs, newLogger())

	ok, err := svc.Register(context.Background(), organizer, "conf-1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, repository.ErrNoSeats)
}
