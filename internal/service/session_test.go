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

func ownedConferenceRepo(owner string) *conferenceRepoMock {
	return &conferenceRepoMock{
		getByKeyFunc: func(_ context.Context, key string) (*model.Conference, error) {
			return &model.Conference{Key: key, Name: "Conf", OrganizerUserID: owner}, nil
		},
	}
}

func TestCreateSessionParsesFieldsAndFeaturesSpeaker(t *testing.T) {
	var stored model.Session
	sessions := &sessionRepoMock{
		createFunc: func(_ context.Context, s model.Session) (*model.Session, error) {
			s.Key = "sess-1"
			stored = s
			return &s, nil
		},
	}
	featured := &featurerMock{}
	svc := NewSessionService(sessions, ownedConferenceRepo(organizer.UserID),
		newProfileRepoMock(), &wishlistRepoMock{}, featured, newLogger())

	created, err := svc.Create(context.Background(), organizer, "conf-1", model.CreateSessionRequest{
		Name:              "Generics in Practice",
		Speaker:           "A. Turing",
		StartTime:         "09:30",
		Date:              "2026-09-14",
		DurationInMinutes: 45,
		TypeOfSession:     "Lecture",
	})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", created.Key)
	assert.Equal(t, model.SessionLecture, stored.TypeOfSession)
	require.NotNil(t, stored.StartTime)
	assert.Equal(t, "09:30", model.FormatClock(stored.StartTime))
	assert.Equal(t, "2026-09-14", model.FormatDate(stored.Date))
	assert.Equal(t, []string{"conf-1/A. Turing"}, featured.calls,
		"a successful create refreshes the featured speaker")
}

func TestCreateSessionDefaultsToWorkshop(t *testing.T) {
	var stored model.Session
	sessions := &sessionRepoMock{
		createFunc: func(_ context.Context, s model.Session) (*model.Session, error) {
			stored = s
			return &s, nil
		},
	}
	svc := NewSessionService(sessions, ownedConferenceRepo(organizer.UserID),
		newProfileRepoMock(), &wishlistRepoMock{}, &featurerMock{}, newLogger())

	_, err := svc.Create(context.Background(), organizer, "conf-1", model.CreateSessionRequest{Name: "Untitled"})
	require.NoError(t, err)
	assert.Equal(t, model.SessionWorkshop, stored.TypeOfSession)
}

func TestCreateSessionRejectsNonOwner(t *testing.T) {
	svc := NewSessionService(&sessionRepoMock{}, ownedConferenceRepo("someone-else"),
		newProfileRepoMock(), &wishlistRepoMock{}, &featurerMock{}, newLogger())

	_, err := svc.Create(context.Background(), organizer, "conf-1", model.CreateSessionRequest{Name: "S"})
	assert.ErrorIs(t, err, repository.ErrNotOwner)
}

func TestCreateSessionRejectsUnknownType(t *testing.T) {
	svc := NewSessionService(&sessionRepoMock{}, ownedConferenceRepo(organizer.UserID),
		newProfileRepoMock(), &wishlistRepoMock{}, &featurerMock{}, newLogger())

	_, err := svc.Create(context.Background(), organizer, "conf-1", model.CreateSessionRequest{
		Name:          "S",
		TypeOfSession: "Fireside",
	})
	assert.Error(t, err)
}

func TestCreateSessionSkipsFeatureWithoutSpeaker(t *testing.T) {
	sessions := &sessionRepoMock{
		createFunc: func(_ context.Context, s model.Session) (*model.Session, error) {
			return &s, nil
		},
	}
	featured := &featurerMock{}
	svc := NewSessionService(sessions, ownedConferenceRepo(organizer.UserID),
		newProfileRepoMock(), &wishlistRepoMock{}, featured, newLogger())

	_, err := svc.Create(context.Background(), organizer, "conf-1", model.CreateSessionRequest{Name: "S"})
	require.NoError(t, err)
	assert.Empty(t, featured.calls)
}

func TestAddToWishlistDelegates(t *testing.T) {
	var gotUser, gotSession string
	wishlist := &wishlistRepoMock{
		addFunc: func(_ context.Context, userID, sessionKey string) error {
			gotUser, gotSession = userID, sessionKey
			return nil
		},
	}
	svc := NewSessionService(&sessionRepoMock{}, &conferenceRepoMock{},
		newProfileRepoMock(), wishlist, &featurerMock{}, newLogger())

	user := auth.Identity{UserID: "u-3", DisplayName: "Ada", Email: "ada@example.com"}
	ok, err := svc.AddToWishlist(context.Background(), user, "sess-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u-3", gotUser)
	assert.Equal(t, "sess-1", gotSession)
}

func TestRemoveFromWishlistReportsNoOp(t *testing.T) {
	wishlist := &wishlistRepoMock{
		removeFunc: func(context.Context, string, string) (bool, error) {
			return false, nil
		},
	}
	svc := NewSessionService(&sessionRepoMock{}, &conferenceRepoMock{},
		newProfileRepoMock(), wishlist, &featurerMock{}, newLogger())

	ok, err := svc.RemoveFromWishlist(context.Background(), organizer, "sess-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWishlistResolvesProfileKeys(t *testing.T) {
	profiles := newProfileRepoMock()
	user := auth.Identity{UserID: "u-4", DisplayName: "Ada", Email: "ada@example.com"}
	p, err := profiles.GetOrCreate(context.Background(), user.UserID, user.DisplayName, user.Email)
	require.NoError(t, err)
	p.WishlistSessionKeys = []string{"sess-1", "sess-2"}

	var requested []string
	sessions := &sessionRepoMock{
		byKeysFunc: func(_ context.Context, keys []string) ([]model.Session, error) {
			requested = keys
			return []model.Session{{Key: "sess-1"}, {Key: "sess-2"}}, nil
		},
	}
	svc := NewSessionService(sessions, &conferenceRepoMock{},
		profiles, &wishlistRepoMock{}, &featurerMock{}, newLogger())

	got, err := svc.Wishlist(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-1", "sess-2"}, requested)
	assert.Len(t, got, 2)
}
