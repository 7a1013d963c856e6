package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/rkohl/conference-central/internal/model"
	"github.com/rkohl/conference-central/internal/query"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type conferenceRepoMock struct {
	createFunc          func(ctx context.Context, c model.Conference) (*model.Conference, error)
	getByKeyFunc        func(ctx context.Context, key string) (*model.Conference, error)
	updateFunc          func(ctx context.Context, c *model.Conference) error
	listByOrganizerFunc func(ctx context.Context, userID string) ([]model.Conference, error)
	listByKeysFunc      func(ctx context.Context, keys []string) ([]model.Conference, error)
	queryFunc           func(ctx context.Context, plan *query.Plan) ([]model.Conference, error)
}

func (m *conferenceRepoMock) Create(ctx context.Context, c model.Conference) (*model.Conference, error) {
	return m.createFunc(ctx, c)
}

func (m *conferenceRepoMock) GetByKey(ctx context.Context, key string) (*model.Conference, error) {
	return m.getByKeyFunc(ctx, key)
}

func (m *conferenceRepoMock) Update(ctx context.Context, c *model.Conference) error {
	return m.updateFunc(ctx, c)
}

func (m *conferenceRepoMock) ListByOrganizer(ctx context.Context, userID string) ([]model.Conference, error) {
	return m.listByOrganizerFunc(ctx, userID)
}

func (m *conferenceRepoMock) ListByKeys(ctx context.Context, keys []string) ([]model.Conference, error) {
	return m.listByKeysFunc(ctx, keys)
}

func (m *conferenceRepoMock) Query(ctx context.Context, plan *query.Plan) ([]model.Conference, error) {
	return m.queryFunc(ctx, plan)
}

// profileRepoMock keeps an in-memory profile per user id.
type profileRepoMock struct {
	profiles map[string]*model.Profile
}

func newProfileRepoMock() *profileRepoMock {
	return &profileRepoMock{profiles: make(map[string]*model.Profile)}
}

func (m *profileRepoMock) GetOrCreate(_ context.Context, userID, displayName, email string) (*model.Profile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	p := &model.Profile{UserID: userID, DisplayName: displayName, MainEmail: email}
	m.profiles[userID] = p
	return p, nil
}

func (m *profileRepoMock) Get(_ context.Context, userID string) (*model.Profile, error) {
	return m.profiles[userID], nil
}

func (m *profileRepoMock) SaveDisplayName(_ context.Context, userID, displayName string) error {
	m.profiles[userID].DisplayName = displayName
	return nil
}

func (m *profileRepoMock) DisplayNames(_ context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if p, ok := m.profiles[id]; ok {
			names[id] = p.DisplayName
		}
	}
	return names, nil
}

type registrationRepoMock struct {
	registerFunc   func(ctx context.Context, userID, conferenceKey string) error
	unregisterFunc func(ctx context.Context, userID, conferenceKey string) (bool, error)
}

func (m *registrationRepoMock) Register(ctx context.Context, userID, conferenceKey string) error {
	return m.registerFunc(ctx, userID, conferenceKey)
}

func (m *registrationRepoMock) Unregister(ctx context.Context, userID, conferenceKey string) (bool, error) {
	return m.unregisterFunc(ctx, userID, conferenceKey)
}

type sessionRepoMock struct {
	createFunc func(ctx context.Context, s model.Session) (*model.Session, error)
	byKeysFunc func(ctx context.Context, keys []string) ([]model.Session, error)
}

func (m *sessionRepoMock) Create(ctx context.Context, s model.Session) (*model.Session, error) {
	return m.createFunc(ctx, s)
}

func (m *sessionRepoMock) ListByConference(context.Context, string) ([]model.Session, error) {
	return nil, nil
}

func (m *sessionRepoMock) ListByConferenceAndType(context.Context, string, model.SessionType) ([]model.Session, error) {
	return nil, nil
}

func (m *sessionRepoMock) ListBySpeaker(context.Context, string) ([]model.Session, error) {
	return nil, nil
}

func (m *sessionRepoMock) ListByLocation(context.Context, string) ([]model.Session, error) {
	return nil, nil
}

func (m *sessionRepoMock) ListByDateAndLocation(context.Context, string, *time.Time) ([]model.Session, error) {
	return nil, nil
}

func (m *sessionRepoMock) ListNonWorkshopsBefore(context.Context, time.Time) ([]model.Session, error) {
	return nil, nil
}

func (m *sessionRepoMock) ListByKeys(ctx context.Context, keys []string) ([]model.Session, error) {
	if m.byKeysFunc != nil {
		return m.byKeysFunc(ctx, keys)
	}
	return nil, nil
}

func (m *sessionRepoMock) Query(context.Context, *query.Plan) ([]model.Session, error) {
	return nil, nil
}

type wishlistRepoMock struct {
	addFunc    func(ctx context.Context, userID, sessionKey string) error
	removeFunc func(ctx context.Context, userID, sessionKey string) (bool, error)
}

func (m *wishlistRepoMock) Add(ctx context.Context, userID, sessionKey string) error {
	return m.addFunc(ctx, userID, sessionKey)
}

func (m *wishlistRepoMock) Remove(ctx context.Context, userID, sessionKey string) (bool, error) {
	return m.removeFunc(ctx, userID, sessionKey)
}

type featurerMock struct {
	calls []string
}

func (m *featurerMock) FeatureSpeaker(_ context.Context, conferenceKey, speaker string) (string, error) {
	m.calls = append(m.calls, conferenceKey+"/"+speaker)
	return "", nil
}

type announcementRepoMock struct {
	names []string
	err   error
}

func (m *announcementRepoMock) NearlySoldOutNames(context.Context) ([]string, error) {
	return m.names, m.err
}

type speakerSessionRepoMock struct {
	names map[string][]string
}

func (m *speakerSessionRepoMock) SpeakerSessionNames(_ context.Context, conferenceKey, speaker string) ([]string, error) {
	return m.names[conferenceKey+"/"+speaker], nil
}
