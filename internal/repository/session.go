package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rkohl/conference-central/internal/model"
	"github.com/rkohl/conference-central/internal/query"
)

// SessionRepository handles persistence for sessions.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `key, conference_key, name, highlights, speaker,
	start_time, duration_in_minutes, type_of_session, date, location`

// clockToPg encodes a time-of-day pointer as a Postgres TIME value.
func clockToPg(t *time.Time) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	usec := int64(t.Hour())*3600_000_000 +
		int64(t.Minute())*60_000_000 +
		int64(t.Second())*1_000_000
	return pgtype.Time{Microseconds: usec, Valid: true}
}

// pgToClock decodes a Postgres TIME value into a time-of-day pointer.
func pgToClock(t pgtype.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	sec := t.Microseconds / 1_000_000
	clock := time.Date(0, time.January, 1, int(sec/3600), int(sec/60%60), int(sec%60), 0, time.UTC)
	return &clock
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	var start pgtype.Time
	err := row.Scan(&s.Key, &s.ConferenceKey, &s.Name, &s.Highlights, &s.Speaker,
		&start, &s.DurationInMinutes, &s.TypeOfSession, &s.Date, &s.Location)
	if err != nil {
		return nil, err
	}
	s.StartTime = pgToClock(start)
	return &s, nil
}

func (r *SessionRepository) list(ctx context.Context, sql string, args ...any) ([]model.Session, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// Create inserts a new session under its conference and returns it with a
// generated key.
func (r *SessionRepository) Create(ctx context.Context, s model.Session) (*model.Session, error) {
	s.Key = uuid.New().String()

	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.Key, s.ConferenceKey, s.Name, s.Highlights, s.Speaker,
		clockToPg(s.StartTime), s.DurationInMinutes, s.TypeOfSession, s.Date, s.Location,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &s, nil
}

// GetByKey returns a single session or ErrNotFound.
func (r *SessionRepository) GetByKey(ctx context.Context, key string) (*model.Session, error) {
	s, err := scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// ListByConference returns all sessions of one conference, ordered by name.
func (r *SessionRepository) ListByConference(ctx context.Context, conferenceKey string) ([]model.Session, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE conference_key = $1 ORDER BY name ASC`, conferenceKey)
}

// ListByConferenceAndType returns one conference's sessions of a given type,
// ordered by name.
func (r *SessionRepository) ListByConferenceAndType(ctx context.Context, conferenceKey string, typ model.SessionType) ([]model.Session, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE conference_key = $1 AND type_of_session = $2 ORDER BY name ASC`,
		conferenceKey, typ)
}

// ListBySpeaker returns sessions by speaker across all conferences,
// ordered by name.
func (r *SessionRepository) ListBySpeaker(ctx context.Context, speaker string) ([]model.Session, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE speaker = $1 ORDER BY name ASC`, speaker)
}

// ListByLocation returns sessions by location across all conferences,
// ordered by name.
func (r *SessionRepository) ListByLocation(ctx context.Context, location string) ([]model.Session, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE location = $1 ORDER BY name ASC`, location)
}

// ListByDateAndLocation returns sessions at a location, optionally restricted
// to one date, ordered by date then start time.
func (r *SessionRepository) ListByDateAndLocation(ctx context.Context, location string, date *time.Time) ([]model.Session, error) {
	if date == nil {
		return r.list(ctx,
			`SELECT `+sessionColumns+` FROM sessions
			 WHERE location = $1 ORDER BY date ASC, start_time ASC`, location)
	}
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE location = $1 AND date = $2 ORDER BY date ASC, start_time ASC`,
		location, *date)
}

// ListNonWorkshopsBefore returns Lecture and Keynote sessions starting before
// the cutoff time-of-day, across all conferences, ordered by start time.
//
// The filter names the two non-workshop types explicitly rather than
// excluding Workshop; a session type added to the enumeration later will not
// match until it is listed here.
func (r *SessionRepository) ListNonWorkshopsBefore(ctx context.Context, cutoff time.Time) ([]model.Session, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE (type_of_session = $1 OR type_of_session = $2) AND start_time < $3
		 ORDER BY start_time ASC`,
		model.SessionKeynote, model.SessionLecture, clockToPg(&cutoff))
}

// ListByKeys returns the sessions for a set of keys, ordered by name.
func (r *SessionRepository) ListByKeys(ctx context.Context, keys []string) ([]model.Session, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE key = ANY($1) ORDER BY name ASC`, keys)
}

// Query executes a compiled filter plan with the same sort and predicate
// semantics as the conference query path.
func (r *SessionRepository) Query(ctx context.Context, plan *query.Plan) ([]model.Session, error) {
	sql := `SELECT ` + sessionColumns + ` FROM sessions`
	where, args := plan.WhereClause(0)
	if where != "" {
		sql += ` WHERE ` + where
	}
	sql += ` ORDER BY ` + plan.OrderClause(query.Sessions.NameColumn)
	return r.list(ctx, sql, args...)
}

// SpeakerSessionNames returns the names of one speaker's sessions within a
// conference, ordered by name.
func (r *SessionRepository) SpeakerSessionNames(ctx context.Context, conferenceKey, speaker string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name FROM sessions
		 WHERE conference_key = $1 AND speaker = $2 ORDER BY name ASC`,
		conferenceKey, speaker)
	if err != nil {
		return nil, fmt.Errorf("list speaker sessions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan session name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
