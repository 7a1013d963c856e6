package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rkohl/conference-central/internal/model"
	"github.com/rkohl/conference-central/internal/query"
)

// ConferenceRepository handles persistence for conferences.
type ConferenceRepository struct {
	db *pgxpool.Pool
}

// NewConferenceRepository constructs a ConferenceRepository.
func NewConferenceRepository(db *pgxpool.Pool) *ConferenceRepository {
	return &ConferenceRepository{db: db}
}

const conferenceColumns = `key, name, description, organizer_user_id, topics,
	city, start_date, end_date, month, max_attendees, seats_available`

func scanConference(row pgx.Row) (*model.Conference, error) {
	var c model.Conference
	err := row.Scan(&c.Key, &c.Name, &c.Description, &c.OrganizerUserID, &c.Topics,
		&c.City, &c.StartDate, &c.EndDate, &c.Month, &c.MaxAttendees, &c.SeatsAvailable)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConferenceRepository) list(ctx context.Context, sql string, args ...any) ([]model.Conference, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list conferences: %w", err)
	}
	defer rows.Close()

	var confs []model.Conference
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conference: %w", err)
		}
		confs = append(confs, *c)
	}
	return confs, rows.Err()
}

// Create inserts a new conference and returns it with a generated key.
func (r *ConferenceRepository) Create(ctx context.Context, c model.Conference) (*model.Conference, error) {
	c.Key = uuid.New().String()

	_, err := r.db.Exec(ctx,
		`INSERT INTO conferences (`+conferenceColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.Key, c.Name, c.Description, c.OrganizerUserID, c.Topics,
		c.City, c.StartDate, c.EndDate, c.Month, c.MaxAttendees, c.SeatsAvailable,
	)
	if err != nil {
		return nil, fmt.Errorf("insert conference: %w", err)
	}
	return &c, nil
}

// GetByKey returns a single conference or ErrNotFound.
func (r *ConferenceRepository) GetByKey(ctx context.Context, key string) (*model.Conference, error) {
	c, err := scanConference(r.db.QueryRow(ctx,
		`SELECT `+conferenceColumns+` FROM conferences WHERE key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	return c, nil
}

// Update rewrites a conference's mutable fields.
func (r *ConferenceRepository) Update(ctx context.Context, c *model.Conference) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE conferences SET
			name = $2, description = $3, topics = $4, city = $5,
			start_date = $6, end_date = $7, month = $8, max_attendees = $9,
			seats_available = $10
		 WHERE key = $1`,
		c.Key, c.Name, c.Description, c.Topics, c.City,
		c.StartDate, c.EndDate, c.Month, c.MaxAttendees, c.SeatsAvailable,
	)
	if err != nil {
		return fmt.Errorf("update conference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOrganizer returns all conferences created by one organizer,
// ordered by name.
func (r *ConferenceRepository) ListByOrganizer(ctx context.Context, userID string) ([]model.Conference, error) {
	return r.list(ctx,
		`SELECT `+conferenceColumns+` FROM conferences
		 WHERE organizer_user_id = $1 ORDER BY name ASC`, userID)
}

// ListByKeys returns the conferences for a set of keys, ordered by name.
// Keys that resolve to nothing are silently absent from the result.
func (r *ConferenceRepository) ListByKeys(ctx context.Context, keys []string) ([]model.Conference, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	return r.list(ctx,
		`SELECT `+conferenceColumns+` FROM conferences
		 WHERE key = ANY($1) ORDER BY name ASC`, keys)
}

// Query executes a compiled filter plan. Predicates apply conjunctively in
// plan order; results sort by the plan's inequality column first (when set),
// then by name.
func (r *ConferenceRepository) Query(ctx context.Context, plan *query.Plan) ([]model.Conference, error) {
	sql := `SELECT ` + conferenceColumns + ` FROM conferences`
	where, args := plan.WhereClause(0)
	if where != "" {
		sql += ` WHERE ` + where
	}
	sql += ` ORDER BY ` + plan.OrderClause(query.Conferences.NameColumn)
	return r.list(ctx, sql, args...)
}

// NearlySoldOutNames returns the names of conferences with at least one but
// no more than five seats left, ordered by name.
func (r *ConferenceRepository) NearlySoldOutNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name FROM conferences
		 WHERE seats_available > 0 AND seats_available <= 5
		 ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list nearly sold out conferences: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan conference name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
