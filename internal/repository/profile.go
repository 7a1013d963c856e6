package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rkohl/conference-central/internal/model"
)

// ProfileRepository handles persistence for user profiles.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `user_id, display_name, main_email, conference_keys_to_attend, wishlist_session_keys`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.UserID, &p.DisplayName, &p.MainEmail,
		&p.ConferenceKeysToAttend, &p.WishlistSessionKeys)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreate returns the user's profile, lazily inserting an empty one with
// the identity's display name and email on first authenticated access.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID, displayName, email string) (*model.Profile, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO profiles (user_id, display_name, main_email)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, displayName, email,
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}

	p, err := scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Get returns a profile or ErrNotFound.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// SaveDisplayName updates the user's display name.
func (r *ProfileRepository) SaveDisplayName(ctx context.Context, userID, displayName string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET display_name = $2 WHERE user_id = $1`,
		userID, displayName,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DisplayNames resolves the display names for a set of user ids.
func (r *ProfileRepository) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, display_name FROM profiles WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list display names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string, len(userIDs))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan display name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
