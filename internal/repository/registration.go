package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistrationRepository mutates a user's attendance set and a conference's
// seat counter together, atomically.
//
// Two goroutines racing for the last seat must not both succeed. Each
// attempt runs in one transaction that locks the profile row and then the
// conference row with SELECT … FOR UPDATE, so concurrent attempts against
// the same pair serialize at the row locks and the second one re-reads the
// already-decremented counter. The lock order is fixed (profile before
// conference) so two registrations can never deadlock each other; commit
// conflicts that Postgres still reports are retried a bounded number of
// times because they indicate a race, not an invariant violation.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const txAttempts = 3

// retryable reports whether err is a serialization or deadlock failure worth
// re-running the transaction for.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// inTx runs fn inside a transaction, retrying on commit conflicts.
func inTx(ctx context.Context, db *pgxpool.Pool, fn func(pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = pgx.BeginFunc(ctx, db, fn)
		if err == nil || !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("transaction did not commit after %d attempts: %w", txAttempts, err)
}

// lockProfileKeys locks the profile row and returns the named key set column.
func lockProfileKeys(ctx context.Context, tx pgx.Tx, userID, column string) ([]string, error) {
	var keys []string
	err := tx.QueryRow(ctx,
		`SELECT `+column+` FROM profiles WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&keys)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("lock profile row: %w", err)
	}
	return keys, nil
}

// Register adds the conference to the user's attendance set and takes one
// seat. It fails with ErrNotFound when the conference does not exist,
// ErrAlreadyRegistered on a duplicate, and ErrNoSeats when the conference
// is full. Both writes commit together or not at all.
func (r *RegistrationRepository) Register(ctx context.Context, userID, conferenceKey string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		attending, err := lockProfileKeys(ctx, tx, userID, "conference_keys_to_attend")
		if err != nil {
			return err
		}

		var seats int
		err = tx.QueryRow(ctx,
			`SELECT seats_available FROM conferences WHERE key = $1 FOR UPDATE`,
			conferenceKey,
		).Scan(&seats)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("conference %s: %w", conferenceKey, ErrNotFound)
			}
			return fmt.Errorf("lock conference row: %w", err)
		}

		if slices.Contains(attending, conferenceKey) {
			return ErrAlreadyRegistered
		}
		if seats <= 0 {
			return ErrNoSeats
		}

		_, err = tx.Exec(ctx,
			`UPDATE profiles
			 SET conference_keys_to_attend = array_append(conference_keys_to_attend, $2)
			 WHERE user_id = $1`,
			userID, conferenceKey,
		)
		if err != nil {
			return fmt.Errorf("append attendance key: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE conferences SET seats_available = seats_available - 1 WHERE key = $1`,
			conferenceKey,
		)
		if err != nil {
			return fmt.Errorf("decrement seats: %w", err)
		}
		return nil
	})
}

// Unregister removes the conference from the user's attendance set and gives
// the seat back. It returns false (and no error) when the user was not
// registered, so a repeated unregister is a no-op.
func (r *RegistrationRepository) Unregister(ctx context.Context, userID, conferenceKey string) (bool, error) {
	removed := false
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		removed = false

		attending, err := lockProfileKeys(ctx, tx, userID, "conference_keys_to_attend")
		if err != nil {
			return err
		}
		if !slices.Contains(attending, conferenceKey) {
			return nil
		}

		tag, err := tx.Exec(ctx,
			`UPDATE conferences SET seats_available = seats_available + 1 WHERE key = $1`,
			conferenceKey,
		)
		if err != nil {
			return fmt.Errorf("increment seats: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("conference %s: %w", conferenceKey, ErrNotFound)
		}

		_, err = tx.Exec(ctx,
			`UPDATE profiles
			 SET conference_keys_to_attend = array_remove(conference_keys_to_attend, $2)
			 WHERE user_id = $1`,
			userID, conferenceKey,
		)
		if err != nil {
			return fmt.Errorf("remove attendance key: %w", err)
		}

		removed = true
		return nil
	})
	return removed, err
}
