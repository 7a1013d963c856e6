package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WishlistRepository mutates a user's wishlist set. Structurally a simpler
// sibling of RegistrationRepository: only the profile row is written, but
// the session-existence check still happens inside the same transaction.
type WishlistRepository struct {
	db *pgxpool.Pool
}

// NewWishlistRepository constructs a WishlistRepository.
func NewWishlistRepository(db *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Add inserts the session into the user's wishlist. It fails with
// ErrNotFound when the session does not exist and ErrAlreadyInWishlist on
// a duplicate.
func (r *WishlistRepository) Add(ctx context.Context, userID, sessionKey string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM sessions WHERE key = $1)`, sessionKey,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check session: %w", err)
		}
		if !exists {
			return fmt.Errorf("session %s: %w", sessionKey, ErrNotFound)
		}

		wishlist, err := lockProfileKeys(ctx, tx, userID, "wishlist_session_keys")
		if err != nil {
			return err
		}
		if slices.Contains(wishlist, sessionKey) {
			return ErrAlreadyInWishlist
		}

		_, err = tx.Exec(ctx,
			`UPDATE profiles
			 SET wishlist_session_keys = array_append(wishlist_session_keys, $2)
			 WHERE user_id = $1`,
			userID, sessionKey,
		)
		if err != nil {
			return fmt.Errorf("append wishlist key: %w", err)
		}
		return nil
	})
}

// Remove deletes the session from the user's wishlist, returning false (and
// no error) when it was not there.
func (r *WishlistRepository) Remove(ctx context.Context, userID, sessionKey string) (bool, error) {
	removed := false
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		removed = false

		wishlist, err := lockProfileKeys(ctx, tx, userID, "wishlist_session_keys")
		if err != nil {
			return err
		}
		if !slices.Contains(wishlist, sessionKey) {
			return nil
		}

		_, err = tx.Exec(ctx,
			`UPDATE profiles
			 SET wishlist_session_keys = array_remove(wishlist_session_keys, $2)
			 WHERE user_id = $1`,
			userID, sessionKey,
		)
		if err != nil {
			return fmt.Errorf("remove wishlist key: %w", err)
		}

		removed = true
		return nil
	})
	return removed, err
}
