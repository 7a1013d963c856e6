// Package repository implements all database access for the conference
// catalog. It uses pgx directly (no ORM) for transparency and performance.
package repository

import "errors"

// ErrNotFound is returned when a referenced key does not resolve to a
// stored entity.
var ErrNotFound = errors.New("not found")

// ErrAlreadyRegistered is returned when a user registers twice for the
// same conference.
var ErrAlreadyRegistered = errors.New("already registered for this conference")

// ErrNoSeats is returned when a conference has no remaining seats.
var ErrNoSeats = errors.New("no seats available")

// ErrAlreadyInWishlist is returned when a session is added to a wishlist
// it is already in.
var ErrAlreadyInWishlist = errors.New("session already in wishlist")

// ErrNotOwner is returned when a caller mutates a conference they do not
// organize.
var ErrNotOwner = errors.New("only the organizer can do this")
