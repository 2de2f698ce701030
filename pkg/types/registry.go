package types

import "errors"

// SpaceRegistry owns the parking spaces of one lot. Spaces are created only
// by Add and destroyed only by Remove; values returned by Find, AccessPublic,
// List and Snapshot are copies and never alias registry state.
type SpaceRegistry interface {
	// Add registers a free space under id.
	// Returns ErrDuplicateID if id is already registered; the existing
	// space is left unchanged.
	Add(id int, public bool) error

	// Remove deletes the space. Returns ErrNotFound if id is absent.
	Remove(id int) error

	// UpdateOccupancy sets the occupied flag. Idempotent.
	// Returns ErrNotFound if id is absent.
	UpdateOccupancy(id int, occupied bool) error

	// Find returns the space registered under id.
	// Returns ErrNotFound if id is absent.
	Find(id int) (ParkingSpace, error)

	// AccessPublic returns the space if it is public.
	// Returns ErrNotFound if id is absent and ErrNotPublic if the space is
	// private.
	AccessPublic(id int) (ParkingSpace, error)

	// Snapshot returns a copy of the occupancy of every registered space,
	// keyed by space ID.
	Snapshot() (map[int]bool, error)

	// List returns the spaces matching filter, ordered by SpaceID.
	List(filter SpaceFilter) ([]ParkingSpace, error)

	// Close releases backend resources. Idempotent. Every other operation
	// returns ErrRegistryClosed afterwards.
	Close() error
}

// Registry operation errors.
var (
	ErrDuplicateID    = errors.New("space already exists")
	ErrNotFound       = errors.New("space does not exist")
	ErrNotPublic      = errors.New("space is not public")
	ErrRegistryClosed = errors.New("registry is closed")
)
