// Package sqlite implements the SpaceRegistry on an in-memory SQLite
// database. Every Registry opens its own named memory database, so
// registries never share rows and nothing is written to disk.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/parkinglot/pkg/types"
)

// Compile-time interface check.
var _ types.SpaceRegistry = (*Registry)(nil)

// Registry is the SQLite-backed SpaceRegistry.
type Registry struct {
	mu     sync.RWMutex
	db     *sql.DB
	name   string
	closed bool
	log    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for lifecycle and mutation records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry opens a private memory database and creates the schema.
// The caller must Close the registry to release the database.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(r)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating database name: %w", err)
	}
	r.name = "parkinglot-" + id.String()

	db, err := sql.Open("sqlite", memoryDSN(r.name))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// The memory database lives only as long as a connection holds it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.Exec(createSpaces); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	r.db = db
	r.log.Debug("sqlite registry opened", "database", r.name)
	return r, nil
}

func memoryDSN(name string) string {
	return "file:" + name + "?mode=memory&cache=shared"
}

// Add inserts a free space. The lookup and insert share one transaction.
func (r *Registry) Add(id int, public bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return types.ErrRegistryClosed
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRow("SELECT 1 FROM spaces WHERE space_id = ?", id).Scan(&one)
	switch {
	case err == nil:
		return fmt.Errorf("parking space %d: %w", id, types.ErrDuplicateID)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("checking space %d: %w", id, err)
	}

	if _, err := tx.Exec(
		"INSERT INTO spaces (space_id, is_public, is_occupied) VALUES (?, ?, 0)",
		id, boolToInt(public),
	); err != nil {
		return fmt.Errorf("inserting space %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing space %d: %w", id, err)
	}
	r.log.Debug("space added", "space_id", id, "public", public)
	return nil
}

// Remove deletes the space.
func (r *Registry) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return types.ErrRegistryClosed
	}
	if err := r.execOne(id, "DELETE FROM spaces WHERE space_id = ?", id); err != nil {
		return err
	}
	r.log.Debug("space removed", "space_id", id)
	return nil
}

// UpdateOccupancy sets the occupied flag of the space.
func (r *Registry) UpdateOccupancy(id int, occupied bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return types.ErrRegistryClosed
	}
	if err := r.execOne(id,
		"UPDATE spaces SET is_occupied = ? WHERE space_id = ?",
		boolToInt(occupied), id,
	); err != nil {
		return err
	}
	r.log.Debug("occupancy updated", "space_id", id, "occupied", occupied)
	return nil
}

// execOne runs a statement that must touch exactly the row for id.
// An unchanged value still counts as a matched row in SQLite.
func (r *Registry) execOne(id int, query string, args ...any) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("updating space %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating space %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("parking space %d: %w", id, types.ErrNotFound)
	}
	return nil
}

// Find returns the space.
func (r *Registry) Find(id int) (types.ParkingSpace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.findLocked(id)
}

// AccessPublic returns the space if it is public.
func (r *Registry) AccessPublic(id int) (types.ParkingSpace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, err := r.findLocked(id)
	if err != nil {
		return types.ParkingSpace{}, err
	}
	if !s.IsPublic {
		return types.ParkingSpace{}, fmt.Errorf("parking space %d: %w", id, types.ErrNotPublic)
	}
	return s, nil
}

func (r *Registry) findLocked(id int) (types.ParkingSpace, error) {
	if r.closed {
		return types.ParkingSpace{}, types.ErrRegistryClosed
	}
	row := r.db.QueryRow(
		"SELECT space_id, is_public, is_occupied FROM spaces WHERE space_id = ?", id,
	)
	s, err := hydrateSpace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ParkingSpace{}, fmt.Errorf("parking space %d: %w", id, types.ErrNotFound)
		}
		return types.ParkingSpace{}, fmt.Errorf("getting space %d: %w", id, err)
	}
	return s, nil
}

// Snapshot returns the occupancy of every space at call time.
func (r *Registry) Snapshot() (map[int]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, types.ErrRegistryClosed
	}
	rows, err := r.db.Query("SELECT space_id, is_occupied FROM spaces")
	if err != nil {
		return nil, fmt.Errorf("querying occupancy: %w", err)
	}
	defer rows.Close()

	out := make(map[int]bool)
	for rows.Next() {
		var id, occupied int
		if err := rows.Scan(&id, &occupied); err != nil {
			return nil, fmt.Errorf("scanning occupancy: %w", err)
		}
		out[id] = occupied != 0
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating occupancy: %w", err)
	}
	return out, nil
}

// List returns the spaces matching filter, ordered by space_id.
func (r *Registry) List(filter types.SpaceFilter) ([]types.ParkingSpace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, types.ErrRegistryClosed
	}

	query := "SELECT space_id, is_public, is_occupied FROM spaces"
	var conditions []string
	var args []any
	if filter.Public != nil {
		conditions = append(conditions, "is_public = ?")
		args = append(args, boolToInt(*filter.Public))
	}
	if filter.Occupied != nil {
		conditions = append(conditions, "is_occupied = ?")
		args = append(args, boolToInt(*filter.Occupied))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY space_id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing spaces: %w", err)
	}
	defer rows.Close()

	out := []types.ParkingSpace{}
	for rows.Next() {
		s, err := hydrateSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning space: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spaces: %w", err)
	}
	return out, nil
}

// Close closes the database, discarding every space. Idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	r.log.Debug("sqlite registry closed", "database", r.name)
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func hydrateSpace(row rowScanner) (types.ParkingSpace, error) {
	var id, public, occupied int
	if err := row.Scan(&id, &public, &occupied); err != nil {
		return types.ParkingSpace{}, err
	}
	return types.ParkingSpace{
		SpaceID:    id,
		IsPublic:   public != 0,
		IsOccupied: occupied != 0,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
