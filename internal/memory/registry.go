// Package memory implements the SpaceRegistry over a Go map.
// A single RWMutex guards the whole map; every operation is O(1) except
// Snapshot and List, which copy.
package memory

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mesh-intelligence/parkinglot/pkg/types"
)

// Compile-time interface check.
var _ types.SpaceRegistry = (*Registry)(nil)

// Registry is the map-backed SpaceRegistry.
type Registry struct {
	mu     sync.RWMutex
	spaces map[int]*types.ParkingSpace
	closed bool
	log    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for mutation records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		spaces: make(map[int]*types.ParkingSpace),
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a free space. The existing space is untouched on ErrDuplicateID.
func (r *Registry) Add(id int, public bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return types.ErrRegistryClosed
	}
	if _, ok := r.spaces[id]; ok {
		return fmt.Errorf("parking space %d: %w", id, types.ErrDuplicateID)
	}
	r.spaces[id] = &types.ParkingSpace{SpaceID: id, IsPublic: public}
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
	if _, ok := r.spaces[id]; !ok {
		return fmt.Errorf("parking space %d: %w", id, types.ErrNotFound)
	}
	delete(r.spaces, id)
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
	s, ok := r.spaces[id]
	if !ok {
		return fmt.Errorf("parking space %d: %w", id, types.ErrNotFound)
	}
	s.IsOccupied = occupied
	r.log.Debug("occupancy updated", "space_id", id, "occupied", occupied)
	return nil
}

// Find returns a copy of the space.
func (r *Registry) Find(id int) (types.ParkingSpace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.findLocked(id)
}

// AccessPublic returns a copy of the space if it is public.
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
	s, ok := r.spaces[id]
	if !ok {
		return types.ParkingSpace{}, fmt.Errorf("parking space %d: %w", id, types.ErrNotFound)
	}
	return *s, nil
}

// Snapshot returns the occupancy of every space at call time.
func (r *Registry) Snapshot() (map[int]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, types.ErrRegistryClosed
	}
	out := make(map[int]bool, len(r.spaces))
	for id, s := range r.spaces {
		out[id] = s.IsOccupied
	}
	return out, nil
}

// List returns the spaces matching filter, ordered by SpaceID.
func (r *Registry) List(filter types.SpaceFilter) ([]types.ParkingSpace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, types.ErrRegistryClosed
	}
	out := make([]types.ParkingSpace, 0, len(r.spaces))
	for _, s := range r.spaces {
		if filter.Match(*s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpaceID < out[j].SpaceID })
	return out, nil
}

// Close drops every space. Idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.spaces = nil
	return nil
}
