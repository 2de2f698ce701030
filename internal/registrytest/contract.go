// Package registrytest holds the behavioral suite every SpaceRegistry
// backend must pass. Backend packages call Run from their own tests.
package registrytest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/parkinglot/pkg/types"
)

// Factory returns a fresh, empty registry. Run closes it when the subtest ends.
type Factory func(t *testing.T) types.SpaceRegistry

// Run exercises the SpaceRegistry contract against registries from newRegistry.
func Run(t *testing.T, newRegistry Factory) {
	open := func(t *testing.T) types.SpaceRegistry {
		t.Helper()
		r := newRegistry(t)
		t.Cleanup(func() { _ = r.Close() })
		return r
	}

	t.Run("AddThenFind", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(7, true))
		require.NoError(t, r.Add(8, false))

		got, err := r.Find(7)
		require.NoError(t, err)
		assert.Equal(t, types.ParkingSpace{SpaceID: 7, IsPublic: true}, got)

		got, err = r.Find(8)
		require.NoError(t, err)
		assert.Equal(t, types.ParkingSpace{SpaceID: 8}, got)
	})

	t.Run("AddAcceptsZeroAndNegativeIDs", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(0, true))
		require.NoError(t, r.Add(-3, false))

		snap, err := r.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, map[int]bool{0: false, -3: false}, snap)
	})

	t.Run("DuplicateAddLeavesOriginal", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(1, true))
		require.NoError(t, r.UpdateOccupancy(1, true))

		err := r.Add(1, false)
		require.ErrorIs(t, err, types.ErrDuplicateID)

		got, err := r.Find(1)
		require.NoError(t, err)
		assert.True(t, got.IsPublic)
		assert.True(t, got.IsOccupied)
	})

	t.Run("RemoveThenFindFails", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(3, true))
		require.NoError(t, r.Remove(3))

		_, err := r.Find(3)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("RemovedIDCanBeReused", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(4, true))
		require.NoError(t, r.UpdateOccupancy(4, true))
		require.NoError(t, r.Remove(4))
		require.NoError(t, r.Add(4, false))

		got, err := r.Find(4)
		require.NoError(t, err)
		assert.Equal(t, types.ParkingSpace{SpaceID: 4}, got)
	})

	t.Run("MissingIDReturnsNotFound", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(5, true))
		require.NoError(t, r.Remove(5))

		for _, id := range []int{5, 99} {
			assert.ErrorIs(t, r.Remove(id), types.ErrNotFound)
			assert.ErrorIs(t, r.UpdateOccupancy(id, true), types.ErrNotFound)
			_, err := r.Find(id)
			assert.ErrorIs(t, err, types.ErrNotFound)
			_, err = r.AccessPublic(id)
			assert.ErrorIs(t, err, types.ErrNotFound)
		}
	})

	t.Run("UpdateOccupancyIsIdempotent", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(1, false))
		require.NoError(t, r.UpdateOccupancy(1, true))
		require.NoError(t, r.UpdateOccupancy(1, true))

		got, err := r.Find(1)
		require.NoError(t, err)
		assert.True(t, got.IsOccupied)
		assert.False(t, got.IsPublic)

		require.NoError(t, r.UpdateOccupancy(1, false))
		got, err = r.Find(1)
		require.NoError(t, err)
		assert.False(t, got.IsOccupied)
	})

	t.Run("AccessPublic", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(1, true))
		require.NoError(t, r.Add(2, false))

		got, err := r.AccessPublic(1)
		require.NoError(t, err)
		assert.Equal(t, 1, got.SpaceID)
		assert.True(t, got.IsPublic)

		_, err = r.AccessPublic(2)
		assert.ErrorIs(t, err, types.ErrNotPublic)
		assert.NotErrorIs(t, err, types.ErrNotFound)

		// Private spaces stay reachable through plain lookup and update.
		require.NoError(t, r.UpdateOccupancy(2, true))
		got, err = r.Find(2)
		require.NoError(t, err)
		assert.True(t, got.IsOccupied)
	})

	t.Run("FindReturnsCopy", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(1, true))

		got, err := r.Find(1)
		require.NoError(t, err)
		got.IsOccupied = true
		got.IsPublic = false

		again, err := r.Find(1)
		require.NoError(t, err)
		assert.Equal(t, types.ParkingSpace{SpaceID: 1, IsPublic: true}, again)
	})

	t.Run("SnapshotIsDetached", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(1, true))
		require.NoError(t, r.Add(2, false))

		snap, err := r.Snapshot()
		require.NoError(t, err)

		require.NoError(t, r.UpdateOccupancy(1, true))
		require.NoError(t, r.Remove(2))
		require.NoError(t, r.Add(3, true))
		assert.Equal(t, map[int]bool{1: false, 2: false}, snap)

		snap[1] = true
		delete(snap, 2)
		fresh, err := r.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, map[int]bool{1: true, 3: false}, fresh)
	})

	t.Run("SnapshotOfEmptyRegistry", func(t *testing.T) {
		r := open(t)
		snap, err := r.Snapshot()
		require.NoError(t, err)
		assert.NotNil(t, snap)
		assert.Empty(t, snap)
	})

	t.Run("List", func(t *testing.T) {
		r := open(t)
		for _, s := range []types.ParkingSpace{
			{SpaceID: 30, IsPublic: true},
			{SpaceID: 10, IsPublic: false},
			{SpaceID: 20, IsPublic: true},
		} {
			require.NoError(t, r.Add(s.SpaceID, s.IsPublic))
		}
		require.NoError(t, r.UpdateOccupancy(20, true))

		all, err := r.List(types.SpaceFilter{})
		require.NoError(t, err)
		assert.Equal(t, []types.ParkingSpace{
			{SpaceID: 10},
			{SpaceID: 20, IsPublic: true, IsOccupied: true},
			{SpaceID: 30, IsPublic: true},
		}, all)

		free, err := r.List(types.SpaceFilter{Public: types.Bool(true), Occupied: types.Bool(false)})
		require.NoError(t, err)
		assert.Equal(t, []types.ParkingSpace{{SpaceID: 30, IsPublic: true}}, free)

		private, err := r.List(types.SpaceFilter{Public: types.Bool(false)})
		require.NoError(t, err)
		assert.Equal(t, []types.ParkingSpace{{SpaceID: 10}}, private)
	})

	t.Run("Scenario", func(t *testing.T) {
		r := open(t)
		require.NoError(t, r.Add(1, true))
		require.NoError(t, r.Add(2, false))

		snap, err := r.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, map[int]bool{1: false, 2: false}, snap)

		require.NoError(t, r.UpdateOccupancy(1, true))
		snap, err = r.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, map[int]bool{1: true, 2: false}, snap)

		got, err := r.AccessPublic(1)
		require.NoError(t, err)
		assert.Equal(t, types.ParkingSpace{SpaceID: 1, IsPublic: true, IsOccupied: true}, got)
		_, err = r.AccessPublic(2)
		require.ErrorIs(t, err, types.ErrNotPublic)

		require.ErrorIs(t, r.Add(1, false), types.ErrDuplicateID)
		got, err = r.Find(1)
		require.NoError(t, err)
		assert.Equal(t, types.ParkingSpace{SpaceID: 1, IsPublic: true, IsOccupied: true}, got)

		require.NoError(t, r.Remove(2))
		_, err = r.Find(2)
		require.ErrorIs(t, err, types.ErrNotFound)
		snap, err = r.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, map[int]bool{1: true}, snap)
	})

	t.Run("ConcurrentCallers", func(t *testing.T) {
		r := open(t)
		const workers = 8
		const perWorker = 50

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					id := w*perWorker + i
					if err := r.Add(id, i%2 == 0); err != nil {
						t.Error(fmt.Errorf("add %d: %w", id, err))
						return
					}
					if err := r.UpdateOccupancy(id, true); err != nil {
						t.Error(err)
						return
					}
					if _, err := r.Snapshot(); err != nil {
						t.Error(err)
						return
					}
					if _, err := r.List(types.SpaceFilter{Occupied: types.Bool(false)}); err != nil {
						t.Error(err)
						return
					}
				}
			}(w)
		}
		wg.Wait()

		snap, err := r.Snapshot()
		require.NoError(t, err)
		assert.Len(t, snap, workers*perWorker)
		for id, occupied := range snap {
			assert.True(t, occupied, "space %d", id)
		}
	})

	t.Run("Close", func(t *testing.T) {
		r := newRegistry(t)
		require.NoError(t, r.Add(1, true))
		require.NoError(t, r.Close())
		require.NoError(t, r.Close())

		assert.ErrorIs(t, r.Add(2, true), types.ErrRegistryClosed)
		assert.ErrorIs(t, r.Remove(1), types.ErrRegistryClosed)
		assert.ErrorIs(t, r.UpdateOccupancy(1, true), types.ErrRegistryClosed)
		_, err := r.Find(1)
		assert.ErrorIs(t, err, types.ErrRegistryClosed)
		_, err = r.AccessPublic(1)
		assert.ErrorIs(t, err, types.ErrRegistryClosed)
		_, err = r.Snapshot()
		assert.ErrorIs(t, err, types.ErrRegistryClosed)
		_, err = r.List(types.SpaceFilter{})
		assert.ErrorIs(t, err, types.ErrRegistryClosed)
	})
}
