package types

// ParkingSpace is a single numbered parking slot.
// SpaceID is assigned by the caller and is unique within a registry.
// IsPublic is fixed at creation; IsOccupied is the only mutable field.
type ParkingSpace struct {
	SpaceID    int  `json:"space_id"`
	IsPublic   bool `json:"is_public"`
	IsOccupied bool `json:"is_occupied"`
}

// SpaceFilter selects spaces for SpaceRegistry.List.
// A nil field matches every space.
type SpaceFilter struct {
	Public   *bool
	Occupied *bool
}

// Match reports whether s satisfies the filter.
func (f SpaceFilter) Match(s ParkingSpace) bool {
	if f.Public != nil && *f.Public != s.IsPublic {
		return false
	}
	if f.Occupied != nil && *f.Occupied != s.IsOccupied {
		return false
	}
	return true
}

// Bool returns a pointer to v, for building filters.
func Bool(v bool) *bool {
	return &v
}
