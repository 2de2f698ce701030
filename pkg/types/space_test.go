package types

import "testing"

func TestSpaceFilterMatch(t *testing.T) {
	public := ParkingSpace{SpaceID: 1, IsPublic: true}
	privateTaken := ParkingSpace{SpaceID: 2, IsOccupied: true}

	tests := []struct {
		name   string
		filter SpaceFilter
		space  ParkingSpace
		want   bool
	}{
		{"empty filter matches public", SpaceFilter{}, public, true},
		{"empty filter matches private", SpaceFilter{}, privateTaken, true},
		{"public filter", SpaceFilter{Public: Bool(true)}, public, true},
		{"public filter rejects private", SpaceFilter{Public: Bool(true)}, privateTaken, false},
		{"private filter", SpaceFilter{Public: Bool(false)}, privateTaken, true},
		{"occupied filter rejects free", SpaceFilter{Occupied: Bool(true)}, public, false},
		{"free filter", SpaceFilter{Occupied: Bool(false)}, public, true},
		{"both fields", SpaceFilter{Public: Bool(false), Occupied: Bool(true)}, privateTaken, true},
		{"both fields mismatch", SpaceFilter{Public: Bool(true), Occupied: Bool(true)}, privateTaken, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tt.space); got != tt.want {
				t.Fatalf("Match(%+v) = %v, want %v", tt.space, got, tt.want)
			}
		})
	}
}
