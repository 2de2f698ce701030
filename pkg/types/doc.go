// Package types defines the SpaceRegistry interface, the ParkingSpace entity,
// backend configuration, and the standard errors shared by every registry
// backend.
package types
