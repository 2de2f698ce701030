// Package parking is the public entry point for opening a SpaceRegistry.
// It selects a backend from a types.Config while keeping the backend
// implementations internal.
//
// Example:
//
//	reg, err := parking.Open(types.Config{Backend: types.BackendMemory})
//	if err != nil {
//	    return err
//	}
//	defer reg.Close()
//	err = reg.Add(1, true)
package parking

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/parkinglot/internal/memory"
	"github.com/mesh-intelligence/parkinglot/internal/sqlite"
	"github.com/mesh-intelligence/parkinglot/pkg/types"
)

// Version is the release version of the parkinglot module.
const Version = "0.1.0"

type options struct {
	logger *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithLogger passes l to the selected backend.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Open validates cfg and returns an empty registry on the selected backend.
func Open(cfg types.Config, opts ...Option) (types.SpaceRegistry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch cfg.Backend {
	case types.BackendSQLite:
		reg, err := sqlite.NewRegistry(sqlite.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		return reg, nil
	default:
		return memory.NewRegistry(memory.WithLogger(o.logger)), nil
	}
}
