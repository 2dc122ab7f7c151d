// Package service implements the entity services of the mock backend. Each
// service wraps one mock.Store, checks that it is switched on in the
// simulation config, runs a fault trial, and then applies the domain rules
// (defaults, validation, membership) on top of the generic store.
package service

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mesh-intelligence/taskflow/internal/mock"
	"github.com/mesh-intelligence/taskflow/internal/mockconfig"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// Deps carries what every service shares.
type Deps struct {
	Config *mockconfig.Store
	Logger *log.Logger
	// Now stamps createdAt and updatedAt. Defaults to time.Now in UTC.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// now returns the current time truncated to the second so stored timestamps
// survive a JSON round trip unchanged.
func (d Deps) now() time.Time {
	return d.Now().UTC().Truncate(time.Second)
}

// guard is the preamble of every service operation: the service must be
// enabled and the fault trial must miss.
func guard(cfg *mockconfig.Store, service string, simulate func(...mock.FaultOption) error) error {
	if !cfg.IsServiceEnabled(service) {
		return fmt.Errorf("%s: %w", service, types.ErrServiceDisabled)
	}
	return simulate()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrInvalidData, fmt.Sprintf(format, args...))
}
