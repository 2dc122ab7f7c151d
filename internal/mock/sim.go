package mock

import (
	"context"
	"time"

	"github.com/mesh-intelligence/taskflow/internal/mockconfig"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// Delay sleeps for a latency drawn from cfg. Cancellation during the sleep
// returns ctx.Err() so the caller can abort before any side effect.
func Delay(ctx context.Context, cfg *mockconfig.Store) error {
	d := cfg.RandomDelay()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SimulateError runs one fault trial against cfg. On a hit it returns a
// *types.MockError with the default message, code and status, overridden by
// opts.
func SimulateError(cfg *mockconfig.Store, opts ...FaultOption) error {
	if !cfg.ShouldSimulateError() {
		return nil
	}
	fault := &types.MockError{
		Message:   types.DefaultFaultMessage,
		Code:      types.DefaultFaultCode,
		Status:    types.DefaultFaultStatus,
		Timestamp: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(fault)
	}
	return fault
}

// FaultOption customises a simulated fault.
type FaultOption func(*types.MockError)

// WithMessage sets the fault message.
func WithMessage(msg string) FaultOption {
	return func(e *types.MockError) { e.Message = msg }
}

// WithCode sets the fault code.
func WithCode(code string) FaultOption {
	return func(e *types.MockError) { e.Code = code }
}

// WithStatus sets the fault status.
func WithStatus(status int) FaultOption {
	return func(e *types.MockError) { e.Status = status }
}
