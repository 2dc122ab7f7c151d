package types

import (
	"errors"
	"fmt"
	"time"
)

// Store operation errors.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidID         = errors.New("invalid entity ID")
	ErrInvalidData       = errors.New("invalid entity data")
	ErrInvalidPagination = errors.New("page and limit must be positive")
	ErrServiceDisabled   = errors.New("mock service is disabled")
	ErrSimulatedFault    = errors.New("simulated fault")
)

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// Relationship and session errors returned by the entity services.
var (
	ErrAlreadyMember      = errors.New("user is already a member")
	ErrNotMember          = errors.New("user is not a member")
	ErrOwnerRemoval       = errors.New("workspace owner cannot be removed")
	ErrLeaderRemoval      = errors.New("team leader cannot be removed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrNoSession          = errors.New("no active session")
	ErrSessionExpired     = errors.New("session expired")
	ErrMissingData        = errors.New("import document has no data section")
)

// Default values for a simulated fault.
const (
	DefaultFaultMessage = "Simulated network error"
	DefaultFaultCode    = "MOCK_ERROR"
	DefaultFaultStatus  = 500
)

// MockError is the failure produced by fault injection. It carries the same
// fields a real backend error would so callers cannot tell them apart, and
// matches ErrSimulatedFault under errors.Is.
type MockError struct {
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *MockError) Error() string {
	return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Code, e.Status)
}

// Unwrap lets errors.Is(err, ErrSimulatedFault) succeed.
func (e *MockError) Unwrap() error {
	return ErrSimulatedFault
}
