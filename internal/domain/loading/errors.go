package loading

import (
	"errors"
	"fmt"

	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

var (
	// ErrNegativeTime is returned when a load is requested with a negative or NaN time budget
	ErrNegativeTime = errors.New("loading time budget cannot be negative")

	// ErrNilCollaborator is returned when a session is started or advanced without a source, hold or worker
	ErrNilCollaborator = errors.New("loading collaborator cannot be nil")

	// ErrNoActiveSession is returned when a vehicle has no loading session in progress
	ErrNoActiveSession = errors.New("no active loading session")
)

// ErrInvalidManifest reports a malformed manifest entry
type ErrInvalidManifest struct {
	Entry  string
	Reason string
}

func (e *ErrInvalidManifest) Error() string {
	return fmt.Sprintf("invalid manifest entry %s: %s", e.Entry, e.Reason)
}

// ErrUnknownResource is returned for resource ids the manifest cannot accept
type ErrUnknownResource struct {
	ID resource.ResourceID
}

func (e *ErrUnknownResource) Error() string {
	return fmt.Sprintf("unknown resource %s", e.ID)
}

// TransferError describes a single transfer that was rolled back or never happened
type TransferError struct {
	Vehicle  string
	What     string
	Quantity float64
	Err      error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of %.3f %s into %s failed: %v", e.Quantity, e.What, e.Vehicle, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
