package jobcards

import "errors"

// Domain errors for job cards.
var (
	// ErrNotFound indicates the requested job card was not found.
	ErrNotFound = errors.New("job card not found")

	// Status transition errors.
	ErrInvalidStatus     = errors.New("status must be finance_received or finance_canceled")
	ErrInvalidTransition = errors.New("job card is not in a state that allows this operation")

	// Validation errors.
	ErrReasonRequired      = errors.New("cancellation reason is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrVehicleRequired     = errors.New("vehicle is required")
	ErrMechanicRequired    = errors.New("mechanic is required")
	ErrNegativeLaborCost   = errors.New("labor cost must not be negative")
)
