package invoices

import "errors"

// Domain errors for invoices.
var (
	// ErrNotFound indicates the requested invoice was not found.
	ErrNotFound = errors.New("invoice not found")
	// ErrAlreadyInvoiced indicates the job card already has an invoice.
	ErrAlreadyInvoiced = errors.New("job card has already been invoiced")
	// ErrNotCompleted indicates the job card is not in completed status.
	ErrNotCompleted = errors.New("job card must be completed before invoicing")
	// ErrNegativeCost indicates a negative labor or parts cost.
	ErrNegativeCost = errors.New("labor and parts costs must not be negative")
)
