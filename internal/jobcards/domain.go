// Package jobcards implements the job card lifecycle: creation, mechanic
// assignment, work progress, completion, and the finance department's
// final accept/cancel resolution.
package jobcards

import (
	"time"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/parts"
)

// Status represents the lifecycle of a job card.
type Status string

const (
	StatusPending         Status = "pending"          // Created, awaiting a mechanic
	StatusAssigned        Status = "assigned"         // Mechanic allocated
	StatusInProgress      Status = "in_progress"      // Work underway
	StatusCompleted       Status = "completed"        // Mechanic signed off, labor cost recorded
	StatusFinanceReceived Status = "finance_received" // Finance accepted the job
	StatusFinanceCanceled Status = "finance_canceled" // Finance canceled with a reason
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusFinanceReceived, StatusFinanceCanceled:
		return true
	default:
		return false
	}
}

// IsFinance reports whether the status is one of the two finance
// resolution states.
func (s Status) IsFinance() bool {
	return s == StatusFinanceReceived || s == StatusFinanceCanceled
}

// IsTerminal reports whether no further mechanical work transitions apply.
func (s Status) IsTerminal() bool {
	return s.IsFinance()
}

// CanTransition is the single transition rule shared by every mutating
// operation. Finance resolution is reachable from any state, including
// re-applying a finance state; the mechanical chain is strictly ordered.
// Assignment may be repeated while a card is still assigned (mechanic
// reassignment before work starts).
func CanTransition(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if to.IsFinance() {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusAssigned
	case StatusAssigned:
		return to == StatusAssigned || to == StatusInProgress
	case StatusInProgress:
		return to == StatusCompleted
	default:
		return false
	}
}

// JobCard is one unit of vehicle service work.
type JobCard struct {
	ID                 int64      `json:"id"`
	Status             Status     `json:"status"`
	Description        string     `json:"description"`
	VehicleID          int64      `json:"vehicle_id"`
	DriverID           *int64     `json:"driver_id,omitempty"`
	CreatedBy          int64      `json:"created_by"`
	MechanicID         *int64     `json:"mechanic_id,omitempty"`
	ServiceAdvisorID   *int64     `json:"service_advisor_id,omitempty"`
	LaborCostCents     *int64     `json:"-"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// Detail is the read-only composite served to dashboards: the card's own
// fields, denormalized display names, and the part usage list joined from
// the parts ledger.
type Detail struct {
	JobCard
	VehicleName    string            `json:"vehicle_name"`
	DriverName     *string           `json:"driver_name,omitempty"`
	MechanicName   *string           `json:"mechanic_name,omitempty"`
	AdvisorName    *string           `json:"advisor_name,omitempty"`
	CreatedByName  string            `json:"created_by_name"`
	Parts          []parts.PartUsage `json:"parts"`
	PartsCostCents int64             `json:"-"`
	Invoiced       bool              `json:"invoiced"`
}

// Summary is one row of the dashboard listing.
type Summary struct {
	JobCard
	VehicleName  string  `json:"vehicle_name"`
	MechanicName *string `json:"mechanic_name,omitempty"`
}

// CreateInput carries validated fields for a new job card.
type CreateInput struct {
	Description      string
	VehicleID        int64
	DriverID         *int64
	ServiceAdvisorID *int64
	CreatedBy        int64
}

// ResolveFinanceInput carries a finance resolution request.
type ResolveFinanceInput struct {
	JobCardID          int64
	NewStatus          Status
	CancellationReason string
	ActorID            int64
}

// ListRequest filters the job card listing.
type ListRequest struct {
	Status *Status
	Search *string
	Limit  int
	Offset int
}
