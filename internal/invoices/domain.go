// Package invoices turns completed job cards into immutable billing
// records. An invoice is created exactly once per job card; its cost
// fields are never recomputed or edited afterwards.
package invoices

import "time"

// Invoice summarizes labor and parts cost for one job card.
type Invoice struct {
	ID               int64     `json:"id"`
	JobCardID        int64     `json:"job_card_id"`
	LaborCostCents   int64     `json:"-"`
	PartsCostCents   int64     `json:"-"`
	TotalCents       int64     `json:"-"`
	GeneratedBy      int64     `json:"generated_by"`
	MechanicID       *int64    `json:"mechanic_id,omitempty"`
	ServiceAdvisorID *int64    `json:"service_advisor_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateInput carries validated fields for invoice generation. Mechanic
// and advisor hints override the job card's current references in the
// denormalized snapshot; when nil the card's values are copied.
type CreateInput struct {
	JobCardID        int64
	LaborCostCents   int64
	PartsCostCents   int64
	MechanicID       *int64
	ServiceAdvisorID *int64
	GeneratedBy      int64
}
