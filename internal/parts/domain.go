// Package parts exposes a read-only view of the parts ledger: inventory
// items consumed per job card. Ownership of the ledger lies with the
// parts-manager workflows; this service only reads it.
package parts

import "time"

// PartUsage records the consumption of one inventory item on a job card.
type PartUsage struct {
	ID             int64     `json:"id"`
	JobCardID      int64     `json:"job_card_id"`
	ItemID         int64     `json:"item_id"`
	ItemName       string    `json:"item_name"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"-"`
	UsedAt         time.Time `json:"used_at"`
}

// LineTotalCents is quantity times the unit price captured at time of use.
func (u PartUsage) LineTotalCents() int64 {
	return u.Quantity * u.UnitPriceCents
}
