package parts

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed reads over the parts ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByJobCard returns every usage row for a job card with the item
// name joined for display. A missing item row degrades to an empty name.
func (r *Repository) ListByJobCard(ctx context.Context, jobCardID int64) ([]PartUsage, error) {
	rows, err := r.pool.Query(ctx, `SELECT pu.id, pu.job_card_id, pu.item_id, COALESCE(i.name, ''), pu.quantity, pu.unit_price_cents, pu.used_at
FROM part_usages pu
LEFT JOIN inventory_items i ON i.id = pu.item_id
WHERE pu.job_card_id = $1
ORDER BY pu.id`, jobCardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var usages []PartUsage
	for rows.Next() {
		var u PartUsage
		if err := rows.Scan(&u.ID, &u.JobCardID, &u.ItemID, &u.ItemName, &u.Quantity, &u.UnitPriceCents, &u.UsedAt); err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return usages, nil
}

// CostForJobCard sums quantity*unit price over the ledger, zero when the
// job card has no usage rows.
func (r *Repository) CostForJobCard(ctx context.Context, jobCardID int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity * unit_price_cents), 0) FROM part_usages WHERE job_card_id = $1`, jobCardID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}
