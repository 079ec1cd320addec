package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads aggregated workshop figures straight from postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the dashboard repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StatusCounts returns the number of job cards per status.
func (r *Repository) StatusCounts(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT status, COUNT(*) FROM job_cards GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// RevenueSince sums invoice totals created at or after the cutoff.
func (r *Repository) RevenueSince(ctx context.Context, since time.Time) (int64, int64, error) {
	const query = `
SELECT COUNT(*), COALESCE(SUM(total_cents), 0)
FROM invoices
WHERE created_at >= $1`
	var count, totalCents int64
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count, &totalCents); err != nil {
		return 0, 0, err
	}
	return count, totalCents, nil
}

// RecentInvoices lists the latest generated invoices.
func (r *Repository) RecentInvoices(ctx context.Context, limit int) ([]RecentInvoice, error) {
	const query = `
SELECT i.id, i.job_card_id, jc.description, i.total_cents, i.created_at
FROM invoices i
JOIN job_cards jc ON jc.id = i.job_card_id
ORDER BY i.created_at DESC, i.id DESC
LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]RecentInvoice, 0, limit)
	for rows.Next() {
		var inv RecentInvoice
		if err := rows.Scan(&inv.ID, &inv.JobCardID, &inv.JobDescription, &inv.TotalCents, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
