package invoices

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, job_card_id, labor_cost_cents, parts_cost_cents, total_cents, generated_by, mechanic_id, service_advisor_id, created_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.JobCardID, &inv.LaborCostCents, &inv.PartsCostCents, &inv.TotalCents, &inv.GeneratedBy, &inv.MechanicID, &inv.ServiceAdvisorID, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// Create inserts the invoice. The unique index on job_card_id makes the
// duplicate check atomic: a concurrent second insert surfaces as a
// unique violation, never as a second invoice.
func (r *Repository) Create(ctx context.Context, input CreateInput, totalCents int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO invoices (job_card_id, labor_cost_cents, parts_cost_cents, total_cents, generated_by, mechanic_id, service_advisor_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING `+invoiceColumns,
		input.JobCardID, input.LaborCostCents, input.PartsCostCents, totalCents, input.GeneratedBy, input.MechanicID, input.ServiceAdvisorID)
	inv, err := scanInvoice(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyInvoiced
		}
		return nil, err
	}
	return inv, nil
}

// Get returns one invoice by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

// GetByJobCard returns the invoice for a job card if one exists.
func (r *Repository) GetByJobCard(ctx context.Context, jobCardID int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE job_card_id = $1`, jobCardID)
	return scanInvoice(row)
}

// List returns the most recent invoices.
func (r *Repository) List(ctx context.Context, limit int) ([]Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.JobCardID, &inv.LaborCostCents, &inv.PartsCostCents, &inv.TotalCents, &inv.GeneratedBy, &inv.MechanicID, &inv.ServiceAdvisorID, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}
