package jobcards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for job cards.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const jobCardColumns = `id, status, description, vehicle_id, driver_id, created_by, mechanic_id, service_advisor_id, labor_cost_cents, cancellation_reason, created_at, completed_at`

func scanJobCard(row pgx.Row) (*JobCard, error) {
	var jc JobCard
	err := row.Scan(&jc.ID, &jc.Status, &jc.Description, &jc.VehicleID, &jc.DriverID, &jc.CreatedBy, &jc.MechanicID, &jc.ServiceAdvisorID, &jc.LaborCostCents, &jc.CancellationReason, &jc.CreatedAt, &jc.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &jc, nil
}

// Create inserts a new job card in pending status.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*JobCard, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO job_cards (status, description, vehicle_id, driver_id, created_by, service_advisor_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING `+jobCardColumns,
		StatusPending, input.Description, input.VehicleID, input.DriverID, input.CreatedBy, input.ServiceAdvisorID)
	return scanJobCard(row)
}

// GetByID returns one job card.
func (r *Repository) GetByID(ctx context.Context, id int64) (*JobCard, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobCardColumns+` FROM job_cards WHERE id = $1`, id)
	return scanJobCard(row)
}

// GetDetail returns the job card with display names joined in. Missing
// related rows degrade to NULL names, never an error.
func (r *Repository) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	var d Detail
	err := r.pool.QueryRow(ctx, `SELECT jc.id, jc.status, jc.description, jc.vehicle_id, jc.driver_id, jc.created_by, jc.mechanic_id, jc.service_advisor_id,
	jc.labor_cost_cents, jc.cancellation_reason, jc.created_at, jc.completed_at,
	COALESCE(v.registration_no || ' ' || v.model, ''),
	d.full_name, m.full_name, a.full_name, COALESCE(c.full_name, ''),
	EXISTS (SELECT 1 FROM invoices i WHERE i.job_card_id = jc.id)
FROM job_cards jc
LEFT JOIN vehicles v ON v.id = jc.vehicle_id
LEFT JOIN drivers d ON d.id = jc.driver_id
LEFT JOIN users m ON m.id = jc.mechanic_id
LEFT JOIN users a ON a.id = jc.service_advisor_id
LEFT JOIN users c ON c.id = jc.created_by
WHERE jc.id = $1`, id).Scan(
		&d.ID, &d.Status, &d.Description, &d.VehicleID, &d.DriverID, &d.CreatedBy, &d.MechanicID, &d.ServiceAdvisorID,
		&d.LaborCostCents, &d.CancellationReason, &d.CreatedAt, &d.CompletedAt,
		&d.VehicleName, &d.DriverName, &d.MechanicName, &d.AdvisorName, &d.CreatedByName,
		&d.Invoiced,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// List returns a filtered page of job cards plus the total match count.
func (r *Repository) List(ctx context.Context, req ListRequest) ([]Summary, int, error) {
	where := []string{"1=1"}
	args := []any{}
	n := 1
	if req.Status != nil {
		where = append(where, fmt.Sprintf("jc.status = $%d", n))
		args = append(args, *req.Status)
		n++
	}
	if req.Search != nil && *req.Search != "" {
		where = append(where, fmt.Sprintf("(jc.description ILIKE $%d OR v.registration_no ILIKE $%d)", n, n))
		args = append(args, "%"+*req.Search+"%")
		n++
	}
	clause := strings.Join(where, " AND ")

	var total int
	countSQL := `SELECT COUNT(*) FROM job_cards jc LEFT JOIN vehicles v ON v.id = jc.vehicle_id WHERE ` + clause
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	listSQL := fmt.Sprintf(`SELECT jc.id, jc.status, jc.description, jc.vehicle_id, jc.driver_id, jc.created_by, jc.mechanic_id, jc.service_advisor_id,
	jc.labor_cost_cents, jc.cancellation_reason, jc.created_at, jc.completed_at,
	COALESCE(v.registration_no || ' ' || v.model, ''), m.full_name
FROM job_cards jc
LEFT JOIN vehicles v ON v.id = jc.vehicle_id
LEFT JOIN users m ON m.id = jc.mechanic_id
WHERE %s
ORDER BY jc.id DESC
LIMIT $%d OFFSET $%d`, clause, n, n+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Status, &s.Description, &s.VehicleID, &s.DriverID, &s.CreatedBy, &s.MechanicID, &s.ServiceAdvisorID,
			&s.LaborCostCents, &s.CancellationReason, &s.CreatedAt, &s.CompletedAt,
			&s.VehicleName, &s.MechanicName); err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// AssignMechanic conditionally moves a pending or assigned card to
// assigned with the given mechanic. Reports whether a row changed.
func (r *Repository) AssignMechanic(ctx context.Context, id, mechanicID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE job_cards SET status = $1, mechanic_id = $2, updated_at = NOW() WHERE id = $3 AND status IN ($4, $1)`,
		StatusAssigned, mechanicID, id, StatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// StartWork conditionally moves an assigned card to in_progress.
func (r *Repository) StartWork(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE job_cards SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		StatusInProgress, id, StatusAssigned)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Complete conditionally moves an in_progress card to completed with the
// labor cost and completion timestamp.
func (r *Repository) Complete(ctx context.Context, id, laborCostCents int64, completedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE job_cards SET status = $1, labor_cost_cents = $2, completed_at = $3, updated_at = NOW() WHERE id = $4 AND status = $5`,
		StatusCompleted, laborCostCents, completedAt, id, StatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ResolveFinance applies a finance resolution. Cancellation records the
// reason and clears completed_at; acceptance clears any prior reason and
// leaves completed_at untouched.
func (r *Repository) ResolveFinance(ctx context.Context, id int64, status Status, reason *string) (bool, error) {
	var tagSQL string
	var args []any
	switch status {
	case StatusFinanceCanceled:
		tagSQL = `UPDATE job_cards SET status = $1, cancellation_reason = $2, completed_at = NULL, updated_at = NOW() WHERE id = $3`
		args = []any{status, reason, id}
	case StatusFinanceReceived:
		tagSQL = `UPDATE job_cards SET status = $1, cancellation_reason = NULL, updated_at = NOW() WHERE id = $2`
		args = []any{status, id}
	default:
		return false, ErrInvalidStatus
	}
	tag, err := r.pool.Exec(ctx, tagSQL, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
