package jobcards

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/parts"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

// RepositoryPort defines data access methods for job cards.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateInput) (*JobCard, error)
	GetByID(ctx context.Context, id int64) (*JobCard, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context, req ListRequest) ([]Summary, int, error)
	AssignMechanic(ctx context.Context, id, mechanicID int64) (bool, error)
	StartWork(ctx context.Context, id int64) (bool, error)
	Complete(ctx context.Context, id, laborCostCents int64, completedAt time.Time) (bool, error)
	ResolveFinance(ctx context.Context, id int64, status Status, reason *string) (bool, error)
}

// LedgerPort reads part consumption from the parts ledger.
type LedgerPort interface {
	ListByJobCard(ctx context.Context, jobCardID int64) ([]parts.PartUsage, error)
	CostForJobCard(ctx context.Context, jobCardID int64) (int64, error)
}

// LockerPort serializes mutating operations per job card.
type LockerPort interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// AuditPort records mutations for the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles job card business logic.
type Service struct {
	repo   RepositoryPort
	ledger LedgerPort
	locker LockerPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, ledger LedgerPort, locker LockerPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ledger: ledger, locker: locker, audit: audit, logger: logger}
}

// Create opens a new job card in pending status.
func (s *Service) Create(ctx context.Context, input CreateInput) (*JobCard, error) {
	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" {
		return nil, ErrDescriptionRequired
	}
	if input.VehicleID == 0 {
		return nil, ErrVehicleRequired
	}
	jc, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create job card: %w", err)
	}
	s.recordAudit(ctx, input.CreatedBy, "jobcard.create", jc.ID, nil)
	return jc, nil
}

// Assign allocates a mechanic to a pending (or already assigned) card.
func (s *Service) Assign(ctx context.Context, id, mechanicID, actorID int64) (*JobCard, error) {
	if mechanicID == 0 {
		return nil, ErrMechanicRequired
	}
	return s.transition(ctx, id, actorID, StatusAssigned, "jobcard.assign", map[string]any{"mechanic_id": mechanicID}, func(ctx context.Context) (bool, error) {
		return s.repo.AssignMechanic(ctx, id, mechanicID)
	})
}

// StartWork moves an assigned card to in_progress.
func (s *Service) StartWork(ctx context.Context, id, actorID int64) (*JobCard, error) {
	return s.transition(ctx, id, actorID, StatusInProgress, "jobcard.start", nil, func(ctx context.Context) (bool, error) {
		return s.repo.StartWork(ctx, id)
	})
}

// Complete marks an in_progress card completed, recording the labor cost
// and completion time.
func (s *Service) Complete(ctx context.Context, id, laborCostCents, actorID int64) (*JobCard, error) {
	if laborCostCents < 0 {
		return nil, ErrNegativeLaborCost
	}
	completedAt := time.Now()
	return s.transition(ctx, id, actorID, StatusCompleted, "jobcard.complete", map[string]any{"labor_cost_cents": laborCostCents}, func(ctx context.Context) (bool, error) {
		return s.repo.Complete(ctx, id, laborCostCents, completedAt)
	})
}

// ResolveFinanceStatus records the finance department's acceptance or
// cancellation. Cancellation requires a non-empty reason, records it, and
// clears completed_at; acceptance clears any prior reason and leaves
// completed_at untouched. Re-applying the same resolution is permitted and
// still performs a write.
func (s *Service) ResolveFinanceStatus(ctx context.Context, input ResolveFinanceInput) (*JobCard, error) {
	if !input.NewStatus.IsFinance() {
		return nil, ErrInvalidStatus
	}
	var reason *string
	if input.NewStatus == StatusFinanceCanceled {
		trimmed := strings.TrimSpace(input.CancellationReason)
		if trimmed == "" {
			return nil, ErrReasonRequired
		}
		reason = &trimmed
	}

	release, err := s.acquire(ctx, input.JobCardID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.repo.GetByID(ctx, input.JobCardID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(existing.Status, input.NewStatus) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, existing.Status)
	}

	updated, err := s.repo.ResolveFinance(ctx, input.JobCardID, input.NewStatus, reason)
	if err != nil {
		return nil, fmt.Errorf("resolve finance status: %w", err)
	}
	if !updated {
		return nil, ErrNotFound
	}

	meta := map[string]any{"new_status": string(input.NewStatus)}
	if reason != nil {
		meta["reason"] = *reason
	}
	s.recordAudit(ctx, input.ActorID, "jobcard.finance_resolve", input.JobCardID, meta)

	return s.repo.GetByID(ctx, input.JobCardID)
}

// GetDetail produces the composite read used by dashboards: job card
// fields, display names, and the part usage list with its total.
func (s *Service) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	usages, err := s.ledger.ListByJobCard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read parts ledger: %w", err)
	}
	detail.Parts = usages
	total, err := s.ledger.CostForJobCard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sum parts ledger: %w", err)
	}
	detail.PartsCostCents = total
	return detail, nil
}

// Get returns a single job card.
func (s *Service) Get(ctx context.Context, id int64) (*JobCard, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a filtered page of job cards.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Summary, int, error) {
	return s.repo.List(ctx, req)
}

// transition wraps the shared lock/verify/apply sequence for the
// mechanical chain. The conditional UPDATE is the real guard; the prior
// CanTransition check produces a precise error instead of a silent no-op.
func (s *Service) transition(ctx context.Context, id, actorID int64, to Status, action string, meta map[string]any, apply func(context.Context) (bool, error)) (*JobCard, error) {
	release, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(existing.Status, to) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, existing.Status)
	}

	updated, err := apply(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, existing.Status)
	}

	s.recordAudit(ctx, actorID, action, id, meta)
	return s.repo.GetByID(ctx, id)
}

func (s *Service) acquire(ctx context.Context, id int64) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	return s.locker.Acquire(ctx, shared.JobCardLockKey(id))
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, jobCardID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "job_card",
		EntityID: strconv.FormatInt(jobCardID, 10),
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
