package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/jobcards"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

// RepositoryPort defines data access methods for invoices.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateInput, totalCents int64) (*Invoice, error)
	Get(ctx context.Context, id int64) (*Invoice, error)
	GetByJobCard(ctx context.Context, jobCardID int64) (*Invoice, error)
	List(ctx context.Context, limit int) ([]Invoice, error)
}

// JobCardSource reads job cards to verify invoicing preconditions.
type JobCardSource interface {
	Get(ctx context.Context, id int64) (*jobcards.JobCard, error)
}

// LockerPort serializes mutating operations per job card.
type LockerPort interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// AuditPort records mutations for the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Notifier announces a freshly created invoice, typically by enqueueing
// a background task for the finance mailbox.
type Notifier interface {
	InvoiceCreated(ctx context.Context, inv *Invoice) error
}

// Service handles invoice business logic.
type Service struct {
	repo     RepositoryPort
	jobCards JobCardSource
	locker   LockerPort
	audit    AuditPort
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, jobCards JobCardSource, locker LockerPort, audit AuditPort, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, jobCards: jobCards, locker: locker, audit: audit, notifier: notifier, logger: logger}
}

// Create generates the invoice for a completed job card. The total is
// labor plus parts, computed once from the caller-supplied figures; the
// mechanic and advisor references are snapshotted so later reassignment
// on the job card does not change the invoice. The job card's status is
// left untouched: re-invoicing is prevented solely by the uniqueness of
// job_card_id.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Invoice, error) {
	if input.LaborCostCents < 0 || input.PartsCostCents < 0 {
		return nil, ErrNegativeCost
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, shared.JobCardLockKey(input.JobCardID))
		if err != nil {
			return nil, err
		}
		defer release()
	}

	jc, err := s.jobCards.Get(ctx, input.JobCardID)
	if err != nil {
		return nil, err
	}
	if jc.Status != jobcards.StatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrNotCompleted, jc.Status)
	}

	if input.MechanicID == nil {
		input.MechanicID = jc.MechanicID
	}
	if input.ServiceAdvisorID == nil {
		input.ServiceAdvisorID = jc.ServiceAdvisorID
	}

	inv, err := s.repo.Create(ctx, input, input.LaborCostCents+input.PartsCostCents)
	if err != nil {
		if errors.Is(err, ErrAlreadyInvoiced) {
			return nil, ErrAlreadyInvoiced
		}
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.recordAudit(ctx, input.GeneratedBy, inv)
	s.notify(ctx, inv)
	return inv, nil
}

// Get returns one invoice.
func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// GetByJobCard returns the invoice for a job card.
func (s *Service) GetByJobCard(ctx context.Context, jobCardID int64) (*Invoice, error) {
	return s.repo.GetByJobCard(ctx, jobCardID)
}

// List returns the most recent invoices.
func (s *Service) List(ctx context.Context, limit int) ([]Invoice, error) {
	return s.repo.List(ctx, limit)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, inv *Invoice) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "invoice.create",
		Entity:   "invoice",
		EntityID: strconv.FormatInt(inv.ID, 10),
		Meta: map[string]any{
			"job_card_id": inv.JobCardID,
			"total":       shared.FormatCents(inv.TotalCents),
		},
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}

// notify is best-effort: a failed enqueue never fails the creation.
func (s *Service) notify(ctx context.Context, inv *Invoice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.InvoiceCreated(ctx, inv); err != nil {
		s.logger.Warn("invoice notification enqueue failed", slog.Int64("invoice_id", inv.ID), slog.Any("error", err))
	}
}
