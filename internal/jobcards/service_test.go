package jobcards

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/parts"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

type memoryRepo struct {
	cards  map[int64]*JobCard
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{cards: make(map[int64]*JobCard), nextID: 1}
}

func (m *memoryRepo) seed(card JobCard) *JobCard {
	if card.ID == 0 {
		card.ID = m.nextID
	}
	if card.ID >= m.nextID {
		m.nextID = card.ID + 1
	}
	stored := card
	m.cards[stored.ID] = &stored
	return &stored
}

func (m *memoryRepo) Create(_ context.Context, input CreateInput) (*JobCard, error) {
	card := &JobCard{
		ID:               m.nextID,
		Status:           StatusPending,
		Description:      input.Description,
		VehicleID:        input.VehicleID,
		DriverID:         input.DriverID,
		ServiceAdvisorID: input.ServiceAdvisorID,
		CreatedBy:        input.CreatedBy,
		CreatedAt:        time.Now(),
	}
	m.nextID++
	m.cards[card.ID] = card
	return copyCard(card), nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*JobCard, error) {
	card, ok := m.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCard(card), nil
}

func (m *memoryRepo) GetDetail(_ context.Context, id int64) (*Detail, error) {
	card, ok := m.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Detail{JobCard: *copyCard(card), VehicleName: "Land Cruiser 79", CreatedByName: "Service Advisor"}, nil
}

func (m *memoryRepo) List(_ context.Context, req ListRequest) ([]Summary, int, error) {
	var out []Summary
	for _, card := range m.cards {
		if req.Status != nil && card.Status != *req.Status {
			continue
		}
		out = append(out, Summary{JobCard: *copyCard(card)})
	}
	return out, len(out), nil
}

func (m *memoryRepo) AssignMechanic(_ context.Context, id, mechanicID int64) (bool, error) {
	card, ok := m.cards[id]
	if !ok || (card.Status != StatusPending && card.Status != StatusAssigned) {
		return false, nil
	}
	card.Status = StatusAssigned
	card.MechanicID = &mechanicID
	return true, nil
}

func (m *memoryRepo) StartWork(_ context.Context, id int64) (bool, error) {
	card, ok := m.cards[id]
	if !ok || card.Status != StatusAssigned {
		return false, nil
	}
	card.Status = StatusInProgress
	return true, nil
}

func (m *memoryRepo) Complete(_ context.Context, id, laborCostCents int64, completedAt time.Time) (bool, error) {
	card, ok := m.cards[id]
	if !ok || card.Status != StatusInProgress {
		return false, nil
	}
	card.Status = StatusCompleted
	card.LaborCostCents = &laborCostCents
	card.CompletedAt = &completedAt
	return true, nil
}

func (m *memoryRepo) ResolveFinance(_ context.Context, id int64, status Status, reason *string) (bool, error) {
	card, ok := m.cards[id]
	if !ok {
		return false, nil
	}
	card.Status = status
	if status == StatusFinanceCanceled {
		card.CancellationReason = reason
		card.CompletedAt = nil
	} else {
		card.CancellationReason = nil
	}
	return true, nil
}

func copyCard(card *JobCard) *JobCard {
	dup := *card
	return &dup
}

type memoryLedger struct {
	usages map[int64][]parts.PartUsage
}

func (m *memoryLedger) ListByJobCard(_ context.Context, jobCardID int64) ([]parts.PartUsage, error) {
	return m.usages[jobCardID], nil
}

func (m *memoryLedger) CostForJobCard(_ context.Context, jobCardID int64) (int64, error) {
	var total int64
	for _, u := range m.usages[jobCardID] {
		total += u.LineTotalCents()
	}
	return total, nil
}

type recordingAudit struct {
	logs []shared.AuditLog
}

func (r *recordingAudit) Record(_ context.Context, log shared.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func newTestService(repo *memoryRepo) (*Service, *recordingAudit) {
	audit := &recordingAudit{}
	ledger := &memoryLedger{usages: map[int64][]parts.PartUsage{}}
	return NewService(repo, ledger, nil, audit, nil), audit
}

func TestCreateRequiresDescriptionAndVehicle(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{Description: "   ", VehicleID: 1, CreatedBy: 1})
	assert.ErrorIs(t, err, ErrDescriptionRequired)

	_, err = svc.Create(context.Background(), CreateInput{Description: "Replace brake pads", CreatedBy: 1})
	assert.ErrorIs(t, err, ErrVehicleRequired)

	card, err := svc.Create(context.Background(), CreateInput{Description: "Replace brake pads", VehicleID: 1, CreatedBy: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, card.Status)
}

func TestLifecycleHappyPath(t *testing.T) {
	repo := newMemoryRepo()
	svc, audit := newTestService(repo)
	ctx := context.Background()

	card, err := svc.Create(ctx, CreateInput{Description: "Engine service", VehicleID: 3, CreatedBy: 1})
	require.NoError(t, err)

	card, err = svc.Assign(ctx, card.ID, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, card.Status)
	require.NotNil(t, card.MechanicID)
	assert.Equal(t, int64(9), *card.MechanicID)

	card, err = svc.StartWork(ctx, card.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, card.Status)

	card, err = svc.Complete(ctx, card.ID, 150000, 9)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, card.Status)
	require.NotNil(t, card.LaborCostCents)
	assert.Equal(t, int64(150000), *card.LaborCostCents)
	require.NotNil(t, card.CompletedAt)

	assert.Len(t, audit.logs, 4)
	assert.Equal(t, "jobcard.complete", audit.logs[3].Action)
}

func TestTransitionRejectsOutOfOrderSteps(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	card := repo.seed(JobCard{Status: StatusPending, Description: "Suspension check", VehicleID: 1})

	_, err := svc.StartWork(ctx, card.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Complete(ctx, card.ID, 1000, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	inProgress := repo.seed(JobCard{Status: StatusInProgress, Description: "Gearbox", VehicleID: 2})
	_, err = svc.Assign(ctx, inProgress.ID, 4, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAssignValidatesMechanic(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	card := repo.seed(JobCard{Status: StatusPending, Description: "Oil change", VehicleID: 1})
	_, err := svc.Assign(context.Background(), card.ID, 0, 1)
	assert.ErrorIs(t, err, ErrMechanicRequired)
}

func TestCompleteRejectsNegativeLaborCost(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	card := repo.seed(JobCard{Status: StatusInProgress, Description: "Clutch", VehicleID: 1})
	_, err := svc.Complete(context.Background(), card.ID, -1, 1)
	assert.ErrorIs(t, err, ErrNegativeLaborCost)
}

func TestResolveFinanceCancelRequiresReason(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	card := repo.seed(JobCard{ID: 7, Status: StatusCompleted, Description: "Radiator", VehicleID: 1})
	_, err := svc.ResolveFinanceStatus(context.Background(), ResolveFinanceInput{
		JobCardID: card.ID,
		NewStatus: StatusFinanceCanceled,
		ActorID:   2,
	})
	assert.ErrorIs(t, err, ErrReasonRequired)

	_, err = svc.ResolveFinanceStatus(context.Background(), ResolveFinanceInput{
		JobCardID:          card.ID,
		NewStatus:          StatusFinanceCanceled,
		CancellationReason: "   ",
		ActorID:            2,
	})
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestResolveFinanceCancelClearsCompletedAt(t *testing.T) {
	repo := newMemoryRepo()
	svc, audit := newTestService(repo)

	completedAt := time.Now().Add(-time.Hour)
	card := repo.seed(JobCard{ID: 7, Status: StatusCompleted, Description: "Radiator", VehicleID: 1, CompletedAt: &completedAt})

	updated, err := svc.ResolveFinanceStatus(context.Background(), ResolveFinanceInput{
		JobCardID:          card.ID,
		NewStatus:          StatusFinanceCanceled,
		CancellationReason: "Quote disputed by client",
		ActorID:            2,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFinanceCanceled, updated.Status)
	require.NotNil(t, updated.CancellationReason)
	assert.Equal(t, "Quote disputed by client", *updated.CancellationReason)
	assert.Nil(t, updated.CompletedAt)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, "jobcard.finance_resolve", audit.logs[0].Action)
	assert.Equal(t, "Quote disputed by client", audit.logs[0].Meta["reason"])
}

func TestResolveFinanceReceiveClearsReasonKeepsCompletedAt(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	completedAt := time.Now().Add(-time.Hour)
	reason := "previously canceled"
	card := repo.seed(JobCard{
		Status:             StatusCompleted,
		Description:        "Brakes",
		VehicleID:          1,
		CompletedAt:        &completedAt,
		CancellationReason: &reason,
	})

	updated, err := svc.ResolveFinanceStatus(context.Background(), ResolveFinanceInput{
		JobCardID: card.ID,
		NewStatus: StatusFinanceReceived,
		ActorID:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFinanceReceived, updated.Status)
	assert.Nil(t, updated.CancellationReason)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(completedAt))
}

func TestResolveFinanceReachableFromEarlyStates(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	card := repo.seed(JobCard{Status: StatusPending, Description: "Abandoned intake", VehicleID: 1})
	updated, err := svc.ResolveFinanceStatus(context.Background(), ResolveFinanceInput{
		JobCardID:          card.ID,
		NewStatus:          StatusFinanceCanceled,
		CancellationReason: "Client withdrew vehicle",
		ActorID:            2,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFinanceCanceled, updated.Status)
}

func TestResolveFinanceRejectsNonFinanceTarget(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	card := repo.seed(JobCard{Status: StatusCompleted, Description: "Brakes", VehicleID: 1})
	_, err := svc.ResolveFinanceStatus(context.Background(), ResolveFinanceInput{
		JobCardID: card.ID,
		NewStatus: StatusInProgress,
		ActorID:   2,
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGetDetailSumsPartsLedger(t *testing.T) {
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	ledger := &memoryLedger{usages: map[int64][]parts.PartUsage{
		42: {
			{ID: 1, JobCardID: 42, ItemName: "Brake pad set", Quantity: 1, UnitPriceCents: 45000},
			{ID: 2, JobCardID: 42, ItemName: "Oil filter", Quantity: 2, UnitPriceCents: 17525},
		},
	}}
	svc := NewService(repo, ledger, nil, audit, nil)

	repo.seed(JobCard{ID: 42, Status: StatusCompleted, Description: "Full service", VehicleID: 1})

	detail, err := svc.GetDetail(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, detail.Parts, 2)
	assert.Equal(t, int64(45000+2*17525), detail.PartsCostCents)
}

type countingLedger struct {
	memoryLedger
	costCalls int
}

func (c *countingLedger) CostForJobCard(ctx context.Context, jobCardID int64) (int64, error) {
	c.costCalls++
	return c.memoryLedger.CostForJobCard(ctx, jobCardID)
}

func TestGetDetailUsesLedgerAggregate(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &countingLedger{memoryLedger: memoryLedger{usages: map[int64][]parts.PartUsage{
		7: {{ID: 1, JobCardID: 7, ItemName: "Air filter", Quantity: 1, UnitPriceCents: 18000}},
	}}}
	svc := NewService(repo, ledger, nil, &recordingAudit{}, nil)

	repo.seed(JobCard{ID: 7, Status: StatusInProgress, Description: "Filter swap", VehicleID: 2})

	detail, err := svc.GetDetail(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.costCalls, "detail total must come from the ledger aggregate")
	assert.Equal(t, int64(18000), detail.PartsCostCents)
}
