package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

const (
	// TaskTypeInvoiceEmail notifies the finance mailbox about a new invoice.
	TaskTypeInvoiceEmail = "invoice:email"
)

// InvoiceEmailPayload carries the invoice snapshot for the notification.
type InvoiceEmailPayload struct {
	InvoiceID  int64     `json:"invoice_id"`
	JobCardID  int64     `json:"job_card_id"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewInvoiceEmailTask constructs an Asynq task for the invoice notification.
func NewInvoiceEmailTask(payload InvoiceEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInvoiceEmail, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// InvoiceEmailHandler turns invoice notifications into outbound emails.
type InvoiceEmailHandler struct {
	FinanceEmail string
	Enqueuer     interface {
		EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
	}
}

// Handle processes TaskTypeInvoiceEmail tasks.
func (h InvoiceEmailHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload InvoiceEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if h.FinanceEmail == "" || h.Enqueuer == nil {
		return nil
	}
	subject := fmt.Sprintf("Invoice #%d generated for job card #%d", payload.InvoiceID, payload.JobCardID)
	body := fmt.Sprintf(
		"Invoice #%d for job card #%d totals %s. Generated at %s.",
		payload.InvoiceID,
		payload.JobCardID,
		shared.FormatCents(payload.TotalCents),
		shared.DisplayTime(payload.CreatedAt),
	)
	_, err := h.Enqueuer.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      h.FinanceEmail,
		Subject: subject,
		Body:    body,
	})
	return err
}
