package jobs

import (
	"context"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/invoices"
)

// InvoiceNotifier satisfies the invoices notification port by enqueueing
// a background email task.
type InvoiceNotifier struct {
	client *Client
}

// NewInvoiceNotifier wraps the Asynq client for invoice notifications.
func NewInvoiceNotifier(client *Client) *InvoiceNotifier {
	return &InvoiceNotifier{client: client}
}

// InvoiceCreated enqueues the invoice email task.
func (n *InvoiceNotifier) InvoiceCreated(ctx context.Context, inv *invoices.Invoice) error {
	if n == nil || n.client == nil || inv == nil {
		return nil
	}
	_, err := n.client.EnqueueInvoiceEmail(ctx, InvoiceEmailPayload{
		InvoiceID:  inv.ID,
		JobCardID:  inv.JobCardID,
		TotalCents: inv.TotalCents,
		CreatedAt:  inv.CreatedAt,
	})
	return err
}

var _ invoices.Notifier = (*InvoiceNotifier)(nil)
