package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// RecentInvoice is one row in the latest-invoices panel.
type RecentInvoice struct {
	ID             int64     `json:"id"`
	JobCardID      int64     `json:"job_card_id"`
	JobDescription string    `json:"job_description"`
	TotalCents     int64     `json:"total_cents"`
	CreatedAt      time.Time `json:"created_at"`
}

// Summary aggregates the figures shown on the workshop landing page.
type Summary struct {
	StatusCounts      map[string]int64 `json:"status_counts"`
	OpenJobCards      int64            `json:"open_job_cards"`
	MonthInvoiceCount int64            `json:"month_invoice_count"`
	MonthRevenueCents int64            `json:"month_revenue_cents"`
	RecentInvoices    []RecentInvoice  `json:"recent_invoices"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// RepositoryPort abstracts the aggregate queries for tests.
type RepositoryPort interface {
	StatusCounts(ctx context.Context) (map[string]int64, error)
	RevenueSince(ctx context.Context, since time.Time) (int64, int64, error)
	RecentInvoices(ctx context.Context, limit int) ([]RecentInvoice, error)
}

// Service builds dashboard summaries with Redis caching and request
// coalescing so concurrent page loads hit postgres once.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	group singleflight.Group
	now   func() time.Time
}

// NewService constructs a dashboard Service.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

const recentInvoiceLimit = 10

// Load returns the dashboard summary, served from cache when fresh.
func (s *Service) Load(ctx context.Context) (Summary, error) {
	if s.repo == nil {
		return Summary{}, fmt.Errorf("dashboard: repository not configured")
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "summary")
	if err != nil {
		return Summary{}, err
	}

	result := s.group.DoChan(key, func() (interface{}, error) {
		var summary Summary
		err := s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (interface{}, error) {
			return s.build(ctx)
		})
		return summary, err
	})

	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return Summary{}, res.Err
		}
		return res.Val.(Summary), nil
	}
}

// Invalidate drops cached summaries after a mutation.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) build(ctx context.Context) (Summary, error) {
	counts, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return Summary{}, err
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	invoiceCount, revenueCents, err := s.repo.RevenueSince(ctx, monthStart)
	if err != nil {
		return Summary{}, err
	}

	recent, err := s.repo.RecentInvoices(ctx, recentInvoiceLimit)
	if err != nil {
		return Summary{}, err
	}

	var open int64
	for status, count := range counts {
		switch status {
		case "pending", "assigned", "in_progress":
			open += count
		}
	}

	return Summary{
		StatusCounts:      counts,
		OpenJobCards:      open,
		MonthInvoiceCount: invoiceCount,
		MonthRevenueCents: revenueCents,
		RecentInvoices:    recent,
		GeneratedAt:       now,
	}, nil
}
