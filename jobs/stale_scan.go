package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/Jacobmwita/FINAL-LEWA--sub002/internal/jobs"
)

const (
	// TaskTypeStaleScan flags job cards stuck in an active status.
	TaskTypeStaleScan = "jobcards:stale_scan"

	defaultStaleAfterHours = 72
)

// StaleScanPayload tunes the scan window.
type StaleScanPayload struct {
	StaleAfterHours int `json:"stale_after_hours"`
}

// NewStaleScanTask constructs the nightly stale scan task.
func NewStaleScanTask(payload StaleScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeStaleScan, data, asynq.Queue(QueueDefault)), nil
}

// StaleScanJob reports job cards that have sat in pending, assigned or
// in_progress longer than the configured window.
type StaleScanJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStaleScanJob initialises the stale scan handler.
func NewStaleScanJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *StaleScanJob {
	return &StaleScanJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the stale scan.
func (j *StaleScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("stale scan: handler not configured")
	}
	var payload StaleScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.StaleAfterHours <= 0 {
		payload.StaleAfterHours = defaultStaleAfterHours
	}

	tracker := j.metrics().Track(TaskTypeStaleScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	cutoff := j.now().Add(-time.Duration(payload.StaleAfterHours) * time.Hour)
	const query = `
SELECT status, COUNT(*)
FROM job_cards
WHERE status IN ('pending', 'assigned', 'in_progress')
  AND updated_at < $1
GROUP BY status`

	rows, err := j.Pool.Query(ctx, query, cutoff)
	if err != nil {
		resultErr = err
		return err
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			resultErr = err
			return err
		}
		total += count
		j.Metrics.AddStaleJobCards(status, count)
		if j.Logger != nil {
			j.Logger.Warn("stale job cards detected",
				slog.String("status", status),
				slog.Int("count", count),
				slog.Time("cutoff", cutoff),
			)
		}
	}
	if err := rows.Err(); err != nil {
		resultErr = err
		return err
	}
	if total == 0 && j.Logger != nil {
		j.Logger.Info("stale scan clean", slog.Time("cutoff", cutoff))
	}
	return nil
}

func (j *StaleScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *StaleScanJob) metrics() *jobmetrics.Metrics {
	return j.Metrics
}
