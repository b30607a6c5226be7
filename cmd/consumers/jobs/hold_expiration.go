package jobs

import (
	"context"
	"log/slog"
	"time"

	"tribuna/internal/metrics"
	"tribuna/internal/service"
)

// HoldExpirationJob periodically releases holds whose deadline passed.
// Multiple instances can run at once: the sweep claims each due hold
// with a conditional update, so seats are freed exactly once.
type HoldExpirationJob struct {
	reservations *service.ReservationService
	interval     time.Duration
	ticker       *time.Ticker
	done         chan bool
}

func NewHoldExpirationJob(reservations *service.ReservationService, interval time.Duration) *HoldExpirationJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HoldExpirationJob{
		reservations: reservations,
		interval:     interval,
		done:         make(chan bool),
	}
}

// Start begins the background sweep loop.
func (j *HoldExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting hold expiration job", "interval", j.interval.String())

	j.ticker = time.NewTicker(j.interval)

	// Run initial sweep immediately
	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.sweep(ctx)
			case <-j.done:
				slog.Info("Hold expiration job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *HoldExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *HoldExpirationJob) sweep(ctx context.Context) {
	count, err := j.reservations.ExpireSweep(ctx, time.Now())
	if err != nil {
		slog.Error("Hold expiration sweep failed", "error", err)
		return
	}

	if count > 0 {
		metrics.HoldsExpiredTotal.Add(float64(count))
		slog.Info("Hold expiration sweep released holds", "count", count)
	}
}
