package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sellerconsole/internal/models"
)

// sweepBatch bounds how many orphans one sweep handles.
const sweepBatch = 100

// orphanLedger is the part of UploadStore the sweeper needs.
type orphanLedger interface {
	MarkOrphaned(ctx context.Context, cutoff time.Time) (int64, error)
	ListOrphaned(ctx context.Context, limit int) ([]models.Upload, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Remover deletes hosted objects by URL and reports false for URLs it does
// not host.
type Remover interface {
	RemoveURL(ctx context.Context, url string) (bool, error)
}

// SweepResult summarises one sweep.
type SweepResult struct {
	Marked  int64
	Removed int
	Foreign int
	Failed  int
}

// Sweeper turns stale pending uploads into orphans and deletes the objects
// the console hosts itself.
type Sweeper struct {
	ledger   orphanLedger
	remover  Remover
	grace    time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewSweeper creates a sweeper. remover may be nil when images are hosted
// by the backend; orphans are then only marked.
func NewSweeper(ledger *UploadStore, remover Remover, grace, interval time.Duration) *Sweeper {
	return &Sweeper{ledger: ledger, remover: remover, grace: grace, interval: interval, now: time.Now}
}

// Run sweeps on every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("orphan sweeper started", "grace", s.grace, "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("orphan sweeper stopped")
			return
		case <-ticker.C:
			res, err := s.Sweep(ctx)
			if err != nil {
				slog.Error("orphan sweep failed", "error", err)
				continue
			}
			if res.Marked > 0 || res.Removed > 0 || res.Failed > 0 {
				slog.Info("orphan sweep", "marked", res.Marked, "removed", res.Removed,
					"foreign", res.Foreign, "failed", res.Failed)
			}
		}
	}
}

// Sweep runs one pass.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	marked, err := s.ledger.MarkOrphaned(ctx, s.now().Add(-s.grace))
	if err != nil {
		return res, err
	}
	res.Marked = marked

	if s.remover == nil {
		return res, nil
	}

	orphans, err := s.ledger.ListOrphaned(ctx, sweepBatch)
	if err != nil {
		return res, err
	}

	for _, o := range orphans {
		removed, err := s.remover.RemoveURL(ctx, o.URL)
		if err != nil {
			slog.Warn("orphan delete failed", "url", o.URL, "error", err)
			res.Failed++
			continue
		}
		if removed {
			res.Removed++
		} else {
			res.Foreign++
		}
		if err := s.ledger.Delete(ctx, o.ID); err != nil {
			slog.Warn("orphan ledger delete failed", "id", o.ID, "error", err)
		}
	}
	return res, nil
}
