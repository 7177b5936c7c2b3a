package overduesvc

import (
	"context"
	"log/slog"
	"time"
)

// Worker drives the scanner on a fixed schedule.
type Worker struct {
	s        *Scanner
	interval time.Duration
	horizon  int
	log      *slog.Logger
}

func NewWorker(s *Scanner, interval time.Duration, horizonDays int, log *slog.Logger) *Worker {
	return &Worker{s: s, interval: interval, horizon: horizonDays, log: log}
}

// Start runs an immediate scan and then one per interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.run(ctx)
			}
		}
	}()
}

func (w *Worker) run(ctx context.Context) {
	digest, err := w.s.Scan(ctx, w.horizon)
	if err != nil {
		w.log.Error("overdue scan failed", "err", err)
		return
	}
	w.log.Info("overdue scan done", "digest_len", len(digest))
}
