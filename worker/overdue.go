package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/store"
)

// OverdueSweeper periodically promotes expired BORROWED records to OVERDUE.
type OverdueSweeper struct {
	store    *store.Store
	interval time.Duration
}

func NewOverdueSweeper(store *store.Store, interval time.Duration) *OverdueSweeper {
	return &OverdueSweeper{store: store, interval: interval}
}

// Start runs the sweep on a ticker until the context is canceled. One sweep
// runs immediately so a restart does not leave stale records for a full
// interval.
func (s *OverdueSweeper) Start(ctx context.Context) {
	go func() {
		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Debug("Overdue sweeper stopped")
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *OverdueSweeper) sweep() {
	count, err := s.store.MarkOverdueRecords(time.Now().UTC())
	if err != nil {
		log.Error("Overdue sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		log.Info("Overdue sweep finished", zap.Int64("records_marked", count))
	}
}
