package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tasknest/backend/internal/infrastructure/cleanup"
)

// ObjectRemover abstracts the object store for the sweeper.
type ObjectRemover interface {
	Remove(ctx context.Context, locator string) error
}

// SweeperConfig controls how frequently the deletion journal is drained.
type SweeperConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// CleanupSweeper retries journaled remote deletions in the background. It is
// best-effort by design: entries that keep failing are eventually dropped.
type CleanupSweeper struct {
	store   *cleanup.Store
	remover ObjectRemover
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SweeperConfig
}

func NewCleanupSweeper(store *cleanup.Store, remover ObjectRemover, logger *zap.Logger, cfg SweeperConfig) *CleanupSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cs := &CleanupSweeper{
		store:   store,
		remover: remover,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = cs.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := cs.Sweep(ctx); err != nil {
			cs.logger.Error("cleanup sweep failed", zap.Error(err))
		}
	})

	return cs
}

// Start launches the cron scheduler.
func (cs *CleanupSweeper) Start() {
	if cs == nil || cs.cron == nil {
		return
	}
	cs.cron.Start()
	cs.logger.Info("cleanup sweeper started")
}

// Stop gracefully stops the scheduler.
func (cs *CleanupSweeper) Stop(ctx context.Context) {
	if cs == nil || cs.cron == nil {
		return
	}
	stopCtx := cs.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	cs.logger.Info("cleanup sweeper stopped")
}

// Sweep retries a batch of journaled deletions synchronously.
func (cs *CleanupSweeper) Sweep(ctx context.Context) error {
	if cs == nil || cs.store == nil {
		return nil
	}

	entries, err := cs.store.GetBatch(cs.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := cs.remover.Remove(ctx, entry.Locator); err != nil {
			cs.logger.Warn("retried deletion failed",
				zap.String("locator", entry.Locator),
				zap.Int("retries", entry.Retries),
				zap.Error(err))

			entry.Retries++
			if entry.Retries >= cs.cfg.MaxRetries {
				cs.logger.Warn("dropping journal entry (max retries reached)", zap.String("locator", entry.Locator))
				_ = cs.store.Remove(entry)
				continue
			}

			if err := cs.store.Remove(entry); err != nil {
				cs.logger.Warn("failed to remove journal entry", zap.Error(err))
			}
			if err := cs.store.Requeue(entry); err != nil {
				cs.logger.Error("failed to requeue journal entry", zap.Error(err))
			}
			continue
		}

		if err := cs.store.Remove(entry); err != nil {
			cs.logger.Warn("failed to purge completed journal entry", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of pending deletions.
func (cs *CleanupSweeper) Size() int {
	if cs == nil || cs.store == nil {
		return 0
	}
	size, err := cs.store.Size()
	if err != nil {
		return 0
	}
	return size
}
