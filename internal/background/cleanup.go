package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/mvaldes/almacen/internal/repositories"
)

// CleanupManager periodically purges stale login attempt records so the
// lockout table only holds identities with recent failures
type CleanupManager struct {
	attempts  repositories.LoginAttemptStore
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
}

func NewCleanupManager(
	attempts repositories.LoginAttemptStore,
	logger *slog.Logger,
	interval, retention time.Duration,
) *CleanupManager {
	return &CleanupManager{
		attempts:  attempts,
		logger:    logger,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the periodic purge until Stop is called or the context ends.
// One pass runs immediately on startup.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runPurge(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runPurge(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runPurge(ctx context.Context) {
	purgeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-cm.retention)
	deleted, err := cm.attempts.PurgeStale(purgeCtx, cutoff)
	if err != nil {
		cm.logger.Error("failed to purge stale login attempts", slog.Any("error", err))
		return
	}

	if deleted > 0 {
		cm.logger.Info("stale login attempts purged", slog.Int64("rows_deleted", deleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
