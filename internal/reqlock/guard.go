// Package reqlock prevents structurally identical mutating requests from
// executing concurrently. The guard is process-local and best-effort: it is
// not a distributed lock and gives no exactly-once guarantee across server
// instances.
package reqlock

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultTimeout is the age at which a held lock is treated as abandoned
	DefaultTimeout = 30 * time.Second

	// DefaultSweepInterval is how often expired entries are swept
	DefaultSweepInterval = 60 * time.Second
)

// Guard is a keyed lock table guarding in-flight mutating requests. One
// coarse mutex covers acquire, release, and the sweep — the table is never
// observed half-updated. The mutex is never held across I/O.
type Guard struct {
	mu      sync.Mutex
	entries map[string]time.Time
	timeout time.Duration

	sweepInterval time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	logger        *slog.Logger
}

// EntryStat describes one live lock for the stats endpoint
type EntryStat struct {
	Key   string `json:"key"`
	AgeMS int64  `json:"age_ms"`
}

// Stats is a point-in-time snapshot of the lock table
type Stats struct {
	ActiveRequests int         `json:"active_requests"`
	Entries        []EntryStat `json:"entries"`
}

// New creates a Guard with the given lock timeout and starts its background
// sweep at DefaultSweepInterval. Callers must Stop it on shutdown.
func New(timeout time.Duration, logger *slog.Logger) *Guard {
	return NewWithSweepInterval(timeout, DefaultSweepInterval, logger)
}

// NewWithSweepInterval creates a Guard with an explicit sweep interval
func NewWithSweepInterval(timeout, sweepInterval time.Duration, logger *slog.Logger) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	g := &Guard{
		entries:       make(map[string]time.Time),
		timeout:       timeout,
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
		logger:        logger,
	}

	go g.sweepLoop()

	return g
}

// Acquire records a lock entry for key and returns true, unless a live entry
// already exists within the timeout window. An entry older than the timeout
// is treated as abandoned and replaced. An empty key cannot be locked and
// always succeeds (fail-open for requests whose identity cannot be
// determined).
func (g *Guard) Acquire(key string) bool {
	if key == "" {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if acquiredAt, ok := g.entries[key]; ok && now.Sub(acquiredAt) < g.timeout {
		return false
	}

	g.entries[key] = now
	return true
}

// Release removes the lock entry for key. Idempotent; releasing an absent
// key is a no-op.
func (g *Guard) Release(key string) {
	if key == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
}

// Stats returns a snapshot of the live entries
func (g *Guard) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	stats := Stats{
		ActiveRequests: len(g.entries),
		Entries:        make([]EntryStat, 0, len(g.entries)),
	}
	for key, acquiredAt := range g.entries {
		stats.Entries = append(stats.Entries, EntryStat{
			Key:   key,
			AgeMS: now.Sub(acquiredAt).Milliseconds(),
		})
	}

	return stats
}

// Stop terminates the background sweep and clears the table. Safe to call
// more than once.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopCh)
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries = make(map[string]time.Time)
}

func (g *Guard) sweepLoop() {
	ticker := time.NewTicker(g.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.sweep()
		case <-g.stopCh:
			return
		}
	}
}

// sweep deletes entries older than the timeout, bounding memory growth from
// callers that never released
func (g *Guard) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, acquiredAt := range g.entries {
		if now.Sub(acquiredAt) >= g.timeout {
			delete(g.entries, key)
			removed++
		}
	}

	if removed > 0 && g.logger != nil {
		g.logger.Debug("swept expired request locks", slog.Int("removed", removed))
	}
}
