package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// Result is the uniform envelope returned by every transactional operation.
// Success=false guarantees the underlying transaction was rolled back before
// the result was built.
type Result struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
	DurationMS int64  `json:"duration_ms"`
}

// Outcome is what a mutation function returns to request a commit or an
// explicit rollback. A rollback outcome carries a reason and optional partial
// data for diagnostics; it is an expected business failure, not an error.
type Outcome struct {
	rollback bool
	reason   string
	data     any
}

// Commit requests a commit with the given result data
func Commit(data any) Outcome {
	return Outcome{data: data}
}

// Rollback requests a rollback with a reason and optional partial data
func Rollback(reason string, data any) Outcome {
	return Outcome{rollback: true, reason: reason, data: data}
}

// IsRollback reports whether the outcome requests a rollback
func (o Outcome) IsRollback() bool { return o.rollback }

// RollbackReason returns the reason supplied to Rollback, "" for commits
func (o Outcome) RollbackReason() string { return o.reason }

// Payload returns the data carried by the outcome
func (o Outcome) Payload() any { return o.data }

// MutationFunc is a unit of business logic executed inside a transaction
type MutationFunc func(ctx context.Context, tx pgx.Tx) (Outcome, error)

// QueryFunc is a read-only unit of work with no transaction semantics
type QueryFunc func(ctx context.Context) (any, error)

// TxBeginner abstracts the pool so the runner can be exercised without a
// live database. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxRunner wraps business mutations in an atomic commit/rollback boundary.
// Nothing escapes it unrecovered: errors and panics inside the unit of work
// become a failed Result, never a propagated failure.
type TxRunner struct {
	db     TxBeginner
	logger *slog.Logger
	env    string
}

// NewTxRunner creates a TxRunner bound to the database pool
func NewTxRunner(db *DB, logger *slog.Logger, env string) *TxRunner {
	return &TxRunner{db: db.Pool, logger: logger, env: env}
}

// RunMutation opens a transaction, invokes fn, and commits or rolls back
// based on the outcome. Exactly one of commit or rollback occurs per call.
func (r *TxRunner) RunMutation(ctx context.Context, operation string, fn MutationFunc) Result {
	start := time.Now()

	r.logger.Info("transaction started", slog.String("operation", operation))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.fault(operation, start, fmt.Errorf("begin transaction: %w", err))
	}

	outcome, err := runGuarded(ctx, tx, fn)
	if err != nil {
		_ = tx.Rollback(ctx)
		return r.fault(operation, start, err)
	}

	if outcome.rollback {
		_ = tx.Rollback(ctx)

		elapsed := time.Since(start).Milliseconds()
		message := outcome.reason
		if message == "" {
			message = operation + " was rolled back"
		}

		r.logger.Warn("transaction rolled back",
			slog.String("operation", operation),
			slog.String("reason", message),
			slog.Int64("duration_ms", elapsed))

		return Result{Success: false, Data: outcome.data, Message: message, DurationMS: elapsed}
	}

	if err := tx.Commit(ctx); err != nil {
		return r.fault(operation, start, fmt.Errorf("commit transaction: %w", err))
	}

	elapsed := time.Since(start).Milliseconds()
	r.logger.Info("transaction committed",
		slog.String("operation", operation),
		slog.Int64("duration_ms", elapsed))

	return Result{Success: true, Data: outcome.data, Message: operation + " completed", DurationMS: elapsed}
}

// RunQuery runs a read-only operation under the same result envelope.
// Errors are caught and reported; nothing is rolled back since nothing
// was mutated.
func (r *TxRunner) RunQuery(ctx context.Context, operation string, fn QueryFunc) Result {
	start := time.Now()

	data, err := runQueryGuarded(ctx, fn)
	if err != nil {
		return r.fault(operation, start, err)
	}

	elapsed := time.Since(start).Milliseconds()
	r.logger.Debug("query completed",
		slog.String("operation", operation),
		slog.Int64("duration_ms", elapsed))

	return Result{Success: true, Data: data, Message: operation + " completed", DurationMS: elapsed}
}

// fault logs the full error and builds a failed Result. In production the
// message is genericized so internal detail does not reach the client.
func (r *TxRunner) fault(operation string, start time.Time, err error) Result {
	elapsed := time.Since(start).Milliseconds()

	r.logger.Error("operation failed",
		slog.String("operation", operation),
		slog.Any("error", err),
		slog.Int64("duration_ms", elapsed))

	message := err.Error()
	if r.env == "production" {
		message = operation + " failed"
	}

	return Result{Success: false, Message: message, DurationMS: elapsed}
}

func runGuarded(ctx context.Context, tx pgx.Tx, fn MutationFunc) (outcome Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during transaction: %v", p)
		}
	}()
	return fn(ctx, tx)
}

func runQueryGuarded(ctx context.Context, fn QueryFunc) (data any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during query: %v", p)
		}
	}()
	return fn(ctx)
}
