package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LockoutPolicy configures the brute-force lockout thresholds
type LockoutPolicy struct {
	MaxAttempts   int
	BlockDuration time.Duration
}

// DefaultLockoutPolicy returns the standard 5-attempts / 15-minute policy
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxAttempts:   5,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginAttemptStore tracks failed login attempts per identity. Mutations are
// expected to run inside a transaction boundary; WithTx binds the store to
// one.
type LoginAttemptStore interface {
	WithTx(tx pgx.Tx) LoginAttemptStore
	FindByEmail(ctx context.Context, email string) (*models.LoginAttempt, error)
	IsBlocked(ctx context.Context, email string) (bool, error)
	RemainingBlockSeconds(ctx context.Context, email string) (int, error)
	RecordFailure(ctx context.Context, email, ip string) (*models.LoginAttempt, error)
	Reset(ctx context.Context, email string) (bool, error)
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// LoginAttemptRepository implements LoginAttemptStore on PostgreSQL
type LoginAttemptRepository struct {
	q      database.Querier
	policy LockoutPolicy
}

// NewLoginAttemptRepository creates a LoginAttemptRepository bound to the pool
func NewLoginAttemptRepository(db *database.DB, policy LockoutPolicy) *LoginAttemptRepository {
	return &LoginAttemptRepository{q: db.Pool, policy: policy}
}

// WithTx returns a copy of the store bound to the given transaction
func (r *LoginAttemptRepository) WithTx(tx pgx.Tx) LoginAttemptStore {
	return &LoginAttemptRepository{q: tx, policy: r.policy}
}

const loginAttemptColumns = `id, email, attempts, blocked_until, last_ip, created_at, updated_at`

func scanLoginAttempt(row pgx.Row) (*models.LoginAttempt, error) {
	var attempt models.LoginAttempt
	err := row.Scan(
		&attempt.ID, &attempt.Email, &attempt.Attempts,
		&attempt.BlockedUntil, &attempt.LastIP,
		&attempt.CreatedAt, &attempt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindByEmail returns the attempt record for an email, or nil if none exists
func (r *LoginAttemptRepository) FindByEmail(ctx context.Context, email string) (*models.LoginAttempt, error) {
	query := `SELECT ` + loginAttemptColumns + ` FROM login_attempts WHERE email = $1`

	attempt, err := scanLoginAttempt(r.q.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return attempt, nil
}

// IsBlocked reports whether the identity has an unexpired block window. An
// expired block counts as not blocked, but the attempt counter survives
// until an explicit Reset.
func (r *LoginAttemptRepository) IsBlocked(ctx context.Context, email string) (bool, error) {
	attempt, err := r.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if attempt == nil {
		return false, nil
	}
	return attempt.Blocked(time.Now()), nil
}

// RemainingBlockSeconds returns the seconds left on the block window, 0 if
// not blocked
func (r *LoginAttemptRepository) RemainingBlockSeconds(ctx context.Context, email string) (int, error) {
	attempt, err := r.FindByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if attempt == nil {
		return 0, nil
	}
	return attempt.RemainingBlock(time.Now()), nil
}

// RecordFailure creates the record on first failure or increments the
// counter, setting the block window once the threshold is crossed. The
// increment-and-evaluate is a single upsert, so concurrent failures cannot
// observe a half-updated counter.
func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, email, ip string) (*models.LoginAttempt, error) {
	query := `
		INSERT INTO login_attempts (id, email, attempts, last_ip)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (email) DO UPDATE SET
			attempts = login_attempts.attempts + 1,
			last_ip = EXCLUDED.last_ip,
			blocked_until = CASE
				WHEN login_attempts.attempts + 1 >= $4 THEN $5
				ELSE login_attempts.blocked_until
			END,
			updated_at = NOW()
		RETURNING ` + loginAttemptColumns

	blockedUntil := time.Now().Add(r.policy.BlockDuration)
	attempt, err := scanLoginAttempt(r.q.QueryRow(ctx, query,
		uuid.New().String(), email, ip, r.policy.MaxAttempts, blockedUntil))
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return attempt, nil
}

// Reset clears the counter and block window; called exactly once, on
// successful authentication. Returns false if no record existed.
func (r *LoginAttemptRepository) Reset(ctx context.Context, email string) (bool, error) {
	query := `
		UPDATE login_attempts
		SET attempts = 0, blocked_until = NULL, updated_at = NOW()
		WHERE email = $1
	`

	tag, err := r.q.Exec(ctx, query, email)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// PurgeStale deletes records not touched since the cutoff and no longer
// carrying an active block. Keeps the table from accumulating one row per
// email ever seen.
func (r *LoginAttemptRepository) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM login_attempts
		WHERE updated_at < $1
		  AND (blocked_until IS NULL OR blocked_until < NOW())
	`

	tag, err := r.q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
