package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security-relevant authentication event
type AuditEvent struct {
	EventType     string // "login", "register", "lockout"
	UserID        string
	Email         string
	IPAddress     string
	Success       bool
	FailureReason string
}

// AuditLogger emits structured security events. Fire-and-forget: it never
// shapes a response.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogAuthAttempt logs an authentication attempt outcome
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(event.Email)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogAccountLockout logs an identity crossing the lockout threshold
func (al *AuditLogger) LogAccountLockout(email, ipAddress string, attempts, retryAfterSeconds int) {
	al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit",
		slog.String("audit_type", "auth"),
		slog.String("event_type", "lockout"),
		slog.String("email", SanitizedEmail(email)),
		slog.String("ip_address", ipAddress),
		slog.Int("attempts", attempts),
		slog.Int("retry_after_seconds", retryAfterSeconds),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}
