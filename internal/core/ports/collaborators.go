package ports

import (
	"context"
	"time"
)

// SignupGuardCache is the short-lived external cache consulted during signup
// to short-circuit duplicate inserts before hitting the store. It is a
// best-effort latency optimization only; the store's unique index remains the
// authoritative guard against duplicates, so callers must treat cache errors
// as a miss.
type SignupGuardCache interface {
	// Seen reports whether the email was recently registered.
	Seen(ctx context.Context, email string) (bool, error)

	// Remember records the email for the given TTL.
	Remember(ctx context.Context, email string, ttl time.Duration) error
}

// NotificationKind selects the email template to dispatch.
type NotificationKind string

const (
	NotificationWelcome           NotificationKind = "welcome"
	NotificationPasswordReset     NotificationKind = "password_reset"
	NotificationPasswordResetDone NotificationKind = "password_reset_done"
)

// Notifier dispatches transactional emails. Failures from Send are logged by
// callers and must never surface as caller-visible operation failures.
type Notifier interface {
	Send(ctx context.Context, address string, kind NotificationKind, data map[string]string) error
}
