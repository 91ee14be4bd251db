package cache

import (
	"context"
	"time"

	"github.com/testaro/testaro_backend/internal/core/ports"
)

// NoopSignupGuard is used when redis is not configured. Registration then
// relies solely on the store lookup and its unique index.
type NoopSignupGuard struct{}

func NewNoopSignupGuard() *NoopSignupGuard {
	return &NoopSignupGuard{}
}

var _ ports.SignupGuardCache = (*NoopSignupGuard)(nil)

func (NoopSignupGuard) Seen(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (NoopSignupGuard) Remember(ctx context.Context, email string, ttl time.Duration) error {
	return nil
}
