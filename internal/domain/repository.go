package domain

import (
	"context"
	"time"
)

// EntitlementRepository defines access to profile billing state. Used by the
// admin tooling; request handlers go through inline SQL instead.
type EntitlementRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Entitlement, error)
	GetByEmail(ctx context.Context, email string) (*Entitlement, error)
	GrantPlan(ctx context.Context, userID string, plan PlanType, expiry time.Time) (*Entitlement, error)
	AddCredits(ctx context.Context, userID string, delta int) (*Entitlement, error)
}
