package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
)

// EntitlementRepositoryPG implements domain.EntitlementRepository backed by
// PostgreSQL. Request handlers use inline SQL through the shared runner; this
// adapter serves the admin CLI, which talks to profiles directly.
type EntitlementRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewEntitlementRepository creates a new EntitlementRepositoryPG.
func NewEntitlementRepository(pool *pgxpool.Pool) *EntitlementRepositoryPG {
	return &EntitlementRepositoryPG{pool: pool}
}

// GetByUserID fetches the billing profile by user UUID.
func (r *EntitlementRepositoryPG) GetByUserID(ctx context.Context, userID string) (*domain.Entitlement, error) {
	row := r.pool.QueryRow(ctx, `
SELECT user_id, credits, plan_type, plan_expiry
FROM profiles
WHERE user_id = $1;
`, userID)
	return scanEntitlement(row)
}

// GetByEmail resolves the billing profile through the account email.
func (r *EntitlementRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.Entitlement, error) {
	row := r.pool.QueryRow(ctx, `
SELECT p.user_id, p.credits, p.plan_type, p.plan_expiry
FROM profiles p
JOIN users u ON u.id = p.user_id
WHERE u.email = $1;
`, email)
	return scanEntitlement(row)
}

// GrantPlan sets the paid plan and expiry on the profile.
func (r *EntitlementRepositoryPG) GrantPlan(ctx context.Context, userID string, plan domain.PlanType, expiry time.Time) (*domain.Entitlement, error) {
	if _, ok := domain.PlanDurationDays(plan); !ok {
		return nil, domain.ErrUnsupportedPlan
	}
	row := r.pool.QueryRow(ctx, `
UPDATE profiles
SET plan_type = $2,
    plan_expiry = $3,
    updated_at = NOW()
WHERE user_id = $1
RETURNING user_id, credits, plan_type, plan_expiry;
`, userID, string(plan), expiry)
	return scanEntitlement(row)
}

// AddCredits adjusts the balance by delta. A negative delta that would push
// the balance below zero violates the table constraint and fails.
func (r *EntitlementRepositoryPG) AddCredits(ctx context.Context, userID string, delta int) (*domain.Entitlement, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE profiles
SET credits = credits + $2,
    updated_at = NOW()
WHERE user_id = $1
RETURNING user_id, credits, plan_type, plan_expiry;
`, userID, delta)
	return scanEntitlement(row)
}

func scanEntitlement(row pgx.Row) (*domain.Entitlement, error) {
	var e domain.Entitlement
	if err := row.Scan(&e.UserID, &e.Credits, &e.PlanType, &e.PlanExpiry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

var _ domain.EntitlementRepository = (*EntitlementRepositoryPG)(nil)
