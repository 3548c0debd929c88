// Package entitlement gates thumbnail generation on the per-user credit
// balance and subscription window.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
	"github.com/Pradeep20056/thumbnail-genie/internal/infra"
	"github.com/Pradeep20056/thumbnail-genie/internal/sqlinline"
)

// Status is the entitlement snapshot returned to callers and the API.
type Status struct {
	Credits       int             `json:"credits"`
	PlanType      domain.PlanType `json:"plan_type"`
	PlanExpiry    *time.Time      `json:"plan_expiry"`
	HasActivePlan bool            `json:"has_active_plan"`
}

// Service operates on profile rows through the shared SQL executor. It holds
// no per-request state; the user is always an explicit parameter.
type Service struct {
	SQL infra.SQLExecutor
}

func NewService(sql infra.SQLExecutor) *Service {
	return &Service{SQL: sql}
}

// Status loads the caller's entitlement. has_active_plan is computed by the
// database so every decision shares one clock.
func (s *Service) Status(ctx context.Context, userID string) (*Status, error) {
	row := s.SQL.QueryRow(ctx, sqlinline.QSelectUserStatus, userID)
	var st Status
	if err := row.Scan(&st.Credits, &st.PlanType, &st.PlanExpiry, &st.HasActivePlan); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load entitlement: %w", err)
	}
	return &st, nil
}

// CheckEligibility authorizes a generation before any provider call is made:
// unconditional with an active plan, otherwise the balance must cover the
// cost. Returns domain.ErrInsufficientCredits on denial.
func (s *Service) CheckEligibility(ctx context.Context, userID string) (*Status, error) {
	st, err := s.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st.HasActivePlan {
		return st, nil
	}
	if st.Credits < domain.GenerationCost {
		return st, domain.ErrInsufficientCredits
	}
	return st, nil
}

// Charge debits the balance with a single conditional UPDATE. The statement
// re-checks the balance, so check-and-subtract is one atomic unit and two
// concurrent charges can never both drain the same credits. Returns the
// remaining balance, or domain.ErrInsufficientCredits when the row did not
// match.
func (s *Service) Charge(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("charge amount must be positive, got %d", amount)
	}
	row := s.SQL.QueryRow(ctx, sqlinline.QChargeCredits, userID, amount)
	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrInsufficientCredits
		}
		return 0, fmt.Errorf("charge credits: %w", err)
	}
	return remaining, nil
}

// GrantPlan upgrades the profile to a paid plan expiring at the given time.
// Idempotency against order replays is enforced one level up, where the
// payment row transitions out of pending exactly once.
func (s *Service) GrantPlan(ctx context.Context, userID string, plan domain.PlanType, expiry time.Time) error {
	if _, ok := domain.PlanDurationDays(plan); !ok {
		return domain.ErrUnsupportedPlan
	}
	row := s.SQL.QueryRow(ctx, sqlinline.QGrantPlan, userID, string(plan), expiry)
	var gotPlan string
	var gotExpiry *time.Time
	if err := row.Scan(&gotPlan, &gotExpiry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("grant plan: %w", err)
	}
	return nil
}
