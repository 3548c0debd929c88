package domain

import "time"

// PlanType enumerates billing plans.
type PlanType string

const (
	PlanFree    PlanType = "free"
	PlanWeekly  PlanType = "weekly"
	PlanMonthly PlanType = "monthly"
)

const (
	// StartingCredits is granted to every profile at signup.
	StartingCredits = 50
	// GenerationCost is debited per thumbnail for users without an active plan.
	GenerationCost = 10
)

// PlanDurationDays returns the subscription window granted by a paid plan.
func PlanDurationDays(plan PlanType) (int, bool) {
	switch plan {
	case PlanWeekly:
		return 7, true
	case PlanMonthly:
		return 30, true
	default:
		return 0, false
	}
}

// ParsePaidPlan validates user-supplied plan input against the paid plans.
func ParsePaidPlan(s string) (PlanType, error) {
	switch PlanType(s) {
	case PlanWeekly:
		return PlanWeekly, nil
	case PlanMonthly:
		return PlanMonthly, nil
	default:
		return "", ErrUnsupportedPlan
	}
}

// Entitlement is the per-user credit balance plus optional subscription window.
type Entitlement struct {
	UserID     string
	Credits    int
	PlanType   PlanType
	PlanExpiry *time.Time
}

// HasActivePlan reports whether the entitlement carries a non-free plan whose
// expiry lies in the future. An expired paid plan falls back to credit gating.
func (e Entitlement) HasActivePlan(now time.Time) bool {
	return e.PlanType != PlanFree && e.PlanExpiry != nil && e.PlanExpiry.After(now)
}
