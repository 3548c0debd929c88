package domain

import "time"

// PaymentStatus tracks the order state machine: pending -> completed|failed.
// Terminal states are never mutated again.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentOrder mirrors one provider-side order, keyed by the provider order id.
type PaymentOrder struct {
	ID        string
	UserID    string
	Amount    int64
	Currency  string
	PlanType  PlanType
	OrderID   string
	PaymentID string
	Status    PaymentStatus
	CreatedAt time.Time
}

// PlanPricePaise is the fixed INR price table, in paise.
var PlanPricePaise = map[PlanType]int64{
	PlanWeekly:  3000,
	PlanMonthly: 10000,
}
