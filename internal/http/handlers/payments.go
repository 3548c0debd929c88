package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/Pradeep20056/thumbnail-genie/internal/billing"
	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
	"github.com/Pradeep20056/thumbnail-genie/internal/sqlinline"
)

type createOrderRequest struct {
	PlanType string `json:"plan_type"`
}

type createOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// PaymentsCreateOrder mints a provider order for the requested plan and
// records it locally as pending. The local row is written only after the
// provider call succeeded, so a provider failure leaves nothing behind.
func (a *App) PaymentsCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, r, domain.ErrUnauthorized)
		return
	}
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	plan, err := domain.ParsePaidPlan(strings.TrimSpace(req.PlanType))
	if err != nil {
		a.error(w, r, http.StatusBadRequest, "unsupported_plan", "plan_type must be weekly or monthly")
		return
	}

	order, err := a.Orders.CreateOrder(r.Context(), userID, plan)
	if err != nil {
		a.Logger.Error().Err(err).Str("plan", string(plan)).Msg("order creation failed")
		a.error(w, r, http.StatusBadGateway, "payment_provider_error", "failed to create payment order")
		return
	}

	var paymentID string
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertPendingPayment,
		userID, order.Amount, order.Currency, string(plan), order.ID)
	if err := row.Scan(&paymentID); err != nil {
		a.Logger.Error().Err(err).Str("order_id", order.ID).Msg("pending payment insert failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to record payment")
		return
	}

	a.json(w, http.StatusCreated, createOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    a.Config.RazorpayKeyID,
	})
}

type paymentStatusResponse struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Plan      string    `json:"plan"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentsStatus reports the state of an order so the checkout page can poll
// after a redirect. Orders belonging to other users answer 404.
func (a *App) PaymentsStatus(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, r, domain.ErrUnauthorized)
		return
	}
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "order id required")
		return
	}

	var (
		rowID, owner, currency string
		plan, status           string
		paymentRef             string
		amount                 int64
		createdAt              time.Time
	)
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectPaymentByOrder, orderID)
	if err := row.Scan(&rowID, &owner, &amount, &currency, &plan, &orderID, &paymentRef, &status, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, r, http.StatusNotFound, "not_found", "order not found")
			return
		}
		a.Logger.Error().Err(err).Str("order_id", orderID).Msg("payment lookup failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to load payment")
		return
	}
	if owner != userID {
		a.error(w, r, http.StatusNotFound, "not_found", "order not found")
		return
	}

	a.json(w, http.StatusOK, paymentStatusResponse{
		OrderID:   orderID,
		Status:    status,
		Plan:      plan,
		Amount:    amount,
		Currency:  currency,
		CreatedAt: createdAt,
	})
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	// PlanType is echoed by the checkout page. The stored pending order is
	// authoritative, so it is accepted but never trusted.
	PlanType string `json:"plan_type"`
}

type verifyPaymentResponse struct {
	Success    bool      `json:"success"`
	PlanType   string    `json:"plan_type"`
	PlanExpiry time.Time `json:"plan_expiry"`
}

// PaymentsVerify checks the provider signature, completes the pending order
// and grants the plan. The completion UPDATE only matches a pending row, so a
// replayed verification cannot grant the plan twice. A grant failure after a
// completed payment is answered loudly with plan_grant_failed; the grantplan
// tool reconciles such orders.
func (a *App) PaymentsVerify(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, r, domain.ErrUnauthorized)
		return
	}
	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "razorpay_order_id, razorpay_payment_id and razorpay_signature required")
		return
	}

	if !billing.VerifySignature(req.OrderID, req.PaymentID, req.Signature, a.Config.RazorpayKeySecret) {
		a.Logger.Warn().Str("order_id", req.OrderID).Msg("payment signature mismatch")
		if a.Metrics != nil {
			a.Metrics.RecordPayment("unknown", "invalid_signature")
		}
		a.domainError(w, r, domain.ErrInvalidSignature)
		return
	}

	var rowID, planStr string
	row := a.SQL.QueryRow(r.Context(), sqlinline.QCompletePayment, req.OrderID, userID, req.PaymentID)
	if err := row.Scan(&rowID, &planStr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.domainError(w, r, domain.ErrOrderProcessed)
			return
		}
		a.Logger.Error().Err(err).Str("order_id", req.OrderID).Msg("payment completion failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to complete payment")
		return
	}

	plan := domain.PlanType(planStr)
	days, ok := domain.PlanDurationDays(plan)
	if !ok {
		a.Logger.Error().Str("order_id", req.OrderID).Str("plan", planStr).Msg("completed payment carries unknown plan")
		a.domainError(w, r, domain.ErrPlanGrantFailed)
		return
	}
	expiry := time.Now().UTC().AddDate(0, 0, days)

	if err := a.Entitlements.GrantPlan(r.Context(), userID, plan, expiry); err != nil {
		a.Logger.Error().Err(err).
			Str("order_id", req.OrderID).
			Str("payment_id", req.PaymentID).
			Str("plan", planStr).
			Msg("plan grant failed after completed payment")
		if a.Metrics != nil {
			a.Metrics.RecordPayment(planStr, "grant_failed")
		}
		a.domainError(w, r, domain.ErrPlanGrantFailed)
		return
	}

	if a.Metrics != nil {
		a.Metrics.RecordPayment(planStr, "completed")
	}
	a.json(w, http.StatusOK, verifyPaymentResponse{
		Success:    true,
		PlanType:   planStr,
		PlanExpiry: expiry,
	})
}
