package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Pradeep20056/thumbnail-genie/internal/billing"
	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
	"github.com/Pradeep20056/thumbnail-genie/internal/entitlement"
	"github.com/Pradeep20056/thumbnail-genie/internal/infra"
	"github.com/Pradeep20056/thumbnail-genie/internal/metrics"
	"github.com/Pradeep20056/thumbnail-genie/internal/middleware"
	"github.com/Pradeep20056/thumbnail-genie/internal/providers/image"
)

// GoogleVerifier validates a Google ID token and returns its claims.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (map[string]any, error)
}

// Enhancer runs an AI enhancement pass over a rendered thumbnail.
type Enhancer interface {
	Enhance(ctx context.Context, imageData, instruction string) (string, error)
}

// App is the dependency container shared by all HTTP handlers.
type App struct {
	Config         *infra.Config
	Logger         infra.Logger
	SQL            infra.SQLExecutor
	Generator      image.Generator
	Enhancer       Enhancer
	Orders         billing.OrderCreator
	Entitlements   *entitlement.Service
	Metrics        metrics.Recorder
	GoogleVerifier GoogleVerifier
	MetricsHTTP    http.Handler
	JWTSecret      string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, status, map[string]string{"error": code, "message": localizedMessage(locale, code, message)})
}

// domainError maps a domain sentinel onto its HTTP status and wire code so
// every handler reports the same shape for the same failure.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, r, http.StatusUnauthorized, "unauthorized", "missing user context")
	case errors.Is(err, domain.ErrInsufficientCredits):
		a.error(w, r, http.StatusPaymentRequired, "insufficient_credits", "not enough credits, upgrade or top up")
	case errors.Is(err, domain.ErrInvalidSignature):
		a.error(w, r, http.StatusBadRequest, "invalid_signature", "payment signature verification failed")
	case errors.Is(err, domain.ErrOrderProcessed):
		a.error(w, r, http.StatusConflict, "order_processed", "order not pending for this user")
	case errors.Is(err, domain.ErrPlanGrantFailed):
		a.error(w, r, http.StatusInternalServerError, "plan_grant_failed", "payment recorded but plan could not be granted, contact support")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, r, http.StatusNotFound, "not_found", "not found")
	default:
		a.error(w, r, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
