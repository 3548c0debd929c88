package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUnsupportedPlan     = errors.New("unsupported plan")
	ErrRateLimited         = errors.New("provider rate limited")
	ErrQuotaExhausted      = errors.New("provider quota exhausted")
	ErrProviderFailure     = errors.New("provider failure")
	ErrInvalidSignature    = errors.New("invalid payment signature")
	ErrOrderProcessed      = errors.New("order already processed")
	ErrPlanGrantFailed     = errors.New("plan grant failed")
)
