package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
	"github.com/Pradeep20056/thumbnail-genie/internal/middleware"
	"github.com/Pradeep20056/thumbnail-genie/internal/prompt"
	"github.com/Pradeep20056/thumbnail-genie/internal/providers/image"
	"github.com/Pradeep20056/thumbnail-genie/internal/sqlinline"
	"github.com/Pradeep20056/thumbnail-genie/internal/thumbnail"
)

const maxTopicLength = 500

type generateRequest struct {
	TextInput    string `json:"textInput"`
	Template     string `json:"template"`
	OverlayText  string `json:"overlayText"`
	TextPosition string `json:"textPosition"`
}

type generateResponse struct {
	ID               string `json:"id"`
	ImageURL         string `json:"imageUrl"`
	Prompt           string `json:"prompt"`
	Template         string `json:"template"`
	TextInput        string `json:"textInput"`
	OverlayText      string `json:"overlayText"`
	TextPosition     string `json:"textPosition"`
	CreditsCharged   int    `json:"creditsCharged"`
	RemainingCredits int    `json:"remainingCredits"`
	HasActivePlan    bool   `json:"hasActivePlan"`
}

// ThumbnailsGenerate runs the full flow: entitlement check, background
// generation, credit charge, history insert. The charge happens only after
// the provider succeeded, and the provider is only called after the
// entitlement check passed, so a failure on either side never burns credits.
func (a *App) ThumbnailsGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, r, domain.ErrUnauthorized)
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.TextInput = strings.TrimSpace(req.TextInput)
	if req.TextInput == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "textInput required")
		return
	}
	if len(req.TextInput) > maxTopicLength {
		a.error(w, r, http.StatusBadRequest, "bad_request", "textInput too long")
		return
	}
	template := prompt.NormalizeTemplate(req.Template)
	position := domain.NormalizeTextPosition(req.TextPosition)

	started := time.Now()
	st, err := a.Entitlements.CheckEligibility(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientCredits):
			a.recordFailure("insufficient_credits")
			a.domainError(w, r, err)
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, r, http.StatusNotFound, "not_found", "profile not found")
		default:
			a.Logger.Error().Err(err).Msg("entitlement check failed")
			a.error(w, r, http.StatusInternalServerError, "internal", "failed to check entitlement")
		}
		return
	}

	composed := prompt.Compose(req.TextInput, template)
	ctx, cancel := context.WithTimeout(r.Context(), a.Config.GenerateTimeout)
	defer cancel()
	asset, err := a.Generator.Generate(ctx, image.GenerateRequest{
		Prompt:    composed,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("template", string(template)).Msg("image generation failed")
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			a.recordFailure("rate_limited")
			a.error(w, r, http.StatusTooManyRequests, "rate_limited", "image provider is rate limiting, retry shortly")
		case errors.Is(err, domain.ErrQuotaExhausted):
			a.recordFailure("quota_exhausted")
			a.error(w, r, http.StatusForbidden, "provider_quota", "image provider quota exhausted")
		default:
			a.recordFailure("provider_error")
			a.error(w, r, http.StatusInternalServerError, "provider_error", "image generation failed")
		}
		return
	}

	cost := 0
	remaining := st.Credits
	if !st.HasActivePlan {
		cost = domain.GenerationCost
		remaining, err = a.Entitlements.Charge(r.Context(), userID, cost)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientCredits) {
				// Lost the race against a concurrent generation.
				a.recordFailure("insufficient_credits")
				a.domainError(w, r, err)
				return
			}
			a.Logger.Error().Err(err).Msg("credit charge failed")
			a.error(w, r, http.StatusInternalServerError, "internal", "failed to charge credits")
			return
		}
	}

	var historyID string
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertGeneration,
		userID, req.TextInput, string(template), req.OverlayText, string(position), []byte(nil), asset.DataURI, cost)
	if err := row.Scan(&historyID); err != nil {
		// The user already paid for this image; return it even when the
		// history insert failed.
		a.Logger.Error().Err(err).Msg("history insert failed")
	}

	if a.Metrics != nil {
		a.Metrics.RecordGeneration(string(template))
		a.Metrics.RecordGenerationLatency(time.Since(started))
	}
	a.json(w, http.StatusOK, generateResponse{
		ID:               historyID,
		ImageURL:         asset.DataURI,
		Prompt:           composed,
		Template:         string(template),
		TextInput:        req.TextInput,
		OverlayText:      req.OverlayText,
		TextPosition:     string(position),
		CreditsCharged:   cost,
		RemainingCredits: remaining,
		HasActivePlan:    st.HasActivePlan,
	})
}

type composeRequest struct {
	Image    string               `json:"image"`
	Text     string               `json:"text"`
	Position string               `json:"position"`
	Style    *domain.OverlayStyle `json:"style"`
}

// ThumbnailsCompose flattens a background and optional overlay text into the
// final PNG. Pure image work on data the client already owns, so it is not
// metered.
func (a *App) ThumbnailsCompose(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, r, domain.ErrUnauthorized)
		return
	}
	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "image required")
		return
	}

	style := domain.DefaultOverlayStyle()
	if req.Style != nil {
		style = *req.Style
	}
	var overlay *thumbnail.Overlay
	if strings.TrimSpace(req.Text) != "" {
		overlay = &thumbnail.Overlay{
			Text:     req.Text,
			Position: domain.NormalizeTextPosition(req.Position),
			Style:    style,
		}
	}

	data, err := thumbnail.Render([]byte(req.Image), overlay)
	if err != nil {
		if errors.Is(err, thumbnail.ErrBadBackground) {
			a.error(w, r, http.StatusBadRequest, "bad_image", "background image could not be decoded")
			return
		}
		a.Logger.Error().Err(err).Msg("compose failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to compose thumbnail")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename=thumbnail.png`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type enhanceRequest struct {
	Image       string `json:"image"`
	Instruction string `json:"instruction"`
}

// ThumbnailsEnhance forwards the image to the AI gateway. No retry here, a
// second attempt would bill the upstream account twice.
func (a *App) ThumbnailsEnhance(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, r, domain.ErrUnauthorized)
		return
	}
	if a.Enhancer == nil {
		a.error(w, r, http.StatusServiceUnavailable, "enhance_unavailable", "enhance is not configured")
		return
	}
	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "image required")
		return
	}

	enhanced, err := a.Enhancer.Enhance(r.Context(), req.Image, req.Instruction)
	if err != nil {
		if a.Metrics != nil {
			a.Metrics.RecordEnhance(false)
		}
		a.Logger.Error().Err(err).Msg("enhance failed")
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			a.error(w, r, http.StatusTooManyRequests, "rate_limited", "enhance provider is rate limiting, retry shortly")
		case errors.Is(err, domain.ErrQuotaExhausted):
			a.error(w, r, http.StatusForbidden, "provider_quota", "enhance provider quota exhausted")
		default:
			a.error(w, r, http.StatusInternalServerError, "provider_error", "enhance failed")
		}
		return
	}
	if a.Metrics != nil {
		a.Metrics.RecordEnhance(true)
	}
	a.json(w, http.StatusOK, map[string]string{"image": enhanced})
}

func (a *App) recordFailure(reason string) {
	if a.Metrics != nil {
		a.Metrics.RecordGenerationFailure(reason)
	}
}
