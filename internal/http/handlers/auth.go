package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
	"github.com/Pradeep20056/thumbnail-genie/internal/middleware"
	"github.com/Pradeep20056/thumbnail-genie/internal/sqlinline"
)

const (
	tokenIssuer   = "thumbnail-genie"
	tokenAudience = "thumbnail-genie-web"
	tokenTTL      = 24 * time.Hour
)

type googleVerifyRequest struct {
	IDToken string `json:"id_token"`
}

type googleVerifyResponse struct {
	Token string         `json:"token"`
	User  userProfileDTO `json:"user"`
}

type userProfileDTO struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Picture       string     `json:"picture"`
	Credits       int        `json:"credits"`
	PlanType      string     `json:"plan_type"`
	PlanExpiry    *time.Time `json:"plan_expiry"`
	HasActivePlan bool       `json:"has_active_plan"`
}

// AuthGoogleVerify exchanges a Google ID token for a session JWT. First login
// provisions the profile with the starting credit balance.
func (a *App) AuthGoogleVerify(w http.ResponseWriter, r *http.Request) {
	var req googleVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.IDToken == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "id_token required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	claims, err := a.GoogleVerifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		a.Logger.Error().Err(err).Msg("google verify failed")
		a.error(w, r, http.StatusUnauthorized, "unauthorized", "invalid google token")
		return
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	if sub == "" || email == "" {
		a.error(w, r, http.StatusUnauthorized, "unauthorized", "token missing identity claims")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpsertGoogleUser, sub, email, name, picture)
	var userID string
	if err := row.Scan(&userID); err != nil {
		a.Logger.Error().Err(err).Msg("upsert user failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to persist user")
		return
	}

	st, err := a.Entitlements.Status(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("load entitlement failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to load profile")
		return
	}

	token, err := middleware.SignJWT(a.JWTSecret, middleware.TokenClaims{
		Sub:      userID,
		Plan:     string(st.PlanType),
		Exp:      time.Now().Add(tokenTTL).Unix(),
		Issuer:   tokenIssuer,
		Audience: tokenAudience,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	a.json(w, http.StatusOK, googleVerifyResponse{
		Token: token,
		User: userProfileDTO{
			ID:            userID,
			Email:         email,
			Name:          name,
			Picture:       picture,
			Credits:       st.Credits,
			PlanType:      string(st.PlanType),
			PlanExpiry:    st.PlanExpiry,
			HasActivePlan: st.HasActivePlan,
		},
	})
}

// Me returns the caller's account and entitlement snapshot.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.domainError(w, r, domain.ErrUnauthorized)
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserByID, userID)
	var dto userProfileDTO
	if err := row.Scan(&dto.ID, &dto.Email, &dto.Name, &dto.Picture,
		&dto.Credits, &dto.PlanType, &dto.PlanExpiry, &dto.HasActivePlan); err != nil {
		a.error(w, r, http.StatusNotFound, "not_found", "user not found")
		return
	}
	a.json(w, http.StatusOK, dto)
}
