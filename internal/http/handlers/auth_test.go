package handlers_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
)

func TestAuthGoogleVerify_ProvisionsProfile(t *testing.T) {
	sql := newFakeSQL()
	app, router := newTestApp(sql, &fakeGenerator{})
	app.GoogleVerifier = &fakeGoogleVerifier{claims: map[string]any{
		"sub":     "google-sub-1",
		"email":   "creator@example.com",
		"name":    "Creator",
		"picture": "https://example.com/avatar.png",
	}}

	res := doJSON(t, router, http.MethodPost, "/v1/auth/google", "",
		map[string]string{"id_token": "stub-token"})

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", res.Code, res.Body.String())
	}
	var body struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Email    string `json:"email"`
			Credits  int    `json:"credits"`
			PlanType string `json:"plan_type"`
		} `json:"user"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Token == "" {
		t.Error("token must be set")
	}
	if body.User.Credits != domain.StartingCredits {
		t.Errorf("credits = %d, want %d", body.User.Credits, domain.StartingCredits)
	}
	if body.User.PlanType != "free" {
		t.Errorf("plan_type = %q, want free", body.User.PlanType)
	}

	// The issued token must authenticate follow-up requests.
	meRes := doJSON(t, router, http.MethodGet, "/v1/me", body.Token, nil)
	if meRes.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", meRes.Code, meRes.Body.String())
	}
}

func TestAuthGoogleVerify_InvalidToken(t *testing.T) {
	sql := newFakeSQL()
	app, router := newTestApp(sql, &fakeGenerator{})
	app.GoogleVerifier = &fakeGoogleVerifier{err: fmt.Errorf("signature mismatch")}

	res := doJSON(t, router, http.MethodPost, "/v1/auth/google", "",
		map[string]string{"id_token": "bad-token"})

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.Code, http.StatusUnauthorized)
	}
}

func TestMe(t *testing.T) {
	sql := newFakeSQL()
	expiry := time.Now().Add(72 * time.Hour)
	userID := sql.addProfile(profileState{
		Email: "creator@example.com", Name: "Creator",
		Credits: 30, Plan: "monthly", Expiry: &expiry,
	})
	_, router := newTestApp(sql, &fakeGenerator{})

	res := doJSON(t, router, http.MethodGet, "/v1/me",
		newToken(t, "test-secret", userID, "monthly"), nil)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", res.Code, res.Body.String())
	}
	var body struct {
		Email         string `json:"email"`
		Credits       int    `json:"credits"`
		PlanType      string `json:"plan_type"`
		HasActivePlan bool   `json:"has_active_plan"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Email != "creator@example.com" || body.Credits != 30 || !body.HasActivePlan {
		t.Errorf("body = %+v", body)
	}
}

func TestHistoryListAndDelete(t *testing.T) {
	sql := newFakeSQL()
	userID := sql.addProfile(profileState{Credits: 40})
	otherID := sql.addProfile(profileState{Credits: 40})
	first := sql.addHistory(historyState{UserID: userID, Text: "older", Template: "minimal", ImageURL: "data:image/png;base64,eA==", Cost: 10, CreatedAt: time.Now().Add(-time.Hour)})
	second := sql.addHistory(historyState{UserID: userID, Text: "newer", Template: "gaming", ImageURL: "data:image/png;base64,eQ==", Cost: 10})
	foreign := sql.addHistory(historyState{UserID: otherID, Text: "theirs", Template: "tech", ImageURL: "data:image/png;base64,eg==", Cost: 10})

	_, router := newTestApp(sql, &fakeGenerator{})
	token := newToken(t, "test-secret", userID, "free")

	listRes := doJSON(t, router, http.MethodGet, "/v1/history", token, nil)
	if listRes.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", listRes.Code, listRes.Body.String())
	}
	var listBody struct {
		Items []struct {
			ID        string `json:"id"`
			TextInput string `json:"text_input"`
		} `json:"items"`
	}
	if err := json.Unmarshal(listRes.Body.Bytes(), &listBody); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listBody.Items) != 2 {
		t.Fatalf("items = %d, want 2 (own rows only)", len(listBody.Items))
	}
	if listBody.Items[0].ID != second || listBody.Items[1].ID != first {
		t.Errorf("order wrong: got %s then %s, want newest first", listBody.Items[0].ID, listBody.Items[1].ID)
	}

	// Deleting another user's record answers not found and removes nothing.
	delForeign := doJSON(t, router, http.MethodDelete, "/v1/history/"+foreign, token, nil)
	if delForeign.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d, want %d", delForeign.Code, http.StatusNotFound)
	}
	if sql.historyCount() != 3 {
		t.Fatalf("history rows = %d, want 3", sql.historyCount())
	}

	delOwn := doJSON(t, router, http.MethodDelete, "/v1/history/"+first, token, nil)
	if delOwn.Code != http.StatusNoContent {
		t.Fatalf("own delete status = %d, want %d", delOwn.Code, http.StatusNoContent)
	}
	if sql.historyCount() != 2 {
		t.Fatalf("history rows = %d, want 2", sql.historyCount())
	}
}

func TestHistoryExport_BuildsZip(t *testing.T) {
	sql := newFakeSQL()
	userID := sql.addProfile(profileState{Credits: 40})
	sql.addHistory(historyState{UserID: userID, Text: "a", Template: "minimal", ImageURL: "data:image/png;base64,aW1hZ2Ux", Cost: 10})
	sql.addHistory(historyState{UserID: userID, Text: "b", Template: "gaming", ImageURL: "data:image/jpeg;base64,aW1hZ2Uy", Cost: 10})

	_, router := newTestApp(sql, &fakeGenerator{})
	res := doJSON(t, router, http.MethodPost, "/v1/history/export",
		newToken(t, "test-secret", userID, "free"), nil)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", res.Code, res.Body.String())
	}
	if ct := res.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %q, want application/zip", ct)
	}
	zr, err := zip.NewReader(bytes.NewReader(res.Body.Bytes()), int64(res.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("zip entries = %d, want 2", len(zr.File))
	}
}

func TestHistoryExport_EmptyAnswersNotFound(t *testing.T) {
	sql := newFakeSQL()
	userID := sql.addProfile(profileState{Credits: 40})
	_, router := newTestApp(sql, &fakeGenerator{})

	res := doJSON(t, router, http.MethodPost, "/v1/history/export",
		newToken(t, "test-secret", userID, "free"), nil)

	if res.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.Code, http.StatusNotFound)
	}
}
