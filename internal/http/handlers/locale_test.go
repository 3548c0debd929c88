package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func errorMessageFor(t *testing.T, router http.Handler, token, acceptLanguage string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/thumbnails/generate",
		strings.NewReader(`{"textInput":""}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error != "bad_request" {
		t.Fatalf("error = %q, want bad_request", body.Error)
	}
	return res.Code, body.Message
}

func TestErrorMessagesFollowAcceptLanguage(t *testing.T) {
	sql := newFakeSQL()
	userID := sql.addProfile(profileState{Credits: 50})
	_, router := newTestApp(sql, &fakeGenerator{asset: testAsset()})
	token := newToken(t, "test-secret", userID, "free")

	code, msg := errorMessageFor(t, router, token, "")
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", code, http.StatusBadRequest)
	}
	if msg != "textInput required" {
		t.Errorf("default message = %q, want English copy", msg)
	}

	_, msg = errorMessageFor(t, router, token, "hi-IN,hi;q=0.9")
	if msg != "अनुरोध समझा नहीं जा सका" {
		t.Errorf("hindi message = %q, want Hindi copy", msg)
	}

	// Unsupported languages fall back to English.
	_, msg = errorMessageFor(t, router, token, "fr-FR")
	if msg != "textInput required" {
		t.Errorf("french fallback message = %q, want English copy", msg)
	}
}
