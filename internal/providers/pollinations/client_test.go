package pollinations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
)

func TestGenerateImageSuccess(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})

	res, err := c.GenerateImage(context.Background(), "a red fox, cinematic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Data) != len(payload) {
		t.Fatalf("expected %d bytes, got %d", len(payload), len(res.Data))
	}
	if res.Format != "image/jpeg" {
		t.Fatalf("unexpected format %q", res.Format)
	}
	if !strings.HasPrefix(gotPath, "/prompt/") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "width=1280") || !strings.Contains(gotQuery, "height=720") || !strings.Contains(gotQuery, "nologo=true") {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestGenerateImageErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusPaymentRequired, domain.ErrQuotaExhausted},
		{http.StatusForbidden, domain.ErrQuotaExhausted},
		{http.StatusInternalServerError, domain.ErrProviderFailure},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		c := NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
		_, err := c.GenerateImage(context.Background(), "prompt")
		srv.Close()
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestGenerateImageEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := c.GenerateImage(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("empty payload should map to provider failure, got %v", err)
	}
}

func TestGenerateImageRequiresPrompt(t *testing.T) {
	c := NewClient(Options{})
	if _, err := c.GenerateImage(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank prompt")
	}
}
