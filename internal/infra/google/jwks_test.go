package google

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAudienceMatches(t *testing.T) {
	cases := []struct {
		name string
		aud  any
		want bool
	}{
		{"string match", "client-1", true},
		{"string mismatch", "client-2", false},
		{"array match", []any{"other", "client-1"}, true},
		{"array mismatch", []any{"other"}, false},
		{"string slice match", []string{"client-1"}, true},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := audienceMatches(tc.aud, "client-1"); got != tc.want {
				t.Fatalf("audienceMatches(%v) = %v, want %v", tc.aud, got, tc.want)
			}
		})
	}
}

type testIssuer struct {
	key    *rsa.PrivateKey
	server *httptest.Server
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	iss := &testIssuer{key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"jwks_uri": iss.server.URL + "/jwks"})
	})
	mux.HandleFunc("/jwks", func(w http.ResponseWriter, r *http.Request) {
		pub := key.Public().(*rsa.PublicKey)
		json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kid": "test-key",
				"kty": "RSA",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			}},
		})
	})
	iss.server = httptest.NewServer(mux)
	t.Cleanup(iss.server.Close)
	return iss
}

func (iss *testIssuer) sign(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, _ := json.Marshal(map[string]string{"alg": "RS256", "kid": "test-key"})
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	input := base64.RawURLEncoding.EncodeToString(header) + "." + base64.RawURLEncoding.EncodeToString(payload)
	hashed := sha256.Sum256([]byte(input))
	sig, err := rsa.SignPKCS1v15(rand.Reader, iss.key, crypto.SHA256, hashed[:])
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return input + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func (iss *testIssuer) claims(aud string, exp time.Time) map[string]any {
	return map[string]any{
		"iss":   iss.server.URL,
		"aud":   aud,
		"sub":   "google-sub-1",
		"email": "user@example.com",
		"exp":   exp.Unix(),
	}
}

func TestVerifyIDToken(t *testing.T) {
	iss := newTestIssuer(t)
	v := NewVerifier(iss.server.URL, "client-1")
	ctx := context.Background()

	token := iss.sign(t, iss.claims("client-1", time.Now().Add(time.Hour)))
	claims, err := v.VerifyIDToken(ctx, token)
	if err != nil {
		t.Fatalf("VerifyIDToken: %v", err)
	}
	if claims["sub"] != "google-sub-1" {
		t.Fatalf("sub = %v", claims["sub"])
	}

	t.Run("wrong audience", func(t *testing.T) {
		token := iss.sign(t, iss.claims("someone-else", time.Now().Add(time.Hour)))
		if _, err := v.VerifyIDToken(ctx, token); err == nil {
			t.Fatal("expected audience error")
		}
	})

	t.Run("expired", func(t *testing.T) {
		token := iss.sign(t, iss.claims("client-1", time.Now().Add(-time.Hour)))
		if _, err := v.VerifyIDToken(ctx, token); err == nil {
			t.Fatal("expected expiry error")
		}
	})

	t.Run("tampered signature", func(t *testing.T) {
		token := iss.sign(t, iss.claims("client-1", time.Now().Add(time.Hour)))
		if _, err := v.VerifyIDToken(ctx, token+"x"); err == nil {
			t.Fatal("expected signature error")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := v.VerifyIDToken(ctx, "not-a-jwt"); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","kid":"test-key"}`))
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{}`))
		token := fmt.Sprintf("%s.%s.%s", header, payload, base64.RawURLEncoding.EncodeToString([]byte("sig")))
		if _, err := v.VerifyIDToken(ctx, token); err == nil {
			t.Fatal("expected algorithm error")
		}
	})
}
