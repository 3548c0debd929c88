// Package billing integrates the Razorpay payment provider: minting orders
// and verifying the client-side checkout handshake.
package billing

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
)

// Order is the provider-side record representing an intent to pay.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// OrderCreator is the narrow surface handlers depend on, so the orchestration
// logic is testable without the real provider.
type OrderCreator interface {
	CreateOrder(ctx context.Context, userID string, plan domain.PlanType) (*Order, error)
}

// Options configures the Razorpay client.
type Options struct {
	KeyID      string
	KeySecret  string
	BaseURL    string
	HTTPClient *http.Client
}

// RazorpayClient performs HTTP calls to the Razorpay orders API.
type RazorpayClient struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

type providerError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func NewRazorpayClient(opts Options) (*RazorpayClient, error) {
	if strings.TrimSpace(opts.KeyID) == "" || strings.TrimSpace(opts.KeySecret) == "" {
		return nil, errors.New("razorpay: key id and secret are required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RazorpayClient{
		keyID:     strings.TrimSpace(opts.KeyID),
		keySecret: strings.TrimSpace(opts.KeySecret),
		baseURL:   baseURL,
		client:    client,
	}, nil
}

// KeyID exposes the public key the checkout widget needs.
func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

// CreateOrder mints a provider-side order for the plan's fixed price.
func (c *RazorpayClient) CreateOrder(ctx context.Context, userID string, plan domain.PlanType) (*Order, error) {
	amount, ok := domain.PlanPricePaise[plan]
	if !ok {
		return nil, domain.ErrUnsupportedPlan
	}

	payload := orderRequest{
		Amount:   amount,
		Currency: "INR",
		Receipt:  fmt.Sprintf("order_%s_%d", userID, time.Now().UnixMilli()),
		Notes:    map[string]string{"user_id": userID, "plan_type": string(plan)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("razorpay: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("razorpay: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	credentials := base64.StdEncoding.EncodeToString([]byte(c.keyID + ":" + c.keySecret))
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("razorpay: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail providerError
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Description != "" {
			return nil, fmt.Errorf("razorpay: %s (%s)", detail.Error.Description, detail.Error.Code)
		}
		return nil, fmt.Errorf("razorpay: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("razorpay: decode response: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("razorpay: order id missing in response")
	}
	return &order, nil
}

var _ OrderCreator = (*RazorpayClient)(nil)
