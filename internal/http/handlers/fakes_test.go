package handlers_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Pradeep20056/thumbnail-genie/internal/billing"
	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
	"github.com/Pradeep20056/thumbnail-genie/internal/middleware"
	"github.com/Pradeep20056/thumbnail-genie/internal/providers/image"
	"github.com/Pradeep20056/thumbnail-genie/internal/sqlinline"
)

type profileState struct {
	ID      string
	Email   string
	Name    string
	Picture string
	Credits int
	Plan    string
	Expiry  *time.Time
}

func (p *profileState) hasActivePlan() bool {
	return p.Plan != "free" && p.Expiry != nil && p.Expiry.After(time.Now())
}

type paymentState struct {
	RowID     string
	UserID    string
	Plan      string
	OrderID   string
	PaymentID string
	Status    string
	Amount    int64
	Currency  string
}

type historyState struct {
	ID        string
	UserID    string
	Text      string
	Template  string
	Overlay   string
	Position  string
	Style     []byte
	ImageURL  string
	Cost      int
	CreatedAt time.Time
}

type fakeSQL struct {
	mu       sync.Mutex
	profiles map[string]*profileState
	payments map[string]*paymentState
	history  []*historyState
}

func newFakeSQL() *fakeSQL {
	return &fakeSQL{
		profiles: make(map[string]*profileState),
		payments: make(map[string]*paymentState),
	}
}

func (f *fakeSQL) addProfile(p profileState) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Plan == "" {
		p.Plan = "free"
	}
	f.profiles[p.ID] = &p
	return p.ID
}

func (f *fakeSQL) profile(id string) *profileState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[id]
}

func (f *fakeSQL) payment(orderID string) *paymentState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payments[orderID]
}

func (f *fakeSQL) addHistory(h historyState) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	f.history = append(f.history, &h)
	return h.ID
}

func (f *fakeSQL) historyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history)
}

type scanRow struct {
	scan func(dest ...any) error
}

func (r scanRow) Scan(dest ...any) error { return r.scan(dest...) }

func errRow(err error) pgx.Row {
	return scanRow{scan: func(...any) error { return err }}
}

func setDest(dest, v any) error {
	switch d := dest.(type) {
	case *string:
		s, _ := v.(string)
		*d = s
	case *int:
		switch vv := v.(type) {
		case int:
			*d = vv
		case int64:
			*d = int(vv)
		default:
			return fmt.Errorf("cannot scan %T into *int", v)
		}
	case *int64:
		switch vv := v.(type) {
		case int64:
			*d = vv
		case int:
			*d = int64(vv)
		default:
			return fmt.Errorf("cannot scan %T into *int64", v)
		}
	case *bool:
		b, _ := v.(bool)
		*d = b
	case *[]byte:
		b, _ := v.([]byte)
		*d = append([]byte(nil), b...)
	case *time.Time:
		t, _ := v.(time.Time)
		*d = t
	case **time.Time:
		t, _ := v.(*time.Time)
		*d = t
	case *domain.PlanType:
		s, _ := v.(string)
		*d = domain.PlanType(s)
	default:
		return fmt.Errorf("unsupported scan dest %T", dest)
	}
	return nil
}

func rowOf(values ...any) pgx.Row {
	return scanRow{scan: func(dest ...any) error {
		if len(dest) != len(values) {
			return fmt.Errorf("scan arity mismatch: %d dest, %d values", len(dest), len(values))
		}
		for i := range dest {
			if err := setDest(dest[i], values[i]); err != nil {
				return err
			}
		}
		return nil
	}}
}

func (f *fakeSQL) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec")
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch query {
	case sqlinline.QSelectUserStatus:
		userID, _ := args[0].(string)
		p, ok := f.profiles[userID]
		if !ok {
			return errRow(pgx.ErrNoRows)
		}
		return rowOf(p.Credits, p.Plan, p.Expiry, p.hasActivePlan())
	case sqlinline.QChargeCredits:
		userID, _ := args[0].(string)
		amount, _ := args[1].(int)
		p, ok := f.profiles[userID]
		if !ok || p.Credits < amount {
			return errRow(pgx.ErrNoRows)
		}
		p.Credits -= amount
		return rowOf(p.Credits)
	case sqlinline.QGrantPlan:
		userID, _ := args[0].(string)
		plan, _ := args[1].(string)
		expiry, _ := args[2].(time.Time)
		p, ok := f.profiles[userID]
		if !ok {
			return errRow(pgx.ErrNoRows)
		}
		p.Plan = plan
		p.Expiry = &expiry
		return rowOf(p.Plan, p.Expiry)
	case sqlinline.QInsertGeneration:
		userID, _ := args[0].(string)
		text, _ := args[1].(string)
		template, _ := args[2].(string)
		overlay, _ := args[3].(string)
		position, _ := args[4].(string)
		style, _ := args[5].([]byte)
		imageURL, _ := args[6].(string)
		cost, _ := args[7].(int)
		h := &historyState{
			ID: uuid.NewString(), UserID: userID, Text: text, Template: template,
			Overlay: overlay, Position: position, Style: style, ImageURL: imageURL,
			Cost: cost, CreatedAt: time.Now(),
		}
		f.history = append(f.history, h)
		return rowOf(h.ID)
	case sqlinline.QDeleteGeneration:
		id, _ := args[0].(string)
		userID, _ := args[1].(string)
		for i, h := range f.history {
			if h.ID == id && h.UserID == userID {
				f.history = append(f.history[:i], f.history[i+1:]...)
				return rowOf(id)
			}
		}
		return errRow(pgx.ErrNoRows)
	case sqlinline.QInsertPendingPayment:
		userID, _ := args[0].(string)
		amount, _ := args[1].(int64)
		currency, _ := args[2].(string)
		plan, _ := args[3].(string)
		orderID, _ := args[4].(string)
		p := &paymentState{
			RowID: uuid.NewString(), UserID: userID, Plan: plan, OrderID: orderID,
			Status: "pending", Amount: amount, Currency: currency,
		}
		f.payments[orderID] = p
		return rowOf(p.RowID)
	case sqlinline.QCompletePayment:
		orderID, _ := args[0].(string)
		userID, _ := args[1].(string)
		paymentID, _ := args[2].(string)
		p, ok := f.payments[orderID]
		if !ok || p.UserID != userID || p.Status != "pending" {
			return errRow(pgx.ErrNoRows)
		}
		p.Status = "completed"
		p.PaymentID = paymentID
		return rowOf(p.RowID, p.Plan)
	case sqlinline.QUpsertGoogleUser:
		email, _ := args[1].(string)
		name, _ := args[2].(string)
		picture, _ := args[3].(string)
		for _, p := range f.profiles {
			if p.Email == email {
				p.Name = name
				p.Picture = picture
				return rowOf(p.ID)
			}
		}
		p := &profileState{
			ID: uuid.NewString(), Email: email, Name: name, Picture: picture,
			Credits: domain.StartingCredits, Plan: "free",
		}
		f.profiles[p.ID] = p
		return rowOf(p.ID)
	case sqlinline.QSelectPaymentByOrder:
		orderID, _ := args[0].(string)
		p, ok := f.payments[orderID]
		if !ok {
			return errRow(pgx.ErrNoRows)
		}
		return rowOf(p.RowID, p.UserID, p.Amount, p.Currency, p.Plan, p.OrderID, p.PaymentID, p.Status, time.Now())
	case sqlinline.QSelectUserByID:
		userID, _ := args[0].(string)
		p, ok := f.profiles[userID]
		if !ok {
			return errRow(pgx.ErrNoRows)
		}
		return rowOf(p.ID, p.Email, p.Name, p.Picture, p.Credits, p.Plan, p.Expiry, p.hasActivePlan())
	default:
		return errRow(fmt.Errorf("unexpected query: %.60s", query))
	}
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch query {
	case sqlinline.QListGenerationHistory:
		userID, _ := args[0].(string)
		limit, _ := args[1].(int)
		var rows [][]any
		for i := len(f.history) - 1; i >= 0 && len(rows) < limit; i-- {
			h := f.history[i]
			if h.UserID != userID {
				continue
			}
			rows = append(rows, []any{
				h.ID, h.Text, h.Template, h.Overlay, h.Position,
				h.Style, h.ImageURL, h.Cost, h.CreatedAt,
			})
		}
		return &fakeRows{rows: rows}, nil
	default:
		return nil, fmt.Errorf("unexpected query: %.60s", query)
	}
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return pgx.ErrNoRows
	}
	values := r.rows[r.idx-1]
	if len(dest) != len(values) {
		return fmt.Errorf("scan arity mismatch: %d dest, %d values", len(dest), len(values))
	}
	for i := range dest {
		if err := setDest(dest[i], values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	asset *image.Asset
	err   error
}

func (g *fakeGenerator) Generate(_ context.Context, _ image.GenerateRequest) (*image.Asset, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.asset, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeOrderCreator struct {
	order *billing.Order
	err   error
}

func (f *fakeOrderCreator) CreateOrder(_ context.Context, _ string, plan domain.PlanType) (*billing.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.order != nil {
		return f.order, nil
	}
	return &billing.Order{ID: "order_test_1", Amount: domain.PlanPricePaise[plan], Currency: "INR"}, nil
}

type fakeEnhancer struct {
	result string
	err    error
}

func (f *fakeEnhancer) Enhance(context.Context, string, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

type fakeGoogleVerifier struct {
	claims map[string]any
	err    error
}

func (f *fakeGoogleVerifier) VerifyIDToken(context.Context, string) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func newToken(t *testing.T, secret, userID, plan string) string {
	t.Helper()
	token, err := middleware.SignJWT(secret, middleware.TokenClaims{
		Sub:      userID,
		Plan:     plan,
		Exp:      time.Now().Add(time.Hour).Unix(),
		Issuer:   "handler-test",
		Audience: "handler-test",
	})
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return token
}

func (f *fakeSQL) removeProfile(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, id)
}
