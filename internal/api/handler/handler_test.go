package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xela07ax/rustchain-node-api/internal/audit"
	"github.com/xela07ax/rustchain-node-api/internal/domain"
	"github.com/xela07ax/rustchain-node-api/internal/engine"
	"github.com/xela07ax/rustchain-node-api/internal/policy"
	"go.uber.org/zap"
)

const adminKey = "s3cret"

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.AccessEvent
}

func (a *recordingAuditor) Log(e audit.AccessEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func newDeps() (Deps, *recordingAuditor) {
	j := &recordingAuditor{}
	return Deps{
		Classifier: policy.NewClassifier(adminKey),
		Metrics:    engine.NewMetrics(nil),
		Journal:    j,
		Logger:     zap.NewNop(),
	}, j
}

func get(h http.HandlerFunc, target, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if key != "" {
		req.Header.Set(policy.HeaderAPIKey, key)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

type fakeMiners struct{ err error }

func (f fakeMiners) List(_ context.Context, level policy.AccessLevel) (any, error) {
	if f.err != nil {
		return nil, f.err
	}
	info := domain.MinerInfo{Miner: "g4", LastAttest: 100, HardwareType: "PowerPC G4 (Vintage)", AntiquityMultiplier: 2.5}
	if level.IsAdmin() {
		first := int64(50)
		return []domain.MinerDetails{{MinerInfo: info, FirstAttest: &first, EntropyScore: 0.5}}, nil
	}
	return []domain.MinerInfo{info}, nil
}

func TestMinersHandler(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		wantFirst  bool
		wantEvents int
	}{
		{name: "anonymous", key: "", wantFirst: false, wantEvents: 0},
		{name: "wrong key", key: "nope", wantFirst: false, wantEvents: 0},
		{name: "admin", key: adminKey, wantFirst: true, wantEvents: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, j := newDeps()
			h := NewMinersHandler(fakeMiners{}, d)

			rec := get(h.List, "/api/miners", tt.key)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type = %q", ct)
			}

			var body []map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			_, hasFirst := body[0]["first_attest"]
			_, hasEntropy := body[0]["entropy_score"]
			if hasFirst != tt.wantFirst || hasEntropy != tt.wantFirst {
				t.Errorf("restricted fields present = %v/%v, want %v", hasFirst, hasEntropy, tt.wantFirst)
			}
			if len(j.events) != tt.wantEvents {
				t.Errorf("journal events = %d, want %d", len(j.events), tt.wantEvents)
			}
		})
	}
}

func TestMinersHandler_StoreError(t *testing.T) {
	d, _ := newDeps()
	h := NewMinersHandler(fakeMiners{err: errors.New("db down")}, d)

	rec := get(h.List, "/api/miners", "")
	if rec.Code != http.StatusInternalServerError || rec.Body.String() != `{"ok":false,"error":"internal_error"}` {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

type fakeWallet struct {
	calls int
}

func (f *fakeWallet) Balance(ctx context.Context, level policy.AccessLevel, minerID string) (*domain.Balance, error) {
	// Повторяет порядок проверок WalletService
	if err := policy.Require(level); err != nil {
		return nil, err
	}
	if minerID == "" {
		return nil, engine.ErrMinerIDRequired
	}
	f.calls++
	if minerID == "broken" {
		return nil, errors.New("db down")
	}
	return &domain.Balance{MinerID: minerID, AmountI64: 2_500_000, AmountRTC: 2.5}, nil
}

func TestWalletHandler(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		key        string
		wantStatus int
		wantBody   string
		wantCalls  int
	}{
		{
			name:       "no key",
			target:     "/wallet/balance?miner_id=g4",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"ok":false,"reason":"authentication_required","message":"Provide X-API-Key header with valid admin key"}`,
		},
		{
			name:       "wrong key",
			target:     "/wallet/balance?miner_id=g4",
			key:        "s3cre",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"ok":false,"reason":"authentication_required","message":"Provide X-API-Key header with valid admin key"}`,
		},
		{
			name:       "missing miner id",
			target:     "/wallet/balance",
			key:        adminKey,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"ok":false,"error":"miner_id required"}`,
		},
		{
			name:       "ok",
			target:     "/wallet/balance?miner_id=g4",
			key:        adminKey,
			wantStatus: http.StatusOK,
			wantBody:   `{"miner_id":"g4","amount_i64":2500000,"amount_rtc":2.5}`,
			wantCalls:  1,
		},
		{
			name:       "store failure",
			target:     "/wallet/balance?miner_id=broken",
			key:        adminKey,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"ok":false,"error":"internal_error"}`,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newDeps()
			svc := &fakeWallet{}
			h := NewWalletHandler(svc, d)

			rec := get(h.Balance, tt.target, tt.key)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
			if svc.calls != tt.wantCalls {
				t.Errorf("store calls = %d, want %d", svc.calls, tt.wantCalls)
			}
		})
	}
}

func TestWalletHandler_RecordsRejections(t *testing.T) {
	d, j := newDeps()
	h := NewWalletHandler(&fakeWallet{}, d)

	req := httptest.NewRequest(http.MethodGet, "/wallet/balance?miner_id=g4", nil)
	req.RemoteAddr = "203.0.113.7:4100"
	h.Balance(httptest.NewRecorder(), req)

	if got := testutil.ToFloat64(d.Metrics.AuthFailures.WithLabelValues(policy.WalletBalanceFields.Endpoint)); got != 1 {
		t.Errorf("auth failures = %v, want 1", got)
	}
	if len(j.events) != 1 {
		t.Fatalf("journal events = %d, want 1", len(j.events))
	}
	e := j.events[0]
	if e.Status != http.StatusUnauthorized || e.AccessLevel != "anonymous" || e.Endpoint != policy.WalletBalanceFields.Endpoint {
		t.Errorf("event = %+v", e)
	}
	if e.RemoteAddr != "203.0.113.7:4100" || e.ID == "" || e.Timestamp.IsZero() {
		t.Errorf("event = %+v", e)
	}
	if len(e.Disclosed) != 0 {
		t.Errorf("rejected request disclosed %v", e.Disclosed)
	}
}

func TestMinersHandler_RecordsDisclosedFields(t *testing.T) {
	d, j := newDeps()
	h := NewMinersHandler(fakeMiners{}, d)

	get(h.List, "/api/miners", adminKey)

	if len(j.events) != 1 {
		t.Fatalf("journal events = %d, want 1", len(j.events))
	}
	got := j.events[0].Disclosed
	if len(got) != 2 || got[0] != "first_attest" || got[1] != "entropy_score" {
		t.Errorf("disclosed = %v", got)
	}
}

func TestWalletHandler_BadRequestDisclosesNothing(t *testing.T) {
	d, j := newDeps()
	h := NewWalletHandler(&fakeWallet{}, d)

	get(h.Balance, "/wallet/balance", adminKey)

	if len(j.events) != 1 || j.events[0].Status != http.StatusBadRequest || j.events[0].Disclosed != nil {
		t.Errorf("events = %+v", j.events)
	}
}

type fakeEpoch struct{}

func (fakeEpoch) Info(_ context.Context, level policy.AccessLevel) (any, error) {
	info := domain.EpochInfo{Epoch: 3, Slot: 500, BlocksPerEpoch: 144}
	if level.IsAdmin() {
		return domain.EpochDetails{EpochInfo: info, EpochPot: 1.5, EnrolledMiners: 4}, nil
	}
	return info, nil
}

func TestEpochHandler(t *testing.T) {
	d, _ := newDeps()
	h := NewEpochHandler(fakeEpoch{}, d)

	anon := get(h.Get, "/epoch", "")
	if anon.Body.String() != `{"epoch":3,"slot":500,"blocks_per_epoch":144}` {
		t.Errorf("anonymous body = %s", anon.Body.String())
	}

	admin := get(h.Get, "/epoch", adminKey)
	if admin.Body.String() != `{"epoch":3,"slot":500,"blocks_per_epoch":144,"epoch_pot":1.5,"enrolled_miners":4}` {
		t.Errorf("admin body = %s", admin.Body.String())
	}

	if got := testutil.ToFloat64(d.Metrics.Requests.WithLabelValues(policy.EpochFields.Endpoint, "admin")); got != 1 {
		t.Errorf("admin requests = %v", got)
	}
	if got := testutil.ToFloat64(d.Metrics.Requests.WithLabelValues(policy.EpochFields.Endpoint, "anonymous")); got != 1 {
		t.Errorf("anonymous requests = %v", got)
	}
}

func TestNewBase_Defaults(t *testing.T) {
	h := NewEpochHandler(fakeEpoch{}, Deps{})
	rec := get(h.Get, "/epoch", "anything")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"epoch":3,"slot":500,"blocks_per_epoch":144}` {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}
