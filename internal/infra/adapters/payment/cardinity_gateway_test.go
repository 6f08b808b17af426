//go:build !integration

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cardinity-gateway/internal/domain"
	"cardinity-gateway/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

// countingSigner returns a distinct header per call.
type countingSigner struct {
	n    atomic.Int64
	fail error
}

func (s *countingSigner) Sign(method, rawURL string, body []byte) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	return fmt.Sprintf(`OAuth oauth_nonce="n%d"`, s.n.Add(1)), nil
}

// sleepRecorder replaces the backoff sleep and keeps the requested delays.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

type reply struct {
	status int
	body   string
}

// fakeCardinity serves scripted replies in order; the last one repeats.
type fakeCardinity struct {
	mu      sync.Mutex
	replies []reply
	calls   int
	auths   []string
	bodies  []string
	headers http.Header
}

func (f *fakeCardinity) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	idx := f.calls
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	f.calls++
	f.auths = append(f.auths, r.Header.Get("Authorization"))
	b, _ := io.ReadAll(r.Body)
	f.bodies = append(f.bodies, string(b))
	f.headers = r.Header.Clone()
	rep := f.replies[idx]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = w.Write([]byte(rep.body))
}

func (f *fakeCardinity) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newFakeServer(t *testing.T, replies ...reply) (*fakeCardinity, *httptest.Server) {
	t.Helper()
	fake := &fakeCardinity{replies: replies}
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Get("/*", fake.handle)
		r.Post("/*", fake.handle)
		r.Patch("/*", fake.handle)
		r.Delete("/*", fake.handle)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return fake, srv
}

func newTestGateway(t *testing.T, srv *httptest.Server, opts ...Option) (*CardinityGateway, *countingSigner, *sleepRecorder) {
	t.Helper()
	signer := &countingSigner{}
	rec := &sleepRecorder{}
	base := []Option{
		WithBaseURL(srv.URL + "/v1"),
		WithHTTPClient(srv.Client()),
		WithSleep(rec.sleep),
		WithLogger(newTestLogger()),
	}
	gw, err := NewCardinityGateway(signer, append(base, opts...)...)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	t.Cleanup(func() { _ = gw.Close() })
	return gw, signer, rec
}

func testPayment(t *testing.T) *model.CreatePayment {
	t.Helper()
	desc := "order 42"
	p, err := model.NewCreatePayment(model.CreatePaymentParams{
		Amount:      "10.50",
		Currency:    "EUR",
		Country:     "LT",
		Description: &desc,
		PaymentInstrument: &model.Card{
			PAN:      "4111111111111111",
			ExpMonth: 12,
			ExpYear:  2030,
			CVC:      "123",
			Holder:   "John Doe",
		},
	})
	if err != nil {
		t.Fatalf("build payment: %v", err)
	}
	return p
}

func testGet(t *testing.T, id string) *model.GetPayment {
	t.Helper()
	g, err := model.NewGetPayment(id)
	if err != nil {
		t.Fatalf("build get payment: %v", err)
	}
	return g
}

func TestBuildURL(t *testing.T) {
	cases := []struct {
		base, endpoint, want string
	}{
		{"https://api.cardinity.com/v1", "/payments", "https://api.cardinity.com/v1/payments"},
		{"https://api.cardinity.com/v1/", "/payments", "https://api.cardinity.com/v1/payments"},
		{"https://api.cardinity.com/v1//", "payments", "https://api.cardinity.com/v1/payments"},
		{"https://api.cardinity.com/v1", "/payments?limit=5", "https://api.cardinity.com/v1/payments?limit=5"},
		{"https://api.cardinity.com/v1", "/payments/p1/refunds/", "https://api.cardinity.com/v1/payments/p1/refunds/"},
	}
	for _, tc := range cases {
		if got := BuildURL(tc.base, tc.endpoint); got != tc.want {
			t.Errorf("BuildURL(%q, %q) = %q, want %q", tc.base, tc.endpoint, got, tc.want)
		}
	}
}

func TestNewCardinityGateway(t *testing.T) {
	t.Run("requires a signer", func(t *testing.T) {
		if _, err := NewCardinityGateway(nil); err == nil {
			t.Fatal("expected error for nil signer")
		}
	})

	t.Run("rejects negative retries", func(t *testing.T) {
		if _, err := NewCardinityGateway(&countingSigner{}, WithMaxRetries(-1)); err == nil {
			t.Fatal("expected error for negative retries")
		}
	})

	t.Run("rejects non-positive timeout", func(t *testing.T) {
		if _, err := NewCardinityGateway(&countingSigner{}, WithTimeout(0)); err == nil {
			t.Fatal("expected error for zero timeout")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		gw, err := NewCardinityGateway(&countingSigner{})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		defer gw.Close()
		if gw.baseURL != DefaultBaseURL || gw.maxRetries != 3 || gw.timeout != 30*time.Second || gw.retryDelay != time.Second {
			t.Fatalf("unexpected defaults: %+v", gw)
		}
		if gw.Name() != "cardinity" {
			t.Fatalf("unexpected name %q", gw.Name())
		}
	})
}

func TestExecute_Success(t *testing.T) {
	t.Run("should post the payment body with signed headers", func(t *testing.T) {
		fake, srv := newFakeServer(t, reply{201, `{"id":"p1","status":"approved","amount":"10.50"}`})
		gw, _, _ := newTestGateway(t, srv)

		resp, err := gw.Execute(context.Background(), testPayment(t))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if resp.StatusCode != 201 || resp.ID() != "p1" || resp.Status() != "approved" {
			t.Fatalf("unexpected response %+v", resp)
		}
		if resp.IsList() {
			t.Error("object reply must not be a list")
		}

		var sent map[string]any
		if err := json.Unmarshal([]byte(fake.bodies[0]), &sent); err != nil {
			t.Fatalf("request body is not JSON: %v", err)
		}
		if sent["payment_method"] != "card" || sent["amount"] != "10.50" {
			t.Errorf("unexpected request body %v", sent)
		}
		h := fake.headers
		if h.Get("Accept") != "application/json" || h.Get("Content-Type") != "application/json" {
			t.Errorf("missing JSON headers: %v", h)
		}
		if !strings.HasPrefix(h.Get("User-Agent"), "cardinity-go/") {
			t.Errorf("unexpected user agent %q", h.Get("User-Agent"))
		}
		if !strings.HasPrefix(h.Get("Authorization"), "OAuth ") {
			t.Errorf("missing authorization header: %q", h.Get("Authorization"))
		}
	})

	t.Run("GET sends no body", func(t *testing.T) {
		fake, srv := newFakeServer(t, reply{200, `{"id":"p1","status":"pending"}`})
		gw, _, _ := newTestGateway(t, srv)

		if _, err := gw.Execute(context.Background(), testGet(t, "p1")); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if fake.bodies[0] != "" {
			t.Fatalf("GET must not carry a body, got %q", fake.bodies[0])
		}
	})

	t.Run("list reply", func(t *testing.T) {
		_, srv := newFakeServer(t, reply{200, `[{"id":"p1"},{"id":"p2"}]`})
		gw, _, _ := newTestGateway(t, srv)

		resp, err := gw.Execute(context.Background(), model.NewListPayments(2))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !resp.IsList() || len(resp.Items) != 2 || resp.Items[1]["id"] != "p2" {
			t.Fatalf("unexpected list %+v", resp.Items)
		}
	})

	t.Run("invalid JSON on success is wrapped", func(t *testing.T) {
		_, srv := newFakeServer(t, reply{200, `not json`})
		gw, _, _ := newTestGateway(t, srv)

		resp, err := gw.Execute(context.Background(), testGet(t, "p1"))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if resp.Object["error"] != "Invalid JSON response" || resp.Object["content"] != "not json" {
			t.Fatalf("unexpected wrapped reply %v", resp.Object)
		}
	})

	t.Run("empty success body is an empty object", func(t *testing.T) {
		_, srv := newFakeServer(t, reply{204, ``})
		gw, _, _ := newTestGateway(t, srv)

		resp, err := gw.Execute(context.Background(), testGet(t, "p1"))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if resp.Object == nil || len(resp.Object) != 0 {
			t.Fatalf("expected empty object, got %v", resp.Object)
		}
	})
}

func TestExecute_Retry(t *testing.T) {
	t.Run("retries 5xx with doubling backoff", func(t *testing.T) {
		fake, srv := newFakeServer(t,
			reply{503, `{"message":"busy"}`},
			reply{503, `{"message":"busy"}`},
			reply{200, `{"id":"p1","status":"approved"}`},
		)
		gw, _, rec := newTestGateway(t, srv)

		resp, err := gw.Execute(context.Background(), testGet(t, "p1"))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if resp.ID() != "p1" {
			t.Fatalf("unexpected response %+v", resp)
		}
		if fake.callCount() != 3 {
			t.Fatalf("expected 3 attempts, got %d", fake.callCount())
		}
		want := []time.Duration{time.Second, 2 * time.Second}
		got := rec.recorded()
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("expected delays %v, got %v", want, got)
		}
	})

	t.Run("signs every attempt afresh", func(t *testing.T) {
		fake, srv := newFakeServer(t, reply{502, `{}`}, reply{200, `{"id":"p1"}`})
		gw, signer, _ := newTestGateway(t, srv)

		if _, err := gw.Execute(context.Background(), testPayment(t)); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if signer.n.Load() != 2 {
			t.Fatalf("expected 2 signatures, got %d", signer.n.Load())
		}
		if fake.auths[0] == fake.auths[1] {
			t.Fatal("retry reused the previous Authorization header")
		}
		if fake.bodies[0] != fake.bodies[1] {
			t.Fatal("retry must resend the same body")
		}
	})

	t.Run("retries 429 then gives up", func(t *testing.T) {
		fake, srv := newFakeServer(t, reply{429, `{"error":"slow down"}`})
		gw, _, rec := newTestGateway(t, srv, WithMaxRetries(2), WithRetryDelay(10*time.Millisecond))

		_, err := gw.Execute(context.Background(), testGet(t, "p1"))
		if !errors.Is(err, domain.ErrRateLimit) {
			t.Fatalf("expected ErrRateLimit, got %v", err)
		}
		if fake.callCount() != 3 {
			t.Fatalf("expected 3 attempts, got %d", fake.callCount())
		}
		got := rec.recorded()
		if len(got) != 2 || got[0] != 10*time.Millisecond || got[1] != 20*time.Millisecond {
			t.Fatalf("unexpected delays %v", got)
		}
	})

	t.Run("zero retries means a single attempt", func(t *testing.T) {
		fake, srv := newFakeServer(t, reply{500, `{}`})
		gw, _, _ := newTestGateway(t, srv, WithMaxRetries(0))

		_, err := gw.Execute(context.Background(), testGet(t, "p1"))
		if !errors.Is(err, domain.ErrServer) {
			t.Fatalf("expected ErrServer, got %v", err)
		}
		if fake.callCount() != 1 {
			t.Fatalf("expected 1 attempt, got %d", fake.callCount())
		}
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		fake, srv := newFakeServer(t, reply{400, `{"message":"Invalid amount"}`})
		gw, _, rec := newTestGateway(t, srv)

		_, err := gw.Execute(context.Background(), testPayment(t))
		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) || !errors.Is(err, domain.ErrAPI) {
			t.Fatalf("expected api error, got %v", err)
		}
		if apiErr.StatusCode != 400 || apiErr.Message != "Invalid amount" {
			t.Fatalf("unexpected api error %+v", apiErr)
		}
		if fake.callCount() != 1 || len(rec.recorded()) != 0 {
			t.Fatalf("expected no retry, got %d calls", fake.callCount())
		}
	})

	t.Run("connection failures are retried then reported", func(t *testing.T) {
		_, srv := newFakeServer(t, reply{200, `{}`})
		gw, _, rec := newTestGateway(t, srv, WithMaxRetries(1))
		srv.Close()

		_, err := gw.Execute(context.Background(), testGet(t, "p1"))
		var terr *domain.TransportError
		if !errors.As(err, &terr) {
			t.Fatalf("expected *TransportError, got %T: %v", err, err)
		}
		if len(rec.recorded()) != 1 {
			t.Fatalf("expected one backoff, got %v", rec.recorded())
		}
	})

	t.Run("cancellation during backoff stops the loop", func(t *testing.T) {
		fake, srv := newFakeServer(t, reply{503, `{}`})
		ctx, cancel := context.WithCancel(context.Background())
		gw, _, _ := newTestGateway(t, srv, WithSleep(func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		}))

		_, err := gw.Execute(ctx, testGet(t, "p1"))
		if !errors.Is(err, domain.ErrTransport) || !errors.Is(err, context.Canceled) {
			t.Fatalf("expected canceled transport error, got %v", err)
		}
		if fake.callCount() != 1 {
			t.Fatalf("expected 1 attempt, got %d", fake.callCount())
		}
	})

	t.Run("signing errors are not retried", func(t *testing.T) {
		fake, srv := newFakeServer(t, reply{200, `{}`})
		gw, signer, _ := newTestGateway(t, srv)
		signer.fail = errors.New("no key")

		if _, err := gw.Execute(context.Background(), testGet(t, "p1")); err == nil {
			t.Fatal("expected sign error")
		}
		if fake.callCount() != 0 {
			t.Fatalf("nothing should reach the server, got %d calls", fake.callCount())
		}
	})
}

func TestExecute_Classification(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    error
		message string
	}{
		{"unauthorized", 401, `{"error":"bad credentials"}`, domain.ErrAuthentication, "bad credentials"},
		{"not found", 404, `{"detail":"no such payment"}`, domain.ErrNotFound, "no such payment"},
		{"bad request", 400, `{"error_description":"amount too small"}`, domain.ErrAPI, "amount too small"},
		{"field order", 402, `{"detail":"second","message":"first"}`, domain.ErrAPI, "first"},
		{"server", 500, `{"message":"boom"}`, domain.ErrServer, "boom"},
		{"non-json body", 502, `<html>bad gateway</html>`, domain.ErrServer, "HTTP 502: Bad Gateway"},
		{"no message field", 409, `{"status":"declined"}`, domain.ErrAPI, "HTTP 409: Conflict"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, srv := newFakeServer(t, reply{tc.status, tc.body})
			gw, _, _ := newTestGateway(t, srv, WithMaxRetries(0))

			_, err := gw.Execute(context.Background(), testGet(t, "p1"))
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			var apiErr *domain.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.StatusCode != tc.status || apiErr.Message != tc.message {
				t.Fatalf("unexpected api error %+v", apiErr)
			}
			if string(apiErr.Body) != tc.body {
				t.Errorf("raw body not kept: %q", apiErr.Body)
			}
		})
	}
}

func TestExecute_AttemptTimeout(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	gw, err := NewCardinityGateway(&countingSigner{},
		WithBaseURL(srv.URL),
		WithTimeout(50*time.Millisecond),
		WithMaxRetries(0),
		WithLogger(newTestLogger()),
	)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	defer gw.Close()

	_, err = gw.Execute(context.Background(), testGet(t, "p1"))
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if domain.Kind(err) != "timeout" {
		t.Fatalf("expected timeout kind, got %q", domain.Kind(err))
	}
}
