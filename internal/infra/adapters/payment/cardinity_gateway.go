// File: internal/infra/adapters/payment/cardinity_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cardinity-gateway/internal/domain"
	"cardinity-gateway/internal/domain/model"
	"cardinity-gateway/internal/domain/ports/adapter"
	"cardinity-gateway/internal/infra/logging"
	"cardinity-gateway/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ adapter.PaymentGateway = (*CardinityGateway)(nil)

const (
	DefaultBaseURL    = "https://api.cardinity.com/v1"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// Version is reported in the User-Agent header.
var Version = "1.0.0"

// CardinityGateway implements adapter.PaymentGateway over the Cardinity REST
// API. It signs every attempt, retries transport failures, 429 and 5xx with
// exponential backoff, and maps error statuses to domain errors.
// It is safe for concurrent use.
type CardinityGateway struct {
	baseURL    string
	signer     adapter.Signer
	doer       adapter.Doer
	client     *http.Client // nil when the caller supplied its own Doer
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	userAgent  string
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zerolog.Logger
}

type Option func(*CardinityGateway)

func WithBaseURL(u string) Option {
	return func(g *CardinityGateway) { g.baseURL = u }
}

// WithTimeout bounds each attempt, not the whole call.
func WithTimeout(d time.Duration) Option {
	return func(g *CardinityGateway) { g.timeout = d }
}

func WithMaxRetries(n int) Option {
	return func(g *CardinityGateway) { g.maxRetries = n }
}

// WithRetryDelay sets the first backoff delay; each later one doubles it.
func WithRetryDelay(d time.Duration) Option {
	return func(g *CardinityGateway) { g.retryDelay = d }
}

// WithDoer replaces the HTTP transport. Close is then a no-op.
func WithDoer(d adapter.Doer) Option {
	return func(g *CardinityGateway) {
		g.doer = d
		g.client = nil
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(g *CardinityGateway) {
		g.doer = c
		g.client = c
	}
}

// WithSleep replaces the backoff sleep. It must return ctx.Err() when ctx
// ends first.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(g *CardinityGateway) { g.sleep = fn }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(g *CardinityGateway) { g.logger = l }
}

func WithUserAgent(ua string) Option {
	return func(g *CardinityGateway) { g.userAgent = ua }
}

func NewCardinityGateway(signer adapter.Signer, opts ...Option) (*CardinityGateway, error) {
	if signer == nil {
		return nil, errors.New("signer is required")
	}
	client := &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	nop := zerolog.Nop()
	g := &CardinityGateway{
		baseURL:    DefaultBaseURL,
		signer:     signer,
		doer:       client,
		client:     client,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		userAgent:  "cardinity-go/" + Version,
		sleep:      sleepOrDone,
		logger:     &nop,
	}
	for _, o := range opts {
		o(g)
	}
	if g.baseURL == "" {
		return nil, errors.New("base url is required")
	}
	if g.timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout %v", g.timeout)
	}
	if g.maxRetries < 0 {
		return nil, fmt.Errorf("invalid max retries %d", g.maxRetries)
	}
	return g, nil
}

func (g *CardinityGateway) Name() string { return "cardinity" }

// Close releases idle keep-alive connections of the owned HTTP client.
func (g *CardinityGateway) Close() error {
	if g.client != nil {
		g.client.CloseIdleConnections()
	}
	return nil
}

// BuildURL joins base and endpoint with exactly one slash. Query strings in
// endpoint are kept.
func BuildURL(base, endpoint string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// Execute sends req and returns the decoded reply.
func (g *CardinityGateway) Execute(ctx context.Context, req model.Request) (*model.Response, error) {
	ctx = logging.EnsureTraceID(ctx)
	ctx = logging.WithOperation(ctx, req.Name())
	log := logging.With(ctx, g.logger)
	defer logging.TraceDuration(log, "CardinityGateway.Execute")()

	method := strings.ToUpper(req.Method())
	var body []byte
	switch method {
	case http.MethodGet, http.MethodDelete:
	case http.MethodPost, http.MethodPatch:
		b, err := json.Marshal(req.Body())
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", req.Name(), err)
		}
		body = b
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	resp, err := g.execute(ctx, log, method, BuildURL(g.baseURL, req.Endpoint()), body)
	outcome := "ok"
	if err != nil {
		outcome = domain.Kind(err)
	}
	metrics.IncRequest(method, outcome)
	return resp, err
}

func (g *CardinityGateway) execute(ctx context.Context, log *zerolog.Logger, method, rawURL string, body []byte) (*model.Response, error) {
	for attempt := 1; ; attempt++ {
		start := time.Now()
		resp, status, err := g.attempt(ctx, method, rawURL, body)
		elapsed := time.Since(start)
		metrics.ObserveAttempt(method, status, elapsed)

		log.Debug().
			Str("method", method).
			Str("url", rawURL).
			Int("attempt", attempt).
			Int("status", status).
			Dur("duration", elapsed).
			Err(err).
			Msg("gateway attempt")

		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &domain.TransportError{Err: ctxErr}
		}
		reason, retryable := retryReason(err)
		if !retryable || attempt > g.maxRetries {
			return nil, err
		}

		delay := g.retryDelay * time.Duration(1<<(attempt-1))
		log.Warn().
			Str("method", method).
			Str("url", rawURL).
			Int("attempt", attempt).
			Str("reason", reason).
			Dur("backoff", delay).
			Err(err).
			Msg("gateway attempt failed, retrying")
		metrics.IncRetry(reason)

		if err := g.sleep(ctx, delay); err != nil {
			return nil, &domain.TransportError{Err: err}
		}
	}
}

// attempt performs one signed round trip. status is 0 when no response was
// received.
func (g *CardinityGateway) attempt(ctx context.Context, method, rawURL string, body []byte) (*model.Response, int, error) {
	actx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(actx, method, rawURL, rdr)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	authz, err := g.signer.Sign(method, rawURL, body)
	if err != nil {
		return nil, 0, fmt.Errorf("sign request: %w", err)
	}
	httpReq.Header.Set("Authorization", authz)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", g.userAgent)

	res, err := g.doer.Do(httpReq)
	if err != nil {
		return nil, 0, &domain.TransportError{Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, &domain.TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return decodeSuccess(res.StatusCode, raw), res.StatusCode, nil
	}
	return nil, res.StatusCode, classify(res.StatusCode, raw)
}

func retryReason(err error) (string, bool) {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		if !apiErr.Retryable() {
			return "", false
		}
		if errors.Is(apiErr, domain.ErrRateLimit) {
			return "rate_limit", true
		}
		return "server", true
	}
	if errors.Is(err, domain.ErrTransport) {
		return "transport", true
	}
	return "", false
}

// decodeSuccess turns a 2xx body into an object or a list. An empty body is
// an empty object; anything that is not JSON is wrapped so callers still get
// a mapping.
func decodeSuccess(status int, raw []byte) *model.Response {
	out := &model.Response{StatusCode: status, Raw: json.RawMessage(raw)}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		out.Object = map[string]any{}
		return out
	}
	if trimmed[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal(trimmed, &items); err == nil {
			out.Items = items
			return out
		}
	} else {
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err == nil && obj != nil {
			out.Object = obj
			return out
		}
	}
	out.Object = map[string]any{"error": "Invalid JSON response", "content": string(raw)}
	return out
}

func classify(status int, raw []byte) *domain.APIError {
	kind := domain.ErrAPI
	switch {
	case status == http.StatusUnauthorized:
		kind = domain.ErrAuthentication
	case status == http.StatusNotFound:
		kind = domain.ErrNotFound
	case status == http.StatusTooManyRequests:
		kind = domain.ErrRateLimit
	case status >= 500:
		kind = domain.ErrServer
	}
	return &domain.APIError{
		Kind:       kind,
		StatusCode: status,
		Message:    extractMessage(status, raw),
		Body:       raw,
	}
}

var messageFields = []string{"message", "error", "detail", "error_description"}

func extractMessage(status int, raw []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, f := range messageFields {
			switch v := obj[f].(type) {
			case nil:
			case string:
				if v != "" {
					return v
				}
			default:
				return fmt.Sprint(v)
			}
		}
	}
	return fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
}

// sleepOrDone waits for d or returns early on context cancellation.
func sleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
