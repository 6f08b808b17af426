package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"cardinity-gateway/internal/domain/model"
	"cardinity-gateway/internal/domain/ports/adapter"

	"github.com/google/uuid"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway is an in-memory gateway used by tests and the CLI dry-run mode.
// Every write succeeds with status "approved"; reads echo the requested id.
type NoopGateway struct {
	mu       sync.Mutex
	requests []model.Request
	status   string
}

func NewNoopGateway() *NoopGateway {
	return &NoopGateway{status: "approved"}
}

// WithStatus changes the status reported by later replies.
func (g *NoopGateway) WithStatus(status string) *NoopGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = status
	return g
}

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) Execute(ctx context.Context, req model.Request) (*model.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)

	obj := map[string]any{}
	for k, v := range req.Body() {
		obj[k] = v
	}
	delete(obj, "payment_instrument")

	status := http.StatusOK
	switch req.Method() {
	case http.MethodPost:
		status = http.StatusCreated
		obj["id"] = uuid.NewString()
	case http.MethodGet:
		if isListing(req) {
			return &model.Response{StatusCode: status, Raw: json.RawMessage("[]"), Items: []map[string]any{}}, nil
		}
	}
	if _, ok := obj["id"]; !ok {
		obj["id"] = idFromEndpoint(req.Endpoint())
	}
	obj["status"] = g.status

	raw, _ := json.Marshal(obj)
	return &model.Response{StatusCode: status, Raw: raw, Object: obj}, nil
}

// Requests returns the requests seen so far, oldest first.
func (g *NoopGateway) Requests() []model.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]model.Request(nil), g.requests...)
}

func isListing(req model.Request) bool {
	switch r := req.(type) {
	case *model.GetChargeback:
		return !r.IsSingleChargeback()
	case interface{ IsListing() bool }:
		return r.IsListing()
	}
	return false
}

func idFromEndpoint(endpoint string) string {
	for i := len(endpoint) - 1; i >= 0; i-- {
		if endpoint[i] == '/' {
			return endpoint[i+1:]
		}
	}
	return endpoint
}
