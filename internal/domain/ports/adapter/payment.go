package adapter

import (
	"context"
	"net/http"

	"cardinity-gateway/internal/domain/model"
)

// Signer produces the Authorization header for one outgoing request. It is
// called again for every retry attempt, so nonces and timestamps stay fresh.
type Signer interface {
	Sign(method, rawURL string, body []byte) (string, error)
}

// Doer sends a prepared HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PaymentGateway is the hex port for executing request models against the
// card gateway.
type PaymentGateway interface {
	Name() string

	// Execute sends req and returns the decoded reply, or one of
	// *domain.APIError and *domain.TransportError.
	Execute(ctx context.Context, req model.Request) (*model.Response, error)
}
