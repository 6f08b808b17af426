package main

import (
	"context"

	"cardinity-gateway/internal/application"
	"cardinity-gateway/internal/infra/worker"

	"github.com/rs/zerolog"
)

type lookupResult struct {
	ID      string `json:"id"`
	Payment any    `json:"payment,omitempty"`
	Error   string `json:"error,omitempty"`

	err error
}

// fetchPayments looks ids up on a bounded worker pool. Results keep the
// order of ids.
func fetchPayments(ctx context.Context, f application.Payments, ids []string, workers int, logger *zerolog.Logger) ([]lookupResult, error) {
	results := make([]lookupResult, len(ids))
	err := worker.Run(ctx, workers, len(ids), logger, func(ctx context.Context, i int) {
		results[i].ID = ids[i]
		resp, err := f.GetPayment(ctx, ids[i])
		if err != nil {
			results[i].Error = err.Error()
			results[i].err = err
			return
		}
		results[i].Payment = payloadOf(resp)
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func firstError(results []lookupResult) error {
	for _, r := range results {
		if r.err != nil {
			return r.err
		}
	}
	return nil
}
