package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cardinity-gateway/internal/application"
	"cardinity-gateway/internal/config"
	"cardinity-gateway/internal/domain/model"
	"cardinity-gateway/internal/domain/ports/adapter"
	"cardinity-gateway/internal/infra/adapters/payment"
	"cardinity-gateway/internal/infra/auth"
	httpserver "cardinity-gateway/internal/infra/http"
	"cardinity-gateway/internal/infra/logging"
	"cardinity-gateway/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds the global flags and builds the facade for each command.
type app struct {
	configPath  string
	dev         bool
	metricsAddr string
	dryRun      bool

	stdout io.Writer
	stderr io.Writer
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

type operation func(ctx context.Context, f application.Payments) (*model.Response, error)

// run performs op and prints the reply as indented JSON.
func (a *app) run(cmd *cobra.Command, op operation) error {
	return a.withFacade(cmd, func(ctx context.Context, f application.Payments, _ *zerolog.Logger) error {
		resp, err := op(ctx, f)
		if err != nil {
			return err
		}
		return a.print(resp)
	})
}

// withFacade wires config, logging, metrics and the gateway around fn.
func (a *app) withFacade(cmd *cobra.Command, fn func(ctx context.Context, f application.Payments, logger *zerolog.Logger) error) error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	logger := logging.NewWriter(a.stderr, cfg.Log, cfg.Runtime.Dev)

	addr := a.metricsAddr
	if addr == "" && cfg.Metrics.Enabled {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		metrics.MustRegister()
		metrics.SetBuildInfo(Version, Commit)
		srv := httpserver.NewServer(addr, prometheus.DefaultGatherer, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	var gw adapter.PaymentGateway
	if a.dryRun {
		gw = payment.NewNoopGateway()
	} else {
		signer, err := auth.NewOAuth1Signer(cfg.Gateway.ConsumerKey, cfg.Gateway.ConsumerSecret)
		if err != nil {
			return err
		}
		cgw, err := payment.NewCardinityGateway(signer,
			payment.WithBaseURL(cfg.Gateway.BaseURL),
			payment.WithTimeout(cfg.Gateway.Timeout),
			payment.WithMaxRetries(cfg.Gateway.Retries()),
			payment.WithRetryDelay(cfg.Gateway.RetryBaseDelay),
			payment.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		defer cgw.Close()
		gw = cgw
		logger.Debug().
			Str("base_url", cfg.Gateway.BaseURL).
			Str("consumer_key", logging.Redact(cfg.Gateway.ConsumerKey, cfg.Runtime.Dev)).
			Msg("gateway configured")
	}

	return fn(cmd.Context(), application.NewPaymentsFacade(gw, logger), logger)
}

func (a *app) load() (*config.Config, error) {
	if a.dryRun && a.configPath == "" {
		return &config.Config{
			Log:     config.LogConfig{Level: "warn", Format: "json"},
			Runtime: config.RuntimeConfig{Dev: a.dev},
		}, nil
	}
	return config.LoadConfig(a.configPath, a.dev)
}

func (a *app) print(resp *model.Response) error {
	return a.printJSON(payloadOf(resp))
}

func payloadOf(resp *model.Response) any {
	if resp.IsList() {
		return resp.Items
	}
	return resp.Object
}

func (a *app) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(a.stdout, string(b))
	return err
}

// ---- flag helpers ----

// optString returns nil unless the flag was given on the command line.
func optString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func optBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}
