//go:build !integration

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMustRegisterTo(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegisterTo(reg)

	SetBuildInfo("test", "abc123")
	IncRequest("POST", "ok")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"cardinity_client_build_info", "cardinity_gateway_requests_total"} {
		if !names[want] {
			t.Errorf("expected %s to be registered, got %v", want, names)
		}
	}
}

func TestGatewayCounters(t *testing.T) {
	before := testutil.ToFloat64(gatewayAttempts.WithLabelValues("get", "5xx"))
	ObserveAttempt("GET", 503, 20*time.Millisecond)
	ObserveAttempt(" get ", 502, time.Millisecond)
	if got := testutil.ToFloat64(gatewayAttempts.WithLabelValues("get", "5xx")) - before; got != 2 {
		t.Fatalf("expected 2 new 5xx attempts, got %v", got)
	}

	before = testutil.ToFloat64(gatewayAttempts.WithLabelValues("post", "none"))
	ObserveAttempt("POST", 0, time.Millisecond)
	if got := testutil.ToFloat64(gatewayAttempts.WithLabelValues("post", "none")) - before; got != 1 {
		t.Fatalf("expected transport failure to be counted as status class none, got %v", got)
	}

	before = testutil.ToFloat64(gatewayRetries.WithLabelValues("rate_limit"))
	IncRetry("rate_limit")
	if got := testutil.ToFloat64(gatewayRetries.WithLabelValues("rate_limit")) - before; got != 1 {
		t.Fatalf("expected one retry, got %v", got)
	}
}

func TestPaymentCounters(t *testing.T) {
	before := testutil.ToFloat64(paymentsAmountTotal.WithLabelValues("eur"))
	AddPaymentAmount("EUR", "10.50")
	AddPaymentAmount("EUR", "not-a-number")
	if got := testutil.ToFloat64(paymentsAmountTotal.WithLabelValues("eur")) - before; got != 10.5 {
		t.Fatalf("expected 10.5 added, got %v", got)
	}

	before = testutil.ToFloat64(paymentsTotal.WithLabelValues("create_payment", "unknown"))
	IncPayment("create_payment", "")
	if got := testutil.ToFloat64(paymentsTotal.WithLabelValues("create_payment", "unknown")) - before; got != 1 {
		t.Fatalf("expected empty status to be counted as unknown, got %v", got)
	}

	before = testutil.ToFloat64(validationFailures.WithLabelValues("Refund"))
	IncValidationFailure("Refund")
	if got := testutil.ToFloat64(validationFailures.WithLabelValues("Refund")) - before; got != 1 {
		t.Fatalf("expected one validation failure, got %v", got)
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{0: "none", 200: "2xx", 201: "2xx", 404: "4xx", 429: "4xx", 503: "5xx"}
	for code, want := range cases {
		if got := statusClass(code); got != want {
			t.Errorf("status %d: expected %s, got %s", code, want, got)
		}
	}
}
