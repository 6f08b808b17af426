package validation_test

import (
	"strings"
	"testing"
	"time"

	"cardinity-gateway/internal/validation"
)

func amountErrors(amount any) []string {
	errs := validation.Validate(validation.Document{"amount": amount}, validation.RefundSchema())
	return errs["amount"]
}

func TestAmount(t *testing.T) {
	valid := []string{"0.50", "0.51", "1.00", "10.50", "99999.99"}
	for _, a := range valid {
		if errs := amountErrors(a); len(errs) != 0 {
			t.Errorf("amount %q: expected valid, got %v", a, errs)
		}
	}

	badFormat := []string{"10", "10.5", "10.500", "1,00", "abc", "", ".50", "-1.00", "1.0a"}
	for _, a := range badFormat {
		errs := amountErrors(a)
		if len(errs) == 0 {
			t.Errorf("amount %q: expected format error", a)
			continue
		}
		if !strings.HasPrefix(errs[0], "value does not match regex") {
			t.Errorf("amount %q: first error should be the format check, got %v", a, errs)
		}
	}

	tooSmall := []string{"0.49", "0.00", "0.01"}
	for _, a := range tooSmall {
		errs := amountErrors(a)
		if len(errs) != 1 || errs[0] != "Amount must be at least 0.50" {
			t.Errorf("amount %q: expected minimum error only, got %v", a, errs)
		}
	}
}

func TestAmount_BothChecksReported(t *testing.T) {
	errs := amountErrors("0.4")
	if len(errs) != 2 {
		t.Fatalf("expected format and minimum errors, got %v", errs)
	}
	if errs[1] != "Amount must be at least 0.50" {
		t.Fatalf("unexpected second error: %q", errs[1])
	}
}

func TestAmount_MustBeString(t *testing.T) {
	errs := amountErrors(10.5)
	if len(errs) != 1 || errs[0] != "must be of string type" {
		t.Fatalf("expected a type error, got %v", errs)
	}
}

func TestCurrencyAllowList(t *testing.T) {
	schema := validation.Schema{"currency": validation.Currency()}
	for _, c := range validation.SupportedCurrencies {
		if errs := validation.Validate(validation.Document{"currency": c}, schema); errs != nil {
			t.Errorf("currency %s: expected valid, got %v", c, errs)
		}
	}
	for _, c := range []string{"ZZZ", "JPY", "eur", "EU", "EURO"} {
		if errs := validation.Validate(validation.Document{"currency": c}, schema); errs == nil {
			t.Errorf("currency %s: expected rejection", c)
		}
	}
}

func TestCountryAllowList(t *testing.T) {
	schema := validation.Schema{"country": validation.Country()}
	for _, c := range validation.SupportedCountries {
		if errs := validation.Validate(validation.Document{"country": c}, schema); errs != nil {
			t.Errorf("country %s: expected valid, got %v", c, errs)
		}
	}
	for _, c := range []string{"ZZ", "XX", "lt", "LTU", "L"} {
		if errs := validation.Validate(validation.Document{"country": c}, schema); errs == nil {
			t.Errorf("country %s: expected rejection", c)
		}
	}
}

func validCard() map[string]any {
	return map[string]any{
		"pan":       "4111111111111111",
		"exp_month": 12,
		"exp_year":  2030,
		"cvc":       "123",
		"holder":    "John Doe",
	}
}

func TestPaymentInstrument(t *testing.T) {
	schema := validation.Schema{"payment_instrument": validation.PaymentInstrument()}

	if errs := validation.Validate(validation.Document{"payment_instrument": validCard()}, schema); errs != nil {
		t.Fatalf("expected valid card, got %v", errs)
	}

	cases := []struct {
		name  string
		field string
		value any
	}{
		{"pan too short", "pan", "41111111111"},
		{"pan too long", "pan", "411111111111111111111"},
		{"pan with letters", "pan", "4111abcd11111111"},
		{"month zero", "exp_month", 0},
		{"month thirteen", "exp_month", 13},
		{"year before range", "exp_year", 1999},
		{"year after range", "exp_year", 2100},
		{"cvc too short", "cvc", "12"},
		{"cvc too long", "cvc", "12345"},
		{"holder with digits", "holder", "John D0e"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := validCard()
			card[tc.field] = tc.value
			errs := validation.Validate(validation.Document{"payment_instrument": card}, schema)
			found := false
			for _, msg := range errs["payment_instrument"] {
				if strings.HasPrefix(msg, tc.field+": ") {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected a %s error, got %v", tc.field, errs)
			}
		})
	}
}

func TestFinalizeSchema(t *testing.T) {
	if errs := validation.Validate(validation.Document{"cres": "token"}, validation.FinalizeSchema(true)); errs != nil {
		t.Fatalf("v2 with cres: expected valid, got %v", errs)
	}
	if errs := validation.Validate(validation.Document{"authorize_data": "pares"}, validation.FinalizeSchema(false)); errs != nil {
		t.Fatalf("v1 with authorize_data: expected valid, got %v", errs)
	}
	if errs := validation.Validate(validation.Document{"cres": "a", "authorize_data": "b"}, validation.FinalizeSchema(true)); errs == nil {
		t.Fatal("both tokens: expected rejection")
	}
	if errs := validation.Validate(validation.Document{}, validation.FinalizeSchema(false)); errs == nil {
		t.Fatal("no token: expected rejection")
	}
	if errs := validation.Validate(validation.Document{"cres": ""}, validation.FinalizeSchema(true)); errs == nil {
		t.Fatal("empty cres: expected rejection")
	}
}

func TestRecurringInstrument(t *testing.T) {
	schema := validation.RecurringPaymentSchema()
	doc := validation.Document{
		"amount":             "5.00",
		"currency":           "EUR",
		"country":            "LT",
		"payment_instrument": map[string]any{"payment_id": "too-short"},
	}
	errs := validation.Validate(doc, schema)
	want := "payment_id: Payment ID must be 36 characters long"
	if got := errs["payment_instrument"]; len(got) != 1 || got[0] != want {
		t.Fatalf("expected %q, got %v", want, errs)
	}

	doc["payment_instrument"] = map[string]any{"payment_id": "8e037fbb-fe5b-4781-b109-b3e93d671c52"}
	if errs := validation.Validate(doc, schema); errs != nil {
		t.Fatalf("expected valid, got %v", errs)
	}
}

func TestThreeDS2Data(t *testing.T) {
	schema := validation.Schema{"threeds2_data": validation.ThreeDS2Data()}
	doc := validation.Document{"threeds2_data": map[string]any{
		"notification_url": "https://merchant.example/3ds",
		"browser_info":     map[string]any{
			"accept_header":         "text/html",
			"color_depth":           24,
			"java_enabled":          false,
			"javascript_enabled":    true,
			"browser_language":      "en-US",
			"screen_height":         1080,
			"screen_width":          1920,
			"time_zone":             -120,
			"user_agent":            "Mozilla/5.0",
			"challenge_window_size": "500x600",
		},
	}}
	if errs := validation.Validate(doc, schema); errs != nil {
		t.Fatalf("expected valid, got %v", errs)
	}

	doc["threeds2_data"].(map[string]any)["browser_info"].(map[string]any)["color_depth"] = 23
	if errs := validation.Validate(doc, schema); errs == nil {
		t.Fatal("expected color depth rejection")
	}
}

func TestFormatExpiration(t *testing.T) {
	ts := time.Date(2030, 1, 2, 3, 4, 5, 987654321, time.FixedZone("EET", 2*3600))
	got := validation.FormatExpiration(ts)
	if got != "2030-01-02T01:04:05Z" {
		t.Fatalf("unexpected format: %s", got)
	}
	errs := validation.Validate(validation.Document{"expiration_date": got}, validation.UpdatePaymentLinkSchema())
	if errs != nil {
		t.Fatalf("formatted value should validate, got %v", errs)
	}
}
