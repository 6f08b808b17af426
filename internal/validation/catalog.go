package validation

import (
	"strconv"
	"time"
)

const (
	amountPattern     = `\d+\.\d{2}`
	expirationPattern = `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`

	// ExpirationLayout is the wire format of payment link expiration dates.
	ExpirationLayout = "2006-01-02T15:04:05Z"

	// MinAmount is the smallest amount the gateway accepts, in major units.
	MinAmount = 0.50
)

// ValidateAmount rejects amounts below MinAmount. The format itself is
// checked separately by the amount pattern, so both errors can be reported.
func ValidateAmount(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "Amount must be a valid number"
	}
	if f < MinAmount {
		return "Amount must be at least 0.50"
	}
	return ""
}

// ValidatePaymentID requires a UUID-length payment reference.
func ValidatePaymentID(v any) string {
	s, ok := v.(string)
	if !ok {
		return "Payment ID must be a string"
	}
	if len(s) != 36 {
		return "Payment ID must be 36 characters long"
	}
	return ""
}

// FormatExpiration renders t the way the gateway expects expiration dates:
// UTC, second precision, trailing Z.
func FormatExpiration(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(ExpirationLayout)
}

func Amount() Field {
	return Field{
		Type:     TypeString,
		Required: true,
		Rules:    []Rule{Pattern(amountPattern), ValidateAmount},
	}
}

func Currency() Field {
	return Field{
		Type:     TypeString,
		Required: true,
		Rules: []Rule{
			MinLen(3), MaxLen(3),
			OneOf(SupportedCurrencies...),
			Pattern(`[A-Z]{3}`),
		},
	}
}

func Country() Field {
	return Field{
		Type:     TypeString,
		Required: true,
		Rules: []Rule{
			MinLen(2), MaxLen(2),
			OneOf(SupportedCountries...),
			Pattern(`[A-Z]{2}`),
		},
	}
}

func Description() Field {
	return Field{Type: TypeString, Nullable: true, Rules: []Rule{MaxLen(255)}}
}

func OrderID() Field {
	return Field{
		Type:     TypeString,
		Nullable: true,
		Rules:    []Rule{MaxLen(100), Pattern(`[a-zA-Z0-9_-]+`)},
	}
}

func PaymentID() Field {
	return Field{Type: TypeString, Required: true, Rules: []Rule{ValidatePaymentID}}
}

func optionalBool() Field {
	return Field{Type: TypeBoolean, Nullable: true}
}

func requiredString(max int) Field {
	return Field{Type: TypeString, Required: true, Rules: []Rule{MaxLen(max)}}
}

func optionalString(max int) Field {
	return Field{Type: TypeString, Nullable: true, Rules: []Rule{MaxLen(max)}}
}

// PaymentInstrument is the card block of a card payment.
func PaymentInstrument() Field {
	return Field{
		Type:     TypeDict,
		Required: true,
		Schema: Schema{
			"pan":       {Type: TypeString, Required: true, Rules: []Rule{MinLen(12), MaxLen(20), Pattern(`\d{12,20}`)}},
			"exp_month": {Type: TypeInteger, Required: true, Rules: []Rule{Min(1), Max(12)}},
			"exp_year":  {Type: TypeInteger, Required: true, Rules: []Rule{Min(2000), Max(2099)}},
			"cvc":       {Type: TypeString, Required: true, Rules: []Rule{MinLen(3), MaxLen(4), Pattern(`\d{3,4}`)}},
			"holder":    {Type: TypeString, Required: true, Rules: []Rule{MaxLen(100), Pattern(`[a-zA-Z\s]+`)}},
		},
	}
}

func BillingAddress() Field {
	return Field{
		Type:     TypeDict,
		Nullable: true,
		Schema: Schema{
			"address_line1": requiredString(100),
			"address_line2": optionalString(100),
			"city":          requiredString(50),
			"state":         optionalString(50),
			"zip":           requiredString(20),
			"country":       Country(),
		},
	}
}

func BrowserInfo() Field {
	return Field{
		Type:     TypeDict,
		Nullable: true,
		Schema: Schema{
			"accept_header":         requiredString(2048),
			"color_depth":           {Type: TypeInteger, Required: true, Rules: []Rule{OneOfInt(BrowserColorDepths...)}},
			"java_enabled":          {Type: TypeBoolean, Required: true},
			"javascript_enabled":    {Type: TypeBoolean, Required: true},
			"browser_language":      requiredString(8),
			"screen_height":         {Type: TypeInteger, Required: true, Rules: []Rule{Min(1)}},
			"screen_width":          {Type: TypeInteger, Required: true, Rules: []Rule{Min(1)}},
			"time_zone":             {Type: TypeInteger, Required: true, Rules: []Rule{Min(-720), Max(840)}},
			"user_agent":            requiredString(2048),
			"challenge_window_size": {Type: TypeString, Nullable: true, Rules: []Rule{Pattern(`\d+x\d+`)}},
			"ip_address":            {Type: TypeString, Nullable: true},
		},
	}
}

func ThreeDS2Data() Field {
	return Field{
		Type:     TypeDict,
		Nullable: true,
		Schema: Schema{
			"notification_url": {Type: TypeString, Nullable: true, Rules: []Rule{MaxLen(2000), Pattern(`https?://.+`)}},
			"browser_info":     BrowserInfo(),
		},
	}
}

// RecurringInstrument references the payment whose card is charged again.
func RecurringInstrument() Field {
	return Field{
		Type:     TypeDict,
		Nullable: true,
		Schema:   Schema{"payment_id": PaymentID()},
	}
}

func ExpirationDate() Field {
	return Field{Type: TypeString, Nullable: true, Rules: []Rule{Pattern(expirationPattern)}}
}

func CreatePaymentSchema() Schema {
	return Schema{
		"amount":             Amount(),
		"currency":           Currency(),
		"description":        Description(),
		"order_id":           OrderID(),
		"payment_instrument": PaymentInstrument(),
		"billing_address":    BillingAddress(),
		"threeds2_data":      ThreeDS2Data(),
		"settle":             optionalBool(),
		"country":            Country(),
	}
}

func RecurringPaymentSchema() Schema {
	return Schema{
		"amount":             Amount(),
		"currency":           Currency(),
		"description":        Description(),
		"order_id":           OrderID(),
		"payment_instrument": RecurringInstrument(),
		"settle":             optionalBool(),
		"country":            Country(),
	}
}

// RefundSchema also serves settlements; both take an amount and a note.
func RefundSchema() Schema {
	return Schema{
		"amount":      Amount(),
		"description": Description(),
	}
}

func SettlementSchema() Schema { return RefundSchema() }

func VoidSchema() Schema {
	return Schema{"description": Description()}
}

// FinalizeSchema returns the 3-D Secure v2 (cres) schema when v2 is set and
// the v1 (authorize_data) schema otherwise. Exactly one token may be sent.
func FinalizeSchema(v2 bool) Schema {
	if v2 {
		return Schema{"cres": {
			Type: TypeString, Required: true, NonEmpty: true,
			Excludes: []string{"authorize_data"},
		}}
	}
	return Schema{"authorize_data": {
		Type: TypeString, Required: true, NonEmpty: true,
		Excludes: []string{"cres"},
	}}
}

func PaymentLinkSchema() Schema {
	return Schema{
		"amount":          Amount(),
		"currency":        Currency(),
		"country":         Country(),
		"description":     Description(),
		"expiration_date": ExpirationDate(),
		"multiple_use":    optionalBool(),
	}
}

func UpdatePaymentLinkSchema() Schema {
	return Schema{
		"expiration_date": ExpirationDate(),
		"enabled":         optionalBool(),
	}
}
