package model

import (
	"net/http"

	"cardinity-gateway/internal/validation"
)

const (
	PaymentMethodCard      = "card"
	PaymentMethodRecurring = "recurring"
)

// Card is the payment instrument of a card payment.
type Card struct {
	PAN      string
	ExpMonth int
	ExpYear  int
	CVC      string
	Holder   string
}

func (c Card) document() map[string]any {
	doc := validation.Document{"exp_month": c.ExpMonth, "exp_year": c.ExpYear}
	setString(doc, "pan", c.PAN)
	setString(doc, "cvc", c.CVC)
	setString(doc, "holder", c.Holder)
	return doc
}

type BillingAddress struct {
	AddressLine1 string
	AddressLine2 *string
	City         string
	State        *string
	Zip          string
	Country      string
}

func (a BillingAddress) document() map[string]any {
	doc := validation.Document{}
	setString(doc, "address_line1", a.AddressLine1)
	setOptString(doc, "address_line2", a.AddressLine2)
	setString(doc, "city", a.City)
	setOptString(doc, "state", a.State)
	setString(doc, "zip", a.Zip)
	setString(doc, "country", a.Country)
	return doc
}

// BrowserInfo describes the cardholder's browser for 3-D Secure v2.
type BrowserInfo struct {
	AcceptHeader        string
	ColorDepth          int
	JavaEnabled         bool
	JavascriptEnabled   bool
	Language            string
	ScreenHeight        int
	ScreenWidth         int
	TimeZone            int
	UserAgent           string
	ChallengeWindowSize *string
	IPAddress           *string
}

func (b BrowserInfo) document() map[string]any {
	doc := validation.Document{
		"color_depth":        b.ColorDepth,
		"java_enabled":       b.JavaEnabled,
		"javascript_enabled": b.JavascriptEnabled,
		"screen_height":      b.ScreenHeight,
		"screen_width":       b.ScreenWidth,
		"time_zone":          b.TimeZone,
	}
	setString(doc, "accept_header", b.AcceptHeader)
	setString(doc, "browser_language", b.Language)
	setString(doc, "user_agent", b.UserAgent)
	setOptString(doc, "challenge_window_size", b.ChallengeWindowSize)
	setOptString(doc, "ip_address", b.IPAddress)
	return doc
}

type ThreeDS2Data struct {
	NotificationURL *string
	BrowserInfo     *BrowserInfo
}

func (t ThreeDS2Data) document() map[string]any {
	doc := validation.Document{}
	setOptString(doc, "notification_url", t.NotificationURL)
	if t.BrowserInfo != nil {
		doc["browser_info"] = t.BrowserInfo.document()
	}
	return doc
}

// CreatePaymentParams holds the fields of a card payment. Nil pointers are
// left out of the request.
type CreatePaymentParams struct {
	Amount            string
	Currency          string
	Country           string
	Description       *string
	OrderID           *string
	Settle            *bool
	PaymentInstrument *Card
	BillingAddress    *BillingAddress
	ThreeDS2Data      *ThreeDS2Data
}

func (p CreatePaymentParams) document() validation.Document {
	doc := validation.Document{}
	setString(doc, "amount", p.Amount)
	setString(doc, "currency", p.Currency)
	setString(doc, "country", p.Country)
	setOptString(doc, "description", p.Description)
	setOptString(doc, "order_id", p.OrderID)
	setOptBool(doc, "settle", p.Settle)
	if p.PaymentInstrument != nil {
		doc["payment_instrument"] = p.PaymentInstrument.document()
	}
	if p.BillingAddress != nil {
		doc["billing_address"] = p.BillingAddress.document()
	}
	if p.ThreeDS2Data != nil {
		doc["threeds2_data"] = p.ThreeDS2Data.document()
	}
	return doc
}

// CreatePayment charges a card.
type CreatePayment struct {
	payload
}

func NewCreatePayment(p CreatePaymentParams) (*CreatePayment, error) {
	pl, err := newPayload("CreatePayment", validation.CreatePaymentSchema(), p.document())
	if err != nil {
		return nil, err
	}
	return &CreatePayment{pl}, nil
}

func (*CreatePayment) Endpoint() string { return "/payments" }
func (*CreatePayment) Method() string   { return http.MethodPost }

func (c *CreatePayment) Body() map[string]any {
	body := c.payload.Body()
	body["payment_method"] = PaymentMethodCard
	return body
}

func (c *CreatePayment) Amount() string   { return c.str("amount") }
func (c *CreatePayment) Currency() string { return c.str("currency") }

// Settle reports whether funds are captured immediately. The gateway treats
// an omitted flag as true.
func (c *CreatePayment) Settle() bool {
	return settle(c.payload)
}

func (c *CreatePayment) withPatch(patch map[string]any) (Request, error) {
	pl, err := c.patched(patch)
	if err != nil {
		return nil, err
	}
	return &CreatePayment{pl}, nil
}

type RecurringPaymentParams struct {
	Amount      string
	Currency    string
	Country     string
	Description *string
	OrderID     *string
	Settle      *bool
	// PaymentID is the approved payment whose card is charged again.
	PaymentID string
}

func (p RecurringPaymentParams) document() validation.Document {
	doc := validation.Document{}
	setString(doc, "amount", p.Amount)
	setString(doc, "currency", p.Currency)
	setString(doc, "country", p.Country)
	setOptString(doc, "description", p.Description)
	setOptString(doc, "order_id", p.OrderID)
	setOptBool(doc, "settle", p.Settle)
	instrument := validation.Document{}
	setString(instrument, "payment_id", p.PaymentID)
	doc["payment_instrument"] = map[string]any(instrument)
	return doc
}

// RecurringPayment charges the card of a previous payment again.
type RecurringPayment struct {
	payload
}

func NewRecurringPayment(p RecurringPaymentParams) (*RecurringPayment, error) {
	pl, err := newPayload("RecurringPayment", validation.RecurringPaymentSchema(), p.document())
	if err != nil {
		return nil, err
	}
	return &RecurringPayment{pl}, nil
}

func (*RecurringPayment) Endpoint() string { return "/payments" }
func (*RecurringPayment) Method() string   { return http.MethodPost }

func (r *RecurringPayment) Body() map[string]any {
	body := r.payload.Body()
	body["payment_method"] = PaymentMethodRecurring
	return body
}

func (r *RecurringPayment) Settle() bool { return settle(r.payload) }

func (r *RecurringPayment) PaymentID() string {
	instrument, _ := r.doc["payment_instrument"].(map[string]any)
	id, _ := instrument["payment_id"].(string)
	return id
}

func (r *RecurringPayment) withPatch(patch map[string]any) (Request, error) {
	pl, err := r.patched(patch)
	if err != nil {
		return nil, err
	}
	return &RecurringPayment{pl}, nil
}

func settle(p payload) bool {
	if v, ok := p.doc["settle"].(bool); ok {
		return v
	}
	return true
}

// FinalizeParams carries the 3-D Secure result. Set CRes for v2 and
// AuthorizeData for v1; setting both is rejected.
type FinalizeParams struct {
	AuthorizeData *string
	CRes          *string
}

// FinalizePayment completes a payment that is pending 3-D Secure.
type FinalizePayment struct {
	payload
	paymentID string
	v2        bool
}

func NewFinalizePayment(paymentID string, p FinalizeParams) (*FinalizePayment, error) {
	id, err := pathID("FinalizePayment", "payment_id", paymentID)
	if err != nil {
		return nil, err
	}
	v2 := p.CRes != nil
	doc := validation.Document{}
	setOptString(doc, "authorize_data", p.AuthorizeData)
	setOptString(doc, "cres", p.CRes)
	pl, err := newPayload("FinalizePayment", validation.FinalizeSchema(v2), doc)
	if err != nil {
		return nil, err
	}
	return &FinalizePayment{payload: pl, paymentID: id, v2: v2}, nil
}

func (f *FinalizePayment) Endpoint() string { return "/payments/" + f.paymentID }
func (*FinalizePayment) Method() string     { return http.MethodPatch }

// Body carries only the token of the selected 3-D Secure version.
func (f *FinalizePayment) Body() map[string]any {
	key := "authorize_data"
	if f.v2 {
		key = "cres"
	}
	return map[string]any{key: f.doc[key]}
}

func (f *FinalizePayment) IsThreeDSv2() bool { return f.v2 }
func (f *FinalizePayment) PaymentID() string { return f.paymentID }

func (f *FinalizePayment) withPatch(patch map[string]any) (Request, error) {
	pl, err := f.patched(patch)
	if err != nil {
		return nil, err
	}
	return &FinalizePayment{payload: pl, paymentID: f.paymentID, v2: f.v2}, nil
}

// GetPayment fetches one payment or lists them.
type GetPayment struct {
	readOnly
	paymentID string
	limit     int
}

func NewGetPayment(paymentID string) (*GetPayment, error) {
	id, err := pathID("GetPayment", "payment_id", paymentID)
	if err != nil {
		return nil, err
	}
	return &GetPayment{readOnly: readOnly{name: "GetPayment"}, paymentID: id}, nil
}

// NewListPayments lists payments, newest first. A limit of zero or less
// leaves the page size to the gateway.
func NewListPayments(limit int) *GetPayment {
	return &GetPayment{readOnly: readOnly{name: "GetPayment"}, limit: limit}
}

func (g *GetPayment) Endpoint() string {
	if g.IsListing() {
		return withLimit("/payments", g.limit)
	}
	return "/payments/" + g.paymentID
}

func (g *GetPayment) IsListing() bool   { return g.paymentID == "" }
func (g *GetPayment) PaymentID() string { return g.paymentID }
func (g *GetPayment) Limit() int        { return g.limit }
