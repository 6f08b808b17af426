package model

import (
	"net/http"
	"time"

	"cardinity-gateway/internal/validation"
)

// Expiration is a payment link expiry date. ExpiresAt normalizes a time to
// the wire format; ExpiresOn passes a preformatted value through for
// validation.
type Expiration struct {
	value string
}

func ExpiresAt(t time.Time) *Expiration { return &Expiration{value: validation.FormatExpiration(t)} }

func ExpiresOn(s string) *Expiration { return &Expiration{value: s} }

func (e *Expiration) String() string { return e.value }

type PaymentLinkParams struct {
	Amount         string
	Currency       string
	Country        string
	Description    *string
	ExpirationDate *Expiration
	MultipleUse    *bool
}

// PaymentLink creates a hosted payment page.
type PaymentLink struct {
	payload
}

func NewPaymentLink(p PaymentLinkParams) (*PaymentLink, error) {
	doc := validation.Document{}
	setString(doc, "amount", p.Amount)
	setString(doc, "currency", p.Currency)
	setString(doc, "country", p.Country)
	setOptString(doc, "description", p.Description)
	setExpiration(doc, p.ExpirationDate)
	setOptBool(doc, "multiple_use", p.MultipleUse)

	pl, err := newPayload("PaymentLink", validation.PaymentLinkSchema(), doc)
	if err != nil {
		return nil, err
	}
	return &PaymentLink{pl}, nil
}

func (*PaymentLink) Endpoint() string { return "/paymentLinks" }
func (*PaymentLink) Method() string   { return http.MethodPost }

func (l *PaymentLink) Amount() string { return l.str("amount") }

// ExpirationDate parses the stored expiry. ok is false when none was set.
func (l *PaymentLink) ExpirationDate() (t time.Time, ok bool) {
	return parseExpiration(l.payload)
}

func (l *PaymentLink) MultipleUse() bool {
	v, _ := l.doc["multiple_use"].(bool)
	return v
}

func (l *PaymentLink) withPatch(patch map[string]any) (Request, error) {
	pl, err := l.patched(patch)
	if err != nil {
		return nil, err
	}
	return &PaymentLink{pl}, nil
}

type UpdatePaymentLinkParams struct {
	ExpirationDate *Expiration
	Enabled        *bool
}

// UpdatePaymentLink changes the expiry or enabled flag of an existing link.
type UpdatePaymentLink struct {
	payload
	linkID string
}

func NewUpdatePaymentLink(linkID string, p UpdatePaymentLinkParams) (*UpdatePaymentLink, error) {
	id, err := pathID("UpdatePaymentLink", "link_id", linkID)
	if err != nil {
		return nil, err
	}
	doc := validation.Document{}
	setExpiration(doc, p.ExpirationDate)
	setOptBool(doc, "enabled", p.Enabled)

	pl, err := newPayload("UpdatePaymentLink", validation.UpdatePaymentLinkSchema(), doc)
	if err != nil {
		return nil, err
	}
	return &UpdatePaymentLink{payload: pl, linkID: id}, nil
}

func (u *UpdatePaymentLink) Endpoint() string { return "/paymentLinks/" + u.linkID }
func (*UpdatePaymentLink) Method() string     { return http.MethodPatch }

func (u *UpdatePaymentLink) LinkID() string { return u.linkID }

func (u *UpdatePaymentLink) ExpirationDate() (t time.Time, ok bool) {
	return parseExpiration(u.payload)
}

// Enabled returns nil when the update leaves the flag unchanged.
func (u *UpdatePaymentLink) Enabled() *bool {
	v, ok := u.doc["enabled"].(bool)
	if !ok {
		return nil
	}
	return &v
}

func (u *UpdatePaymentLink) withPatch(patch map[string]any) (Request, error) {
	pl, err := u.patched(patch)
	if err != nil {
		return nil, err
	}
	return &UpdatePaymentLink{payload: pl, linkID: u.linkID}, nil
}

type GetPaymentLink struct {
	readOnly
	linkID string
}

func NewGetPaymentLink(linkID string) (*GetPaymentLink, error) {
	id, err := pathID("GetPaymentLink", "link_id", linkID)
	if err != nil {
		return nil, err
	}
	return &GetPaymentLink{readOnly: readOnly{name: "GetPaymentLink"}, linkID: id}, nil
}

func (g *GetPaymentLink) Endpoint() string { return "/paymentLinks/" + g.linkID }
func (g *GetPaymentLink) LinkID() string   { return g.linkID }

func setExpiration(doc validation.Document, e *Expiration) {
	if e != nil {
		doc["expiration_date"] = e.value
	}
}

func parseExpiration(p payload) (time.Time, bool) {
	s := p.str("expiration_date")
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(validation.ExpirationLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
