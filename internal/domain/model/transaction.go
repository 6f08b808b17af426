package model

import (
	"net/http"

	"cardinity-gateway/internal/validation"
)

// Refunds, settlements and voids all hang off an existing payment at
// /payments/{id}/<collection>.

type RefundParams struct {
	Amount      string
	Description *string
}

type SettlementParams struct {
	Amount      string
	Description *string
}

type VoidParams struct {
	Description *string
}

func amountDocument(amount string, description *string) validation.Document {
	doc := validation.Document{}
	setString(doc, "amount", amount)
	setOptString(doc, "description", description)
	return doc
}

// child is a write request posted to a payment's sub-collection.
type child struct {
	payload
	paymentID  string
	collection string
}

func newChild(name, collection, paymentID string, schema validation.Schema, doc validation.Document) (child, error) {
	id, err := pathID(name, "payment_id", paymentID)
	if err != nil {
		return child{}, err
	}
	pl, err := newPayload(name, schema, doc)
	if err != nil {
		return child{}, err
	}
	return child{payload: pl, paymentID: id, collection: collection}, nil
}

func (c child) Endpoint() string  { return "/payments/" + c.paymentID + "/" + c.collection }
func (c child) Method() string    { return http.MethodPost }
func (c child) PaymentID() string { return c.paymentID }

func (c child) patchedChild(patch map[string]any) (child, error) {
	pl, err := c.patched(patch)
	if err != nil {
		return child{}, err
	}
	c.payload = pl
	return c, nil
}

// Refund returns funds of a captured payment.
type Refund struct{ child }

func NewRefund(paymentID string, p RefundParams) (*Refund, error) {
	c, err := newChild("Refund", "refunds", paymentID, validation.RefundSchema(), amountDocument(p.Amount, p.Description))
	if err != nil {
		return nil, err
	}
	return &Refund{c}, nil
}

func (r *Refund) Amount() string { return r.str("amount") }

func (r *Refund) withPatch(patch map[string]any) (Request, error) {
	c, err := r.patchedChild(patch)
	if err != nil {
		return nil, err
	}
	return &Refund{c}, nil
}

// Settlement captures funds of an authorized payment.
type Settlement struct{ child }

func NewSettlement(paymentID string, p SettlementParams) (*Settlement, error) {
	c, err := newChild("Settlement", "settlements", paymentID, validation.SettlementSchema(), amountDocument(p.Amount, p.Description))
	if err != nil {
		return nil, err
	}
	return &Settlement{c}, nil
}

func (s *Settlement) Amount() string { return s.str("amount") }

func (s *Settlement) withPatch(patch map[string]any) (Request, error) {
	c, err := s.patchedChild(patch)
	if err != nil {
		return nil, err
	}
	return &Settlement{c}, nil
}

// Void releases an authorization without capturing it.
type Void struct{ child }

func NewVoid(paymentID string, p VoidParams) (*Void, error) {
	doc := validation.Document{}
	setOptString(doc, "description", p.Description)
	c, err := newChild("Void", "voids", paymentID, validation.VoidSchema(), doc)
	if err != nil {
		return nil, err
	}
	return &Void{c}, nil
}

func (v *Void) withPatch(patch map[string]any) (Request, error) {
	c, err := v.patchedChild(patch)
	if err != nil {
		return nil, err
	}
	return &Void{c}, nil
}

// lookup reads one item of a payment's sub-collection, or lists the
// collection when itemID is empty. The listing path keeps its trailing slash.
type lookup struct {
	readOnly
	collection string
	paymentID  string
	itemID     string
}

func newLookup(name, collection, paymentID, itemID string) (lookup, error) {
	id, err := pathID(name, "payment_id", paymentID)
	if err != nil {
		return lookup{}, err
	}
	l := lookup{readOnly: readOnly{name: name}, collection: collection, paymentID: id}
	if itemID != "" {
		l.itemID = escape(itemID)
	}
	return l, nil
}

func (l lookup) Endpoint() string {
	return "/payments/" + l.paymentID + "/" + l.collection + "/" + l.itemID
}

func (l lookup) IsListing() bool   { return l.itemID == "" }
func (l lookup) PaymentID() string { return l.paymentID }

type GetRefund struct{ lookup }

// NewGetRefund fetches one refund, or all refunds of the payment when
// refundID is empty.
func NewGetRefund(paymentID, refundID string) (*GetRefund, error) {
	l, err := newLookup("GetRefund", "refunds", paymentID, refundID)
	if err != nil {
		return nil, err
	}
	return &GetRefund{l}, nil
}

func (g *GetRefund) RefundID() string { return g.itemID }

type GetSettlement struct{ lookup }

func NewGetSettlement(paymentID, settlementID string) (*GetSettlement, error) {
	l, err := newLookup("GetSettlement", "settlements", paymentID, settlementID)
	if err != nil {
		return nil, err
	}
	return &GetSettlement{l}, nil
}

func (g *GetSettlement) SettlementID() string { return g.itemID }

type GetVoid struct{ lookup }

func NewGetVoid(paymentID, voidID string) (*GetVoid, error) {
	l, err := newLookup("GetVoid", "voids", paymentID, voidID)
	if err != nil {
		return nil, err
	}
	return &GetVoid{l}, nil
}

func (g *GetVoid) VoidID() string { return g.itemID }
