package model

type chargebackMode int

const (
	chargebackGlobal chargebackMode = iota
	chargebackForPayment
)

// GetChargeback reads chargebacks either across the account or for one
// payment. Use NewChargebackGlobal or NewChargebackForPayment.
type GetChargeback struct {
	readOnly
	mode         chargebackMode
	limit        int
	paymentID    string
	chargebackID string
}

// NewChargebackGlobal lists chargebacks of all payments. A limit of zero or
// less requests the gateway default.
func NewChargebackGlobal(limit int) *GetChargeback {
	return &GetChargeback{readOnly: readOnly{name: "GetChargeback"}, mode: chargebackGlobal, limit: limit}
}

// NewChargebackForPayment fetches one chargeback of a payment, or lists them
// all when chargebackID is empty.
func NewChargebackForPayment(paymentID, chargebackID string) (*GetChargeback, error) {
	id, err := pathID("GetChargeback", "payment_id", paymentID)
	if err != nil {
		return nil, err
	}
	g := &GetChargeback{readOnly: readOnly{name: "GetChargeback"}, mode: chargebackForPayment, paymentID: id}
	if chargebackID != "" {
		g.chargebackID = escape(chargebackID)
	}
	return g, nil
}

func (g *GetChargeback) Endpoint() string {
	if g.mode == chargebackGlobal {
		return withLimit("/payments/chargebacks", g.limit)
	}
	return "/payments/" + g.paymentID + "/chargebacks/" + g.chargebackID
}

func (g *GetChargeback) IsGlobalListing() bool    { return g.mode == chargebackGlobal }
func (g *GetChargeback) IsSingleChargeback() bool { return g.chargebackID != "" }
func (g *GetChargeback) PaymentID() string        { return g.paymentID }
func (g *GetChargeback) ChargebackID() string     { return g.chargebackID }
func (g *GetChargeback) Limit() int               { return g.limit }
