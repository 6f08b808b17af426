package application

import (
	"context"
	"errors"

	"cardinity-gateway/internal/domain"
	"cardinity-gateway/internal/domain/model"
	"cardinity-gateway/internal/domain/ports/adapter"
	"cardinity-gateway/internal/infra/logging"
	"cardinity-gateway/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ Payments = (*PaymentsFacade)(nil)

// PaymentsFacade exposes one method per gateway operation. Each builds the
// request model (validating it locally) and hands it to the gateway.
type PaymentsFacade struct {
	gw     adapter.PaymentGateway
	logger *zerolog.Logger
}

func NewPaymentsFacade(gw adapter.PaymentGateway, logger *zerolog.Logger) *PaymentsFacade {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &PaymentsFacade{gw: gw, logger: logger}
}

// ---- payments ----

func (f *PaymentsFacade) CreatePayment(ctx context.Context, p model.CreatePaymentParams) (*model.Response, error) {
	req, err := model.NewCreatePayment(p)
	if err != nil {
		return nil, f.rejected(ctx, "create_payment", err)
	}
	f.logger.Debug().
		Str("card", logging.MaskPAN(p.PaymentInstrument.PAN)).
		Str("amount", req.Amount()).
		Str("currency", req.Currency()).
		Bool("settle", req.Settle()).
		Msg("creating payment")
	resp, err := f.execute(ctx, "create_payment", req)
	if err != nil {
		return nil, err
	}
	recordPayment("create_payment", resp, req.Currency(), req.Amount())
	return resp, nil
}

func (f *PaymentsFacade) CreateRecurringPayment(ctx context.Context, p model.RecurringPaymentParams) (*model.Response, error) {
	req, err := model.NewRecurringPayment(p)
	if err != nil {
		return nil, f.rejected(ctx, "create_recurring_payment", err)
	}
	resp, err := f.execute(logging.WithPaymentID(ctx, req.PaymentID()), "create_recurring_payment", req)
	if err != nil {
		return nil, err
	}
	recordPayment("create_recurring_payment", resp, p.Currency, p.Amount)
	return resp, nil
}

// FinalizePayment completes 3-D Secure. Pass CRes for v2, AuthorizeData for v1.
func (f *PaymentsFacade) FinalizePayment(ctx context.Context, paymentID string, p model.FinalizeParams) (*model.Response, error) {
	req, err := model.NewFinalizePayment(paymentID, p)
	if err != nil {
		return nil, f.rejected(ctx, "finalize_payment", err)
	}
	resp, err := f.execute(logging.WithPaymentID(ctx, paymentID), "finalize_payment", req)
	if err != nil {
		return nil, err
	}
	recordPayment("finalize_payment", resp, "", "")
	return resp, nil
}

func (f *PaymentsFacade) GetPayment(ctx context.Context, paymentID string) (*model.Response, error) {
	req, err := model.NewGetPayment(paymentID)
	if err != nil {
		return nil, f.rejected(ctx, "get_payment", err)
	}
	return f.execute(logging.WithPaymentID(ctx, paymentID), "get_payment", req)
}

// ListPayments lists recent payments; limit <= 0 leaves the page size to the
// gateway.
func (f *PaymentsFacade) ListPayments(ctx context.Context, limit int) (*model.Response, error) {
	return f.execute(ctx, "list_payments", model.NewListPayments(limit))
}

// ---- refunds, settlements, voids ----

func (f *PaymentsFacade) CreateRefund(ctx context.Context, paymentID string, p model.RefundParams) (*model.Response, error) {
	req, err := model.NewRefund(paymentID, p)
	if err != nil {
		return nil, f.rejected(ctx, "create_refund", err)
	}
	return f.execute(logging.WithPaymentID(ctx, paymentID), "create_refund", req)
}

// GetRefund fetches one refund, or all refunds of the payment when refundID
// is empty.
func (f *PaymentsFacade) GetRefund(ctx context.Context, paymentID, refundID string) (*model.Response, error) {
	req, err := model.NewGetRefund(paymentID, refundID)
	if err != nil {
		return nil, f.rejected(ctx, "get_refund", err)
	}
	return f.execute(logging.WithPaymentID(ctx, paymentID), "get_refund", req)
}

func (f *PaymentsFacade) CreateSettlement(ctx context.Context, paymentID string, p model.SettlementParams) (*model.Response, error) {
	req, err := model.NewSettlement(paymentID, p)
	if err != nil {
		return nil, f.rejected(ctx, "create_settlement", err)
	}
	return f.execute(logging.WithPaymentID(ctx, paymentID), "create_settlement", req)
}

func (f *PaymentsFacade) GetSettlement(ctx context.Context, paymentID, settlementID string) (*model.Response, error) {
	req, err := model.NewGetSettlement(paymentID, settlementID)
	if err != nil {
		return nil, f.rejected(ctx, "get_settlement", err)
	}
	return f.execute(logging.WithPaymentID(ctx, paymentID), "get_settlement", req)
}

func (f *PaymentsFacade) CreateVoid(ctx context.Context, paymentID string, p model.VoidParams) (*model.Response, error) {
	req, err := model.NewVoid(paymentID, p)
	if err != nil {
		return nil, f.rejected(ctx, "create_void", err)
	}
	return f.execute(logging.WithPaymentID(ctx, paymentID), "create_void", req)
}

func (f *PaymentsFacade) GetVoid(ctx context.Context, paymentID, voidID string) (*model.Response, error) {
	req, err := model.NewGetVoid(paymentID, voidID)
	if err != nil {
		return nil, f.rejected(ctx, "get_void", err)
	}
	return f.execute(logging.WithPaymentID(ctx, paymentID), "get_void", req)
}

// ---- chargebacks ----

// GetChargeback fetches one chargeback of a payment, or all of them when
// chargebackID is empty.
func (f *PaymentsFacade) GetChargeback(ctx context.Context, paymentID, chargebackID string) (*model.Response, error) {
	req, err := model.NewChargebackForPayment(paymentID, chargebackID)
	if err != nil {
		return nil, f.rejected(ctx, "get_chargeback", err)
	}
	return f.execute(logging.WithPaymentID(ctx, paymentID), "get_chargeback", req)
}

func (f *PaymentsFacade) ListChargebacks(ctx context.Context, limit int) (*model.Response, error) {
	return f.execute(ctx, "list_chargebacks", model.NewChargebackGlobal(limit))
}

func (f *PaymentsFacade) ListPaymentChargebacks(ctx context.Context, paymentID string) (*model.Response, error) {
	return f.GetChargeback(ctx, paymentID, "")
}

// ---- payment links ----

func (f *PaymentsFacade) CreatePaymentLink(ctx context.Context, p model.PaymentLinkParams) (*model.Response, error) {
	req, err := model.NewPaymentLink(p)
	if err != nil {
		return nil, f.rejected(ctx, "create_payment_link", err)
	}
	return f.execute(ctx, "create_payment_link", req)
}

func (f *PaymentsFacade) UpdatePaymentLink(ctx context.Context, linkID string, p model.UpdatePaymentLinkParams) (*model.Response, error) {
	req, err := model.NewUpdatePaymentLink(linkID, p)
	if err != nil {
		return nil, f.rejected(ctx, "update_payment_link", err)
	}
	return f.execute(ctx, "update_payment_link", req)
}

func (f *PaymentsFacade) GetPaymentLink(ctx context.Context, linkID string) (*model.Response, error) {
	req, err := model.NewGetPaymentLink(linkID)
	if err != nil {
		return nil, f.rejected(ctx, "get_payment_link", err)
	}
	return f.execute(ctx, "get_payment_link", req)
}

// ---- helpers ----

func (f *PaymentsFacade) execute(ctx context.Context, op string, req model.Request) (*model.Response, error) {
	ctx = logging.WithOperation(logging.EnsureTraceID(ctx), op)
	log := logging.With(ctx, f.logger)

	resp, err := f.gw.Execute(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("kind", domain.Kind(err)).Str("gateway", f.gw.Name()).Msg("gateway call failed")
		return nil, err
	}
	log.Info().
		Int("status_code", resp.StatusCode).
		Str("id", resp.ID()).
		Str("status", resp.Status()).
		Msg("gateway call succeeded")
	return resp, nil
}

// rejected records a local validation failure and returns err unchanged.
func (f *PaymentsFacade) rejected(ctx context.Context, op string, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		metrics.IncValidationFailure(verr.Model)
	}
	log := logging.With(logging.WithOperation(ctx, op), f.logger)
	log.Warn().Err(err).Msg("request rejected before sending")
	return err
}

// recordPayment counts a payment reply by status and adds approved amounts.
// The reply's own amount and currency win over the request's.
func recordPayment(op string, resp *model.Response, currency, amount string) {
	status := resp.Status()
	metrics.IncPayment(op, status)
	if status != "approved" {
		return
	}
	if v := resp.Field("currency"); v != "" {
		currency = v
	}
	if v := resp.Field("amount"); v != "" {
		amount = v
	}
	if currency != "" && amount != "" {
		metrics.AddPaymentAmount(currency, amount)
	}
}
