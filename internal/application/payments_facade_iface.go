package application

import (
	"context"

	"cardinity-gateway/internal/domain/model"
)

// Payments is the operation surface the CLI drives. Using an interface lets
// command tests pass a light-weight fake.
type Payments interface {
	CreatePayment(ctx context.Context, p model.CreatePaymentParams) (*model.Response, error)
	CreateRecurringPayment(ctx context.Context, p model.RecurringPaymentParams) (*model.Response, error)
	FinalizePayment(ctx context.Context, paymentID string, p model.FinalizeParams) (*model.Response, error)
	GetPayment(ctx context.Context, paymentID string) (*model.Response, error)
	ListPayments(ctx context.Context, limit int) (*model.Response, error)

	CreateRefund(ctx context.Context, paymentID string, p model.RefundParams) (*model.Response, error)
	GetRefund(ctx context.Context, paymentID, refundID string) (*model.Response, error)
	CreateSettlement(ctx context.Context, paymentID string, p model.SettlementParams) (*model.Response, error)
	GetSettlement(ctx context.Context, paymentID, settlementID string) (*model.Response, error)
	CreateVoid(ctx context.Context, paymentID string, p model.VoidParams) (*model.Response, error)
	GetVoid(ctx context.Context, paymentID, voidID string) (*model.Response, error)

	GetChargeback(ctx context.Context, paymentID, chargebackID string) (*model.Response, error)
	ListChargebacks(ctx context.Context, limit int) (*model.Response, error)
	ListPaymentChargebacks(ctx context.Context, paymentID string) (*model.Response, error)

	CreatePaymentLink(ctx context.Context, p model.PaymentLinkParams) (*model.Response, error)
	UpdatePaymentLink(ctx context.Context, linkID string, p model.UpdatePaymentLinkParams) (*model.Response, error)
	GetPaymentLink(ctx context.Context, linkID string) (*model.Response, error)
}
