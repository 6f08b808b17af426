package main

import (
	"context"

	"cardinity-gateway/internal/application"
	"cardinity-gateway/internal/domain/model"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func paymentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Create, fetch and finalize card payments",
	}
	cmd.AddCommand(paymentCreateCmd(a))
	cmd.AddCommand(paymentGetCmd(a))
	cmd.AddCommand(paymentListCmd(a))
	cmd.AddCommand(paymentFinalizeCmd(a))
	cmd.AddCommand(paymentRecurringCmd(a))
	return cmd
}

func paymentCreateCmd(a *app) *cobra.Command {
	var (
		p       model.CreatePaymentParams
		card    model.Card
		billing model.BillingAddress
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Charge a card",
		Long: `Create a card payment.

Examples:
  cardinity payment create --amount 10.50 --currency EUR --country LT \
    --pan 4111111111111111 --exp-month 12 --exp-year 2030 --cvc 123 --holder "John Doe"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Description = optString(cmd, "description")
			p.OrderID = optString(cmd, "order-id")
			p.Settle = optBool(cmd, "settle")
			p.PaymentInstrument = &card
			if cmd.Flags().Changed("billing-line1") {
				billing.AddressLine2 = optString(cmd, "billing-line2")
				billing.State = optString(cmd, "billing-state")
				p.BillingAddress = &billing
			}
			if url := optString(cmd, "notification-url"); url != nil {
				p.ThreeDS2Data = &model.ThreeDS2Data{NotificationURL: url}
			}
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return f.CreatePayment(ctx, p)
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&p.Amount, "amount", "", "amount with two decimals, e.g. 10.50")
	fl.StringVar(&p.Currency, "currency", "", "ISO 4217 currency code")
	fl.StringVar(&p.Country, "country", "", "ISO 3166-1 alpha-2 country of the customer")
	fl.String("description", "", "payment description")
	fl.String("order-id", "", "merchant order id")
	fl.Bool("settle", true, "settle immediately (false only authorizes)")

	fl.StringVar(&card.PAN, "pan", "", "card number")
	fl.IntVar(&card.ExpMonth, "exp-month", 0, "card expiry month")
	fl.IntVar(&card.ExpYear, "exp-year", 0, "card expiry year")
	fl.StringVar(&card.CVC, "cvc", "", "card security code")
	fl.StringVar(&card.Holder, "holder", "", "card holder name")

	fl.StringVar(&billing.AddressLine1, "billing-line1", "", "billing address line 1")
	fl.String("billing-line2", "", "billing address line 2")
	fl.StringVar(&billing.City, "billing-city", "", "billing city")
	fl.String("billing-state", "", "billing state")
	fl.StringVar(&billing.Zip, "billing-zip", "", "billing postal code")
	fl.StringVar(&billing.Country, "billing-country", "", "billing country code")

	fl.String("notification-url", "", "3-D Secure v2 notification URL")
	return cmd
}

func paymentGetCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "get <payment-id>...",
		Short: "Fetch one or more payments",
		Long: `Fetch payments by id. Several ids are fetched concurrently and printed
as a JSON array of {"id", "payment"} or {"id", "error"} entries.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
					return f.GetPayment(ctx, args[0])
				})
			}
			return a.withFacade(cmd, func(ctx context.Context, f application.Payments, logger *zerolog.Logger) error {
				results, err := fetchPayments(ctx, f, args, workers, logger)
				if err != nil {
					return err
				}
				if err := a.printJSON(results); err != nil {
					return err
				}
				return firstError(results)
			})
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "concurrent lookups when several ids are given")
	return cmd
}

func paymentListCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return f.ListPayments(ctx, limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum payments (0 = gateway default)")
	return cmd
}

func paymentFinalizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize <payment-id>",
		Short: "Complete a payment pending 3-D Secure",
		Long: `Complete a pending payment with the 3-D Secure result.
Pass --cres for 3-D Secure v2 or --authorize-data for v1, not both.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.FinalizeParams{
				AuthorizeData: optString(cmd, "authorize-data"),
				CRes:          optString(cmd, "cres"),
			}
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return f.FinalizePayment(ctx, args[0], p)
			})
		},
	}
	cmd.Flags().String("cres", "", "3-D Secure v2 challenge result")
	cmd.Flags().String("authorize-data", "", "3-D Secure v1 PaRes")
	return cmd
}

func paymentRecurringCmd(a *app) *cobra.Command {
	var p model.RecurringPaymentParams
	cmd := &cobra.Command{
		Use:   "recurring <payment-id>",
		Short: "Charge the card of an earlier payment again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.PaymentID = args[0]
			p.Description = optString(cmd, "description")
			p.OrderID = optString(cmd, "order-id")
			p.Settle = optBool(cmd, "settle")
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return f.CreateRecurringPayment(ctx, p)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&p.Amount, "amount", "", "amount with two decimals")
	fl.StringVar(&p.Currency, "currency", "", "ISO 4217 currency code")
	fl.StringVar(&p.Country, "country", "", "ISO 3166-1 alpha-2 country")
	fl.String("description", "", "payment description")
	fl.String("order-id", "", "merchant order id")
	fl.Bool("settle", true, "settle immediately")
	return cmd
}
