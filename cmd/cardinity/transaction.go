package main

import (
	"context"

	"cardinity-gateway/internal/application"
	"cardinity-gateway/internal/domain/model"

	"github.com/spf13/cobra"
)

func refundCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "refund", Short: "Refund settled payments"}

	var amount string
	create := &cobra.Command{
		Use:   "create <payment-id>",
		Short: "Refund part or all of a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.RefundParams{Amount: amount, Description: optString(cmd, "description")}
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return f.CreateRefund(ctx, args[0], p)
			})
		},
	}
	create.Flags().StringVar(&amount, "amount", "", "amount to refund")
	create.Flags().String("description", "", "refund note")

	cmd.AddCommand(create, lookupCmd(a, "refund", application.Payments.GetRefund))
	return cmd
}

func settlementCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "settlement", Short: "Settle authorized payments"}

	var amount string
	create := &cobra.Command{
		Use:   "create <payment-id>",
		Short: "Settle an authorized payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.SettlementParams{Amount: amount, Description: optString(cmd, "description")}
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return f.CreateSettlement(ctx, args[0], p)
			})
		},
	}
	create.Flags().StringVar(&amount, "amount", "", "amount to settle")
	create.Flags().String("description", "", "settlement note")

	cmd.AddCommand(create, lookupCmd(a, "settlement", application.Payments.GetSettlement))
	return cmd
}

func voidCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "void", Short: "Void authorized payments"}

	create := &cobra.Command{
		Use:   "create <payment-id>",
		Short: "Release an authorization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.VoidParams{Description: optString(cmd, "description")}
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return f.CreateVoid(ctx, args[0], p)
			})
		},
	}
	create.Flags().String("description", "", "void note")

	cmd.AddCommand(create, lookupCmd(a, "void", application.Payments.GetVoid))
	return cmd
}

type lookupFunc func(f application.Payments, ctx context.Context, paymentID, itemID string) (*model.Response, error)

// lookupCmd builds "get <payment-id> [id]"; without id it lists every item of
// the payment.
func lookupCmd(a *app, noun string, get lookupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "get <payment-id> [" + noun + "-id]",
		Short: "Fetch one " + noun + " or list them for a payment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var itemID string
			if len(args) == 2 {
				itemID = args[1]
			}
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return get(f, ctx, args[0], itemID)
			})
		},
	}
}

func chargebackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "chargeback", Short: "Inspect chargebacks"}

	var limit int
	get := &cobra.Command{
		Use:   "get [payment-id [chargeback-id]]",
		Short: "List all chargebacks, those of one payment, or fetch one",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				switch len(args) {
				case 0:
					return f.ListChargebacks(ctx, limit)
				case 1:
					return f.ListPaymentChargebacks(ctx, args[0])
				default:
					return f.GetChargeback(ctx, args[0], args[1])
				}
			})
		},
	}
	get.Flags().IntVarP(&limit, "limit", "n", 0, "maximum chargebacks for the global listing")

	cmd.AddCommand(get)
	return cmd
}
