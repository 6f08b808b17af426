package main

import (
	"context"
	"time"

	"cardinity-gateway/internal/application"
	"cardinity-gateway/internal/domain/model"

	"github.com/spf13/cobra"
)

func linkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "link", Short: "Manage payment links"}
	cmd.AddCommand(linkCreateCmd(a))
	cmd.AddCommand(linkUpdateCmd(a))
	cmd.AddCommand(linkGetCmd(a))
	return cmd
}

func linkCreateCmd(a *app) *cobra.Command {
	var p model.PaymentLinkParams
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a hosted payment link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Description = optString(cmd, "description")
			p.MultipleUse = optBool(cmd, "multiple-use")
			p.ExpirationDate = expiration(cmd)
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return f.CreatePaymentLink(ctx, p)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&p.Amount, "amount", "", "amount with two decimals")
	fl.StringVar(&p.Currency, "currency", "", "ISO 4217 currency code")
	fl.StringVar(&p.Country, "country", "", "ISO 3166-1 alpha-2 country")
	fl.String("description", "", "text shown on the payment page")
	fl.Bool("multiple-use", false, "allow more than one payment through the link")
	expirationFlags(cmd)
	return cmd
}

func linkUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <link-id>",
		Short: "Change the expiry or enabled flag of a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.UpdatePaymentLinkParams{
				ExpirationDate: expiration(cmd),
				Enabled:        optBool(cmd, "enabled"),
			}
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return f.UpdatePaymentLink(ctx, args[0], p)
			})
		},
	}
	cmd.Flags().Bool("enabled", true, "enable or disable the link")
	expirationFlags(cmd)
	return cmd
}

func linkGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <link-id>",
		Short: "Fetch a payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, f application.Payments) (*model.Response, error) {
				return f.GetPaymentLink(ctx, args[0])
			})
		},
	}
}

func expirationFlags(cmd *cobra.Command) {
	cmd.Flags().String("expires-at", "", "expiry as RFC 3339 or 2006-01-02T15:04:05Z")
	cmd.Flags().Duration("expires-in", 0, "expiry relative to now, e.g. 72h")
	cmd.MarkFlagsMutuallyExclusive("expires-at", "expires-in")
}

// expiration prefers an absolute --expires-at; unparseable values are passed
// through so the model reports them.
func expiration(cmd *cobra.Command) *model.Expiration {
	if s := optString(cmd, "expires-at"); s != nil {
		if t, err := time.Parse(time.RFC3339, *s); err == nil {
			return model.ExpiresAt(t)
		}
		return model.ExpiresOn(*s)
	}
	if cmd.Flags().Changed("expires-in") {
		d, _ := cmd.Flags().GetDuration("expires-in")
		return model.ExpiresAt(time.Now().Add(d))
	}
	return nil
}
