package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cardinity-gateway/internal/domain"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdout, os.Stderr)
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(domain.ExitCode(err))
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cardinity",
		Short:         "Cardinity payment gateway client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to YAML config file (credentials may also come from CARDINITY_* env)")
	pf.BoolVar(&a.dev, "dev", false, "developer mode: console logs, no redaction")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "serve /metrics on this address while the command runs")
	pf.BoolVar(&a.dryRun, "dry-run", false, "validate locally and answer from an in-memory gateway")

	rootCmd.AddCommand(paymentCmd(a))
	rootCmd.AddCommand(refundCmd(a))
	rootCmd.AddCommand(settlementCmd(a))
	rootCmd.AddCommand(voidCmd(a))
	rootCmd.AddCommand(chargebackCmd(a))
	rootCmd.AddCommand(linkCmd(a))

	return rootCmd
}
