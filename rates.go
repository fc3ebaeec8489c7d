package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/internal/payment"
	"storefront/internal/shipping"
)

func ratesGateway() (*shipping.Gateway, error) {
	if config.AppEnv.Stripe.SecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}
	return shipping.NewGateway(payment.NewStripeProvider(config.AppEnv.Stripe.SecretKey), config.AppEnv.Checkout.Currency), nil
}

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Manage shipping rates held by the payment provider",
	}
	cmd.AddCommand(ratesListCmd(), ratesCreateCmd(), ratesArchiveCmd())
	return cmd
}

func ratesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active shipping rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := ratesGateway()
			if err != nil {
				return err
			}
			rates, err := gateway.ListActive(context.Background())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tAMOUNT\tMETHOD")
			for _, r := range rates {
				fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%s\n", r.ID, r.DisplayName, r.Amount, r.Currency, r.DeliveryMethod)
			}
			return w.Flush()
		},
	}
}

func ratesCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [display name]",
		Short: "Create a shipping rate bound to a delivery method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, _ := cmd.Flags().GetFloat64("amount")
			method, _ := cmd.Flags().GetString("method")
			if _, ok := config.AppEnv.DeliveryMethods.Lookup(method); !ok {
				return fmt.Errorf("unknown delivery method %q", method)
			}

			gateway, err := ratesGateway()
			if err != nil {
				return err
			}
			rate, err := gateway.Create(context.Background(), shipping.CreateInput{
				DisplayName:    args[0],
				Amount:         amount,
				DeliveryMethod: method,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created %s (%s, %.2f %s)\n", rate.ID, rate.DeliveryMethod, rate.Amount, rate.Currency)
			return nil
		},
	}
	cmd.Flags().Float64P("amount", "a", 0, "Rate amount in major currency units")
	cmd.Flags().StringP("method", "m", "", "Delivery method code")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("method")
	return cmd
}

func ratesArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive [rate id]",
		Short: "Deactivate a shipping rate; existing orders keep resolving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := ratesGateway()
			if err != nil {
				return err
			}
			rate, err := gateway.Archive(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("archived %s\n", rate.ID)
			return nil
		},
	}
}
