package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront checkout and order fulfillment backend",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.Load()
		},
		RunE: runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(indexesCmd())
	rootCmd.AddCommand(ratesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
