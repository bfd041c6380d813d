package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dunning/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "dunning",
	Short: "dunning - overdue-invoice follow-up from the command line",
	Long: `dunning connects to your accounting system, lists overdue customer
invoices grouped and classified by how late they are, and sends templated
follow-up emails with optional PDF attachments.

Connection settings are read from the environment (see .env support):
  ODOO_URL, ODOO_DB, ODOO_USERNAME, ODOO_PASSWORD`,
	Version: version,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
