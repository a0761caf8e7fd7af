package main

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "servicedocs",
		Short: "Quotation and invoice PDF generator for the service center",
		Long: `servicedocs turns quotation and invoice records from the service center
backend into branded, paginated PDF documents.

Run "servicedocs serve" for the HTTP API or "servicedocs render" to
generate documents from the command line. Configuration is read from the
environment and from a .env file in the working directory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newRenderCmd())
	return root
}
