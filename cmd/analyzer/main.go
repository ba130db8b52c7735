package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &serveOptions{}
	root := &cobra.Command{
		Use:   "analyzer",
		Short: "Amazon Product Analyzer demo server",
		Long: `analyzer serves the product analyzer pages and the static content root.

The analyzer validates a submitted Amazon product URL, then shows the report
stored in the content root (review.json). When that document cannot be
loaded it offers built-in sample data instead.

Without a subcommand it behaves like "analyzer serve".`,
		Args:          cobra.NoArgs,
		RunE:          opts.run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bindFlags(root)
	root.AddCommand(newServeCmd(), newSummaryCmd())
	return root
}
