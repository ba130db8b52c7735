package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AlexandruDodita/AmazonProductScraper/internal/analyzer/fixture"
	"github.com/AlexandruDodita/AmazonProductScraper/internal/report"
)

var defaultSummaryFile = filepath.Join("public", "review.json")

func newSummaryCmd() *cobra.Command {
	var useFallback bool
	cmd := &cobra.Command{
		Use:   "summary [file]",
		Short: "Print a console summary of a product report",
		Long: `summary prints the product, review and AI summary sections of a report
document. Without a file argument it reads public/review.json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r *report.ProductReport
			if useFallback {
				r = report.Fallback()
			} else {
				path := defaultSummaryFile
				if len(args) == 1 {
					path = args[0]
				}
				loaded, err := fixture.FileLoader{Path: path}.Load(cmd.Context())
				if err != nil {
					return err
				}
				r = loaded
			}
			return report.WriteSummary(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().BoolVar(&useFallback, "fallback", false, "summarise the built-in sample report")
	return cmd
}
