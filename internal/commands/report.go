package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendboard/internal/aggregate"
)

func newReportCommand(g *globalOptions) *cobra.Command {
	var output string
	var top int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print monthly cash flow and category breakdown from the document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ctx, _, err := g.setup(cmd.Context())
			if err != nil {
				return err
			}
			sd, err := loadStoredDocument(ctx, documentStore(cfg, output))
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), sd, top)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "document to read (overrides output.path)")
	cmd.Flags().IntVar(&top, "top", 6, "number of categories shown for the latest month")

	return cmd
}

func printReport(w io.Writer, sd *storedDocument, top int) {
	heading := color.New(color.Bold, color.Underline)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	signed := func(d decimal.Decimal) string {
		s := d.StringFixed(2)
		if d.IsNegative() {
			return red.Sprint(s)
		}
		return green.Sprint(s)
	}

	heading.Fprintln(w, "Monthly summary")
	fmt.Fprintf(w, "  %-8s %12s %12s %12s\n", "Month", "Income", "Spend", "Net")
	for _, m := range aggregate.MonthlySummary(sd.transactions) {
		fmt.Fprintf(w, "  %-8s %12s %12s %12s\n", m.Month, m.Income.StringFixed(2), m.Spend.StringFixed(2), signed(m.Net))
	}

	month, cats := aggregate.TopCategories(sd.views.MonthlySpending, top)
	fmt.Fprintln(w)
	if month == "" {
		heading.Fprintln(w, "Top categories")
		fmt.Fprintln(w, "  no spending recorded")
	} else {
		heading.Fprintf(w, "Top categories for %s\n", month)
		for _, c := range cats {
			fmt.Fprintf(w, "  %-20s %12s\n", c.Category, c.Amount.StringFixed(2))
		}
	}

	fmt.Fprintln(w)
	heading.Fprintln(w, "Category statistics")
	for _, s := range aggregate.CategoryStats(sd.transactions) {
		fmt.Fprintf(w, "  %-20s %4d %12s\n", s.Category, s.Count, s.Total.StringFixed(2))
	}
}
