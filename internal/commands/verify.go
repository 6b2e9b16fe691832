package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendboard/internal/aggregate"
	"github.com/cleared-dev/spendboard/internal/audit"
)

func newVerifyCommand(g *globalOptions) *cobra.Command {
	var (
		output      string
		recentLimit int
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the document's views match its transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ctx, _, err := g.setup(cmd.Context())
			if err != nil {
				return err
			}
			st := documentStore(cfg, output)
			sd, err := loadStoredDocument(ctx, st)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s:\n", st.Path())
			fmt.Fprintf(w, "- %d cards\n", len(sd.cards))
			fmt.Fprintf(w, "- %d transactions\n", len(sd.transactions))
			fmt.Fprintf(w, "- %d months of spending\n", len(sd.views.MonthlySpending))
			fmt.Fprintf(w, "- %d balance history points\n", len(sd.views.BalanceHistory))
			fmt.Fprintf(w, "- %d recent activity items\n", len(sd.views.RecentActivity))

			red := color.New(color.FgRed)
			var failures []string

			probs, warnings := audit.Split(audit.Transactions(sd.transactions, audit.NewCardSet(sd.cards)))
			for _, p := range warnings {
				color.New(color.FgYellow).Fprintf(w, "WARN: %s\n", p.Error())
			}
			for _, p := range probs {
				red.Fprintf(w, "FAIL: %s\n", p.Error())
			}
			if len(probs) > 0 {
				failures = append(failures, fmt.Sprintf("%d transaction problems", len(probs)))
			}

			limit := recentLimit
			if limit <= 0 {
				limit = storedRecentLimit(cfg.Aggregate.RecentLimit, sd)
			}
			recomputed, _ := aggregate.Compute(sd.transactions, aggregate.Options{RecentLimit: limit})
			if diffs := aggregate.Diff(sd.views, recomputed); len(diffs) > 0 {
				red.Fprintf(w, "FAIL: %s do not match the transactions\n", strings.Join(diffs, ", "))
				failures = append(failures, "stale "+strings.Join(diffs, ", "))
			}

			if len(failures) > 0 {
				return fmt.Errorf("document failed verification: %s", strings.Join(failures, "; "))
			}
			color.New(color.FgGreen).Fprintln(w, "OK: transactions are consistent and all views match them")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "document to check (overrides output.path)")
	cmd.Flags().IntVar(&recentLimit, "recent-limit", 0, "recent activity size the document was written with (default: inferred)")

	return cmd
}

// storedRecentLimit is the feed size the document was most likely written
// with. A non-empty feed shorter than both the configured limit and the
// number of dated transactions can only come from a smaller
// convert --recent-limit; its items are still compared one by one.
func storedRecentLimit(configured int, sd *storedDocument) int {
	if configured <= 0 {
		configured = aggregate.DefaultRecentLimit
	}
	n := len(sd.views.RecentActivity)
	if n > 0 && n < configured && n < len(aggregate.Chronological(sd.transactions)) {
		return n
	}
	return configured
}
