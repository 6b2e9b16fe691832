package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/spendboard/internal/cards"
	"github.com/cleared-dev/spendboard/internal/config"
	"github.com/cleared-dev/spendboard/internal/convert"
	"github.com/cleared-dev/spendboard/internal/gitops"
	"github.com/cleared-dev/spendboard/internal/id"
	"github.com/cleared-dev/spendboard/internal/runlog"
)

type convertFlags struct {
	input       string
	output      string
	layout      string
	ids         string
	recentLimit int
	noCommit    bool
}

func newConvertCommand(g *globalOptions) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a bank statement CSV into the dashboard document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, g, f)
		},
	}

	cmd.Flags().StringVarP(&f.input, "input", "i", "", "statement CSV (overrides input.path)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "document to write (overrides output.path)")
	cmd.Flags().StringVar(&f.layout, "layout", "", "statement layout (overrides input.layout)")
	cmd.Flags().StringVar(&f.ids, "ids", "", "transaction id scheme, sequential or content (overrides ids.scheme)")
	cmd.Flags().IntVar(&f.recentLimit, "recent-limit", 0, "size of the recent activity feed (overrides aggregate.recent_limit)")
	cmd.Flags().BoolVar(&f.noCommit, "no-commit", false, "skip the git commit even when git.auto_commit is set")

	return cmd
}

func runConvert(cmd *cobra.Command, g *globalOptions, f *convertFlags) error {
	cfg, ctx, log, err := g.setup(cmd.Context())
	if err != nil {
		return err
	}
	applyConvertFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	classifier, err := classifierFor(cfg)
	if err != nil {
		return err
	}
	scheme, err := id.ParseScheme(cfg.IDs.Scheme)
	if err != nil {
		return err
	}

	input := cfg.Resolve(cfg.Input.Path)
	st := documentStore(cfg, "")
	sum, err := convert.Run(ctx, convert.Options{
		InputPath:  input,
		Layout:     cfg.Input.Layout,
		Classifier: classifier,
		IDScheme:   scheme,
		Card: cards.Template{
			Type:         cfg.Card.Type,
			HolderName:   cfg.Card.HolderName,
			MaskedNumber: cfg.Card.MaskedNumber,
			ValidYears:   cfg.Card.ValidYears,
		},
		RecentLimit: cfg.Aggregate.RecentLimit,
	}, st)
	if err != nil {
		if errors.Is(err, convert.ErrInputNotFound) {
			return fmt.Errorf("%w (set input.path in %s or pass --input)", err, config.FileName)
		}
		return err
	}

	printConvertSummary(cmd, sum, st.Path())

	var hash string
	if cfg.Git.AutoCommit && !f.noCommit {
		hash = commitDocument(cfg, st.Path(), sum)
	}
	if hash != "" {
		log.Info().Str("commit", hash).Msg("document committed")
	}

	if cfg.Log.RunLog != "" {
		entry := runlog.Entry{
			Timestamp:      time.Now(),
			RunID:          sum.RunID,
			Input:          input,
			Output:         st.Path(),
			Layout:         sum.Layout,
			Transactions:   sum.Transactions,
			Skipped:        sum.Stats.Skipped,
			InvalidDates:   sum.Stats.InvalidDates,
			InvalidAmounts: sum.Stats.InvalidAmounts,
			CommitHash:     hash,
		}
		if err := runlog.Append(cfg.Resolve(cfg.Log.RunLog), []runlog.Entry{entry}); err != nil {
			log.Warn().Err(err).Msg("failed to write run log")
		}
	}
	return nil
}

func applyConvertFlags(cfg *config.Config, f *convertFlags) {
	if f.input != "" {
		abs, err := filepath.Abs(f.input)
		if err == nil {
			cfg.Input.Path = abs
		}
	}
	if f.output != "" {
		abs, err := filepath.Abs(f.output)
		if err == nil {
			cfg.Output.Path = abs
		}
	}
	if f.layout != "" {
		cfg.Input.Layout = f.layout
	}
	if f.ids != "" {
		cfg.IDs.Scheme = f.ids
	}
	if f.recentLimit > 0 {
		cfg.Aggregate.RecentLimit = f.recentLimit
	}
}

// commitDocument commits the written document when it lives in a git
// repository. Failures are reported but do not fail the conversion.
func commitDocument(cfg *config.Config, docPath string, sum *convert.Summary) string {
	root, ok := gitops.FindRoot(filepath.Dir(docPath))
	if !ok {
		return ""
	}
	msg := fmt.Sprintf("convert: %d transactions from %s", sum.Transactions, filepath.Base(sum.Input))
	hash, err := gitops.CommitFiles(root, msg, cfg.Git.AuthorName, cfg.Git.AuthorEmail, docPath)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return ""
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to commit document: %v\n", err)
		return ""
	}
	return hash
}

func printConvertSummary(cmd *cobra.Command, sum *convert.Summary, output string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Converted %s -> %s\n", sum.Input, output)
	fmt.Fprintf(w, "- %d transactions (%d lines skipped, %d blank)\n", sum.Transactions, sum.Stats.Skipped, sum.Stats.Blank)
	fmt.Fprintf(w, "- %d months of spending\n", sum.Months)
	fmt.Fprintf(w, "- %d balance history points\n", sum.BalancePoints)
	fmt.Fprintf(w, "- %d recent activity items\n", sum.RecentActivity)
	if sum.Stats.InvalidDates > 0 || sum.Stats.InvalidAmounts > 0 {
		fmt.Fprintf(w, "- %d invalid dates, %d invalid amounts (see warnings)\n", sum.Stats.InvalidDates, sum.Stats.InvalidAmounts)
	}

	fmt.Fprintln(w, "\nCategory statistics:")
	for _, s := range sum.CategoryStats {
		fmt.Fprintf(w, "  %-20s %4d transactions  $%s\n", s.Category, s.Count, s.Total.StringFixed(2))
	}

	if sum.Fallbacks > 0 {
		fmt.Fprintf(w, "\n%d transactions matched no keyword; first %d:\n", sum.Fallbacks, len(sum.FallbackSamples))
		for _, t := range sum.FallbackSamples {
			fmt.Fprintf(w, "  %s %-40s -> %s\n", t.Date, t.Description, t.Category)
		}
	}
	fmt.Fprintf(w, "\n%d distinct merchants\n", len(sum.Merchants))
}
