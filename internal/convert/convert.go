// Package convert runs one statement conversion: read the CSV, build and
// classify transactions, derive the views and merge everything into the
// dashboard document in a single write.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/spendboard/internal/aggregate"
	"github.com/cleared-dev/spendboard/internal/cards"
	"github.com/cleared-dev/spendboard/internal/categorize"
	"github.com/cleared-dev/spendboard/internal/id"
	"github.com/cleared-dev/spendboard/internal/importer"
	"github.com/cleared-dev/spendboard/internal/logger"
	"github.com/cleared-dev/spendboard/internal/model"
	"github.com/cleared-dev/spendboard/internal/store"
)

var (
	// ErrInputNotFound is returned when the statement file does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrUnknownLayout is returned for a layout name nobody registered.
	ErrUnknownLayout = errors.New("unknown layout")
)

// fallbackSamples is how many fallback-classified transactions a Summary
// keeps for the uncategorized report.
const fallbackSamples = 5

// Options configures one run. Zero values mean defaults.
type Options struct {
	InputPath   string
	Layout      string
	Registry    *importer.Registry
	Classifier  *categorize.Classifier
	IDScheme    id.Scheme
	Card        cards.Template
	RecentLimit int
	Now         func() time.Time
}

// Summary reports what a run did.
type Summary struct {
	RunID           string
	Input           string
	Layout          string
	Stats           importer.Stats
	Diagnostics     aggregate.Diagnostics
	Transactions    int
	Months          int
	BalancePoints   int
	RecentActivity  int
	CategoryStats   []aggregate.CategoryStat
	Fallbacks       int
	FallbackSamples []model.Transaction
	Merchants       []string
}

// Run converts opts.InputPath and merges the result into st. Nothing is
// written unless the whole input was read.
func Run(ctx context.Context, opts Options, st store.Store) (*Summary, error) {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("run", runID).Logger()
	ctx = logger.WithContext(ctx, log)

	reg := opts.Registry
	if reg == nil {
		reg = importer.DefaultRegistry()
	}
	layoutName := opts.Layout
	if layoutName == "" {
		layoutName = importer.DefaultLayout
	}
	layout := reg.Get(layoutName)
	if layout == nil {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownLayout, layoutName, reg.Names())
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = categorize.NewDefault()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	f, err := os.Open(opts.InputPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, opts.InputPath)
	}
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	log.Info().Str("input", opts.InputPath).Str("layout", layout.Name).Msg("converting statement")

	builder := importer.NewBuilder(classifier, id.NewAllocator(opts.IDScheme), cards.SyntheticID)
	res, err := importer.Read(ctx, f, layout, builder)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.InputPath, err)
	}

	views, diag := aggregate.Compute(res.Transactions, aggregate.Options{RecentLimit: opts.RecentLimit})
	if diag.Undated > 0 || diag.InvalidAmounts > 0 {
		log.Warn().
			Int("undated", diag.Undated).
			Int("invalid_amounts", diag.InvalidAmounts).
			Msg("some transactions were left out of the derived views")
	}

	doc, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	err = doc.Merge(store.Collections{
		Cards:        []model.Card{cards.Synthetic(opts.Card, now())},
		Transactions: res.Transactions,
		Views:        views,
	})
	if err != nil {
		return nil, fmt.Errorf("merging document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := st.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	sum := &Summary{
		RunID:          runID,
		Input:          opts.InputPath,
		Layout:         layout.Name,
		Stats:          res.Stats,
		Diagnostics:    diag,
		Transactions:   len(res.Transactions),
		Months:         len(views.MonthlySpending),
		BalancePoints:  len(views.BalanceHistory),
		RecentActivity: len(views.RecentActivity),
		CategoryStats:  aggregate.CategoryStats(res.Transactions),
		Merchants:      builder.Merchants(),
	}
	for _, t := range res.Transactions {
		if !classifier.Match(t.Description, t.Type, t.Amount).Fallback {
			continue
		}
		sum.Fallbacks++
		if len(sum.FallbackSamples) < fallbackSamples {
			sum.FallbackSamples = append(sum.FallbackSamples, t)
		}
	}

	log.Info().
		Int("transactions", sum.Transactions).
		Int("skipped", res.Stats.Skipped).
		Int("months", sum.Months).
		Int("fallbacks", sum.Fallbacks).
		Msg("conversion complete")
	return sum, nil
}
