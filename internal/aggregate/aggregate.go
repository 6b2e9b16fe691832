// Package aggregate derives the dashboard views from a transaction set.
// Every view is recomputed from scratch; nothing here is incremental.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/spendboard/internal/model"
)

// DefaultRecentLimit is the size of the recent activity feed.
const DefaultRecentLimit = 20

// Options tunes Compute.
type Options struct {
	RecentLimit int // <= 0 means DefaultRecentLimit
}

// Views are the derived collections written next to the transactions.
type Views struct {
	MonthlySpending model.MonthlySpending
	BalanceHistory  []model.BalancePoint
	RecentActivity  []model.Transaction
}

// Diagnostics counts transactions left out of some views.
type Diagnostics struct {
	Undated        int // excluded from every view
	InvalidAmounts int // excluded from monthly spending and balance history
}

// Compute derives all views from txns. txns is not modified. The result
// never contains nil collections.
func Compute(txns []model.Transaction, opts Options) (Views, Diagnostics) {
	limit := opts.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var diag Diagnostics
	for _, t := range txns {
		if !t.Dated() {
			diag.Undated++
			continue
		}
		if t.AmountInvalid {
			diag.InvalidAmounts++
		}
	}

	sorted := Chronological(txns)
	return Views{
		MonthlySpending: monthlySpending(sorted),
		BalanceHistory:  balanceHistory(sorted),
		RecentActivity:  recentActivity(sorted, limit),
	}, diag
}

// Chronological returns the dated transactions sorted by date. Equal dates
// keep their input order.
func Chronological(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Dated() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

func monthlySpending(sorted []model.Transaction) model.MonthlySpending {
	ms := make(model.MonthlySpending)
	for _, t := range sorted {
		if t.AmountInvalid {
			continue
		}
		// every dated row opens its category, inflows at zero
		spent := decimal.Zero
		if t.IsOutflow() {
			spent = t.Amount.Abs()
		}
		ms.Add(t.Month(), t.Category, spent)
	}
	return ms
}

func balanceHistory(sorted []model.Transaction) []model.BalancePoint {
	points := make([]model.BalancePoint, 0, len(sorted))
	balance := decimal.Zero
	for _, t := range sorted {
		if t.AmountInvalid {
			continue
		}
		balance = balance.Add(t.Amount)
		points = append(points, model.BalancePoint{
			Date:    t.Date,
			Balance: balance.StringFixed(2),
		})
	}
	return points
}

func recentActivity(sorted []model.Transaction, limit int) []model.Transaction {
	start := len(sorted) - limit
	if start < 0 {
		start = 0
	}
	tail := sorted[start:]
	out := make([]model.Transaction, len(tail))
	for i, t := range tail {
		out[len(tail)-1-i] = t
	}
	return out
}
