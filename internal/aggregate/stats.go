package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/spendboard/internal/model"
)

// CategoryStat is the number of transactions in a category and the sum of
// their absolute amounts.
type CategoryStat struct {
	Category string
	Count    int
	Total    decimal.Decimal
}

// CategoryStats groups every transaction by category, sorted by total
// descending then name. Invalid amounts are counted but add nothing.
func CategoryStats(txns []model.Transaction) []CategoryStat {
	byName := make(map[string]*CategoryStat)
	for _, t := range txns {
		s, ok := byName[t.Category]
		if !ok {
			s = &CategoryStat{Category: t.Category, Total: decimal.Zero}
			byName[t.Category] = s
		}
		s.Count++
		if !t.AmountInvalid {
			s.Total = s.Total.Add(t.Amount.Abs())
		}
	}

	out := make([]CategoryStat, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthSummary is the cash flow of one month.
type MonthSummary struct {
	Month  string
	Income decimal.Decimal
	Spend  decimal.Decimal // absolute
	Net    decimal.Decimal // Income - Spend
}

// MonthlySummary returns income, spend and net per month, oldest first.
// Undated transactions and invalid amounts are left out.
func MonthlySummary(txns []model.Transaction) []MonthSummary {
	byMonth := make(map[string]*MonthSummary)
	for _, t := range txns {
		if !t.Dated() || t.AmountInvalid {
			continue
		}
		m := t.Month()
		s, ok := byMonth[m]
		if !ok {
			s = &MonthSummary{Month: m, Income: decimal.Zero, Spend: decimal.Zero}
			byMonth[m] = s
		}
		if t.Amount.IsNegative() {
			s.Spend = s.Spend.Add(t.Amount.Abs())
		} else {
			s.Income = s.Income.Add(t.Amount)
		}
	}

	out := make([]MonthSummary, 0, len(byMonth))
	for _, s := range byMonth {
		s.Net = s.Income.Sub(s.Spend)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// CategoryTotal is one category's spend within a month.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// TopCategories returns the latest month of ms and its n largest
// categories, largest first. It returns "" and nil when ms is empty.
func TopCategories(ms model.MonthlySpending, n int) (string, []CategoryTotal) {
	latest := ""
	for m := range ms {
		if m > latest {
			latest = m
		}
	}
	if latest == "" {
		return "", nil
	}

	out := make([]CategoryTotal, 0, len(ms[latest]))
	for cat, amt := range ms[latest] {
		out = append(out, CategoryTotal{Category: cat, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return latest, out
}
