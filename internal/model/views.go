package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MonthlySpending maps a YYYY-MM key to category -> absolute outflow.
type MonthlySpending map[string]map[string]decimal.Decimal

// Add accumulates amount under month/category, creating both lazily.
func (m MonthlySpending) Add(month, category string, amount decimal.Decimal) {
	bucket := m.Bucket(month)
	bucket[category] = bucket[category].Add(amount)
}

// Bucket returns the category map for month, creating it if absent.
func (m MonthlySpending) Bucket(month string) map[string]decimal.Decimal {
	bucket, ok := m[month]
	if !ok {
		bucket = make(map[string]decimal.Decimal)
		m[month] = bucket
	}
	return bucket
}

// Total returns the sum over all categories of month.
func (m MonthlySpending) Total(month string) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m[month] {
		total = total.Add(v)
	}
	return total
}

// MarshalJSON writes totals as JSON numbers with two decimals.
func (m MonthlySpending) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]json.Number, len(m))
	for month, cats := range m {
		row := make(map[string]json.Number, len(cats))
		for cat, v := range cats {
			row[cat] = json.Number(v.StringFixed(2))
		}
		out[month] = row
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads totals written by MarshalJSON.
func (m *MonthlySpending) UnmarshalJSON(data []byte) error {
	var in map[string]map[string]json.Number
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(MonthlySpending, len(in))
	for month, cats := range in {
		bucket := out.Bucket(month)
		for cat, n := range cats {
			v, err := decimal.NewFromString(n.String())
			if err != nil {
				return fmt.Errorf("monthly spending %s/%s: %w", month, cat, err)
			}
			bucket[cat] = v
		}
	}
	*m = out
	return nil
}

// BalancePoint is the running balance after one transaction.
type BalancePoint struct {
	Date    string `json:"date"`
	Balance string `json:"balance"` // two decimals, e.g. "-12.50"
}
