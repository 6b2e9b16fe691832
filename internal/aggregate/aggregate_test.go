package aggregate

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/spendboard/internal/model"
)

func txn(id, date, category, amount string) model.Transaction {
	return model.Transaction{
		ID:       id,
		Date:     date,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
	}
}

func sample() []model.Transaction {
	return []model.Transaction{
		txn("1", "2024-01-05", "Coffee", "-4.50"),
		txn("2", "2024-01-06", "Income", "1234.56"),
		txn("3", "2024-02-01", "Subscription", "-15.49"),
		txn("4", "2024-01-10", "Grocery", "-45.00"),
		txn("5", "2024-01-05", "Coffee", "-3.25"),
		txn("6", "2024-02-02", "Coffee", "0"),
	}
}

func TestCompute_Empty(t *testing.T) {
	v, d := Compute(nil, Options{})
	assert.NotNil(t, v.MonthlySpending)
	assert.Empty(t, v.MonthlySpending)
	assert.NotNil(t, v.BalanceHistory)
	assert.Empty(t, v.BalanceHistory)
	assert.NotNil(t, v.RecentActivity)
	assert.Empty(t, v.RecentActivity)
	assert.Equal(t, Diagnostics{}, d)
}

func TestCompute_BalanceHistory(t *testing.T) {
	v, _ := Compute(sample(), Options{})

	want := []model.BalancePoint{
		{Date: "2024-01-05", Balance: "-4.50"},
		{Date: "2024-01-05", Balance: "-7.75"},
		{Date: "2024-01-06", Balance: "1226.81"},
		{Date: "2024-01-10", Balance: "1181.81"},
		{Date: "2024-02-01", Balance: "1166.32"},
		{Date: "2024-02-02", Balance: "1166.32"},
	}
	assert.Equal(t, want, v.BalanceHistory)
}

func TestCompute_BalanceInvariant(t *testing.T) {
	txns := sample()
	v, _ := Compute(txns, Options{})
	sorted := Chronological(txns)
	require.Len(t, v.BalanceHistory, len(sorted))

	sum := decimal.Zero
	for i, tx := range sorted {
		sum = sum.Add(tx.Amount)
		assert.Equal(t, sum.StringFixed(2), v.BalanceHistory[i].Balance, "point %d", i)
	}
}

func TestCompute_MonthlySpending(t *testing.T) {
	v, _ := Compute(sample(), Options{})

	require.Len(t, v.MonthlySpending, 2)
	jan := v.MonthlySpending["2024-01"]
	assert.Equal(t, "7.75", jan["Coffee"].StringFixed(2))
	assert.Equal(t, "45.00", jan["Grocery"].StringFixed(2))
	assert.Equal(t, "0.00", jan["Income"].StringFixed(2), "inflows open their category at zero")

	feb := v.MonthlySpending["2024-02"]
	assert.Equal(t, "15.49", feb["Subscription"].StringFixed(2))
	assert.Equal(t, "0.00", feb["Coffee"].StringFixed(2))
}

func TestCompute_MonthlySpendingIncomeEntry(t *testing.T) {
	v, _ := Compute([]model.Transaction{
		txn("1", "2024-01-05", "Coffee", "-4.50"),
		txn("2", "2024-01-06", "Income", "100"),
	}, Options{})

	data, err := json.Marshal(v.MonthlySpending)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2024-01":{"Coffee":4.50,"Income":0}}`, string(data))
}

func TestCompute_MonthlySpendInvariant(t *testing.T) {
	txns := sample()
	v, _ := Compute(txns, Options{})

	for month := range v.MonthlySpending {
		want := decimal.Zero
		for _, tx := range txns {
			if tx.Month() == month && tx.Amount.IsNegative() {
				want = want.Add(tx.Amount.Abs())
			}
		}
		assert.True(t, want.Equal(v.MonthlySpending.Total(month)), "month %s", month)
	}
}

func TestCompute_MonthlySpendIgnoresInputOrder(t *testing.T) {
	txns := sample()
	reversed := make([]model.Transaction, len(txns))
	for i, tx := range txns {
		reversed[len(txns)-1-i] = tx
	}
	a, _ := Compute(txns, Options{})
	b, _ := Compute(reversed, Options{})
	assert.Equal(t, a.MonthlySpending, b.MonthlySpending)
}

func TestCompute_RecentActivity(t *testing.T) {
	v, _ := Compute(sample(), Options{})
	ids := make([]string, len(v.RecentActivity))
	for i, tx := range v.RecentActivity {
		ids[i] = tx.ID
	}
	assert.Equal(t, []string{"6", "3", "4", "2", "5", "1"}, ids)
}

func TestCompute_RecentActivityBound(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 30; i++ {
		txns = append(txns, txn(fmt.Sprint(i), fmt.Sprintf("2024-03-%02d", i+1), "Coffee", "-1"))
	}

	v, _ := Compute(txns, Options{})
	require.Len(t, v.RecentActivity, DefaultRecentLimit)
	assert.Equal(t, "2024-03-30", v.RecentActivity[0].Date)
	assert.Equal(t, "2024-03-11", v.RecentActivity[19].Date)

	v, _ = Compute(txns[:5], Options{RecentLimit: 3})
	assert.Len(t, v.RecentActivity, 3)
}

func TestCompute_InvalidRows(t *testing.T) {
	undated := txn("7", "", "Shopping", "-22.10")
	undated.DateInvalid = true
	noAmount := txn("8", "2024-02-05", "Shopping", "0")
	noAmount.AmountInvalid = true

	txns := append(sample(), undated, noAmount)
	v, d := Compute(txns, Options{})

	assert.Equal(t, Diagnostics{Undated: 1, InvalidAmounts: 1}, d)
	assert.Len(t, v.BalanceHistory, 6)
	assert.NotContains(t, v.MonthlySpending["2024-02"], "Shopping")
	assert.NotContains(t, v.MonthlySpending, "")

	require.Len(t, v.RecentActivity, 7)
	assert.Equal(t, "8", v.RecentActivity[0].ID)
	for _, tx := range v.RecentActivity {
		assert.NotEqual(t, "7", tx.ID)
	}
}

func TestChronological_Stable(t *testing.T) {
	sorted := Chronological(sample())
	assert.Equal(t, "1", sorted[0].ID)
	assert.Equal(t, "5", sorted[1].ID)
}

func TestDiff(t *testing.T) {
	a, _ := Compute(sample(), Options{})
	b, _ := Compute(sample(), Options{})
	assert.Empty(t, Diff(a, b))

	b.BalanceHistory = b.BalanceHistory[1:]
	b.MonthlySpending.Add("2024-03", "Coffee", decimal.NewFromInt(1))
	assert.Equal(t, []string{"monthlySpending", "balanceHistory"}, Diff(a, b))
}
