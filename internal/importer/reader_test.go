package importer

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/spendboard/internal/logger"
)

func readFixture(t *testing.T, path string, layout *Layout) (*Result, string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))
	res, err := Read(ctx, f, layout, newTestBuilder())
	require.NoError(t, err)
	return res, buf.String()
}

func TestRead_Truist(t *testing.T) {
	res, logs := readFixture(t, "../../testdata/truist_statements.csv", TruistLayout())

	assert.Equal(t, []string{"Posted Date", "Transaction Date", "Transaction Type", "Description", "Amount"}, res.Headers)
	assert.Equal(t, Stats{Lines: 12, Blank: 1, Skipped: 1, InvalidDates: 1, InvalidAmounts: 1}, res.Stats)
	require.Len(t, res.Transactions, 10)

	first := res.Transactions[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "2024-01-05", first.Date)
	assert.Equal(t, "-4.50", first.Amount.StringFixed(2))
	assert.Equal(t, "Coffee", first.Category)

	assert.Equal(t, "1234.56", res.Transactions[1].Amount.StringFixed(2))
	assert.Equal(t, "-45.00", res.Transactions[2].Amount.StringFixed(2))
	assert.Equal(t, "Transportation", res.Transactions[3].Category)

	undated := res.Transactions[6]
	assert.Equal(t, "AMAZON MKTPLACE", undated.Description)
	assert.True(t, undated.DateInvalid)
	assert.Equal(t, "Shopping", undated.Category)

	noAmount := res.Transactions[7]
	assert.Equal(t, "TARGET 00012", noAmount.Description)
	assert.True(t, noAmount.AmountInvalid)

	assert.Equal(t, "2024-02-28", res.Transactions[8].Date)
	assert.Equal(t, "Cash Withdrawal", res.Transactions[8].Category)
	assert.Equal(t, "10", res.Transactions[9].ID)

	assert.Contains(t, logs, "skipping line with incorrect number of values")
	assert.Contains(t, logs, `"line":9`)
	assert.Contains(t, logs, `"transaction":"7"`)
}

func TestRead_Chase(t *testing.T) {
	res, _ := readFixture(t, "../../testdata/chase_checking.csv", ChaseLayout())
	require.Len(t, res.Transactions, 4)

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", res.Transactions[0].Description)
	assert.Equal(t, "2025-01-03", res.Transactions[0].Date)
	assert.Equal(t, "ACH_DEBIT", res.Transactions[0].Type)
	assert.Empty(t, res.Transactions[0].TransactionDate)

	assert.Equal(t, "CITY WATER UTILITY, AUSTIN", res.Transactions[2].Description)
	assert.Equal(t, "-62.18", res.Transactions[2].Amount.StringFixed(2))
	assert.Equal(t, "3500.00", res.Transactions[1].Amount.StringFixed(2))
}

func TestRead_BOMAndCRLF(t *testing.T) {
	input := "\ufeffPosted Date,Description,Amount\r\n01/05/2024,STARBUCKS,-4.50\r\n\r\n"
	res, err := Read(context.Background(), strings.NewReader(input), TruistLayout(), newTestBuilder())
	require.NoError(t, err)

	assert.Equal(t, "Posted Date", res.Headers[0])
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "2024-01-05", res.Transactions[0].Date)
	assert.Equal(t, 1, res.Stats.Blank)
}

func TestRead_HeaderOnly(t *testing.T) {
	res, err := Read(context.Background(), strings.NewReader("Posted Date,Description,Amount\n"), TruistLayout(), newTestBuilder())
	require.NoError(t, err)
	assert.NotNil(t, res.Transactions)
	assert.Empty(t, res.Transactions)
}

func TestRead_NoHeader(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader(""), TruistLayout(), newTestBuilder())
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestRead_WarnsOnMissingColumns(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))
	_, err := Read(ctx, strings.NewReader("Date,Memo\n"), TruistLayout(), newTestBuilder())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"field":"amount"`)
}

func TestRead_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Read(ctx, strings.NewReader("Posted Date,Amount\n01/05/2024,-1\n"), TruistLayout(), newTestBuilder())
	assert.ErrorIs(t, err, context.Canceled)
}
