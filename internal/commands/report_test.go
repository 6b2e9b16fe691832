package commands_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	_, cfg := newProject(t)
	out, err := runSpendboard(t, "convert", "--config", cfg, "--no-commit")
	require.NoError(t, err, out)

	out, err = runSpendboard(t, "report", "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Monthly summary")
	assert.Contains(t, out, "2024-01")
	assert.Contains(t, out, "1126.86")
	assert.Contains(t, out, "Top categories for 2024-02")
	assert.Contains(t, out, "Cash Withdrawal")
	assert.Contains(t, out, "Category statistics")
}

func TestReport_NoDocument(t *testing.T) {
	dir := t.TempDir()
	out, err := runSpendboard(t, "report", "--config", filepath.Join(dir, "spendboard.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "run convert first")
}

func TestVerify(t *testing.T) {
	dir, cfg := newProject(t)
	out, err := runSpendboard(t, "convert", "--config", cfg, "--no-commit")
	require.NoError(t, err, out)

	out, err = runSpendboard(t, "verify", "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "10 transactions")
	assert.Contains(t, out, "8 balance history points")
	assert.Contains(t, out, "OK")

	path := filepath.Join(dir, "data", "db.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	doc["balanceHistory"] = json.RawMessage(`[]`)
	data, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err = runSpendboard(t, "verify", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, out, "balanceHistory")
}

func TestVerify_CustomRecentLimit(t *testing.T) {
	dir, cfg := newProject(t)
	out, err := runSpendboard(t, "convert", "--config", cfg, "--no-commit", "--recent-limit", "3")
	require.NoError(t, err, out)

	out, err = runSpendboard(t, "verify", "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "3 recent activity items")
	assert.Contains(t, out, "OK")

	out, err = runSpendboard(t, "verify", "--config", cfg, "--recent-limit", "3")
	require.NoError(t, err, out)

	out, err = runSpendboard(t, "verify", "--config", cfg, "--recent-limit", "5")
	require.Error(t, err, out)
	assert.Contains(t, out, "recentActivity")

	// a truncated feed still has to hold the newest transactions
	path := filepath.Join(dir, "data", "db.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	var recent []json.RawMessage
	require.NoError(t, json.Unmarshal(doc["recentActivity"], &recent))
	doc["recentActivity"], err = json.Marshal(recent[1:])
	require.NoError(t, err)
	data, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err = runSpendboard(t, "verify", "--config", cfg)
	require.Error(t, err, out)
	assert.Contains(t, out, "recentActivity")
}

func TestVerify_ExtraDecimalsWarnOnly(t *testing.T) {
	dir, cfg := newProject(t)
	csv := "Posted Date,Transaction Date,Transaction Type,Description,Amount\n" +
		"03/01/2024,03/01/2024,Debit,SHELL OIL 5744,-$40.125\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "statements.csv"), []byte(csv), 0o644))

	out, err := runSpendboard(t, "convert", "--config", cfg, "--no-commit")
	require.NoError(t, err, out)

	out, err = runSpendboard(t, "verify", "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "WARN: precision [1]")
	assert.Contains(t, out, "OK")
}

func TestCardsImport(t *testing.T) {
	dir, cfg := newProject(t)
	out, err := runSpendboard(t, "convert", "--config", cfg, "--no-commit")
	require.NoError(t, err, out)

	out, err = runSpendboard(t, "cards", "import", filepath.Join("..", "..", "testdata", "cards.csv"), "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 2 cards")
	assert.Contains(t, out, "XXXX XXXX XXXX 1234")

	data, err := os.ReadFile(filepath.Join(dir, "data", "db.json"))
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, string(doc["cards"]), "Sam Rivera")
	assert.NotContains(t, string(doc["cards"]), "Test Holder")
	assert.Contains(t, string(doc["transactions"]), "STARBUCKS")
}
