package cards

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/spendboard/internal/importer"
)

func TestSynthetic(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.FixedZone("EST", -5*3600))
	card := Synthetic(Template{Type: "Debit", HolderName: "Jordan Lee", MaskedNumber: "1238 XXXX XXXX XXXX", ValidYears: 3}, now)

	assert.Equal(t, "1", card.ID)
	assert.Equal(t, "Debit", card.Type)
	assert.Equal(t, "Jordan Lee", card.HolderName)
	assert.Equal(t, "1238 XXXX XXXX XXXX", card.MaskedNumber)
	assert.Equal(t, "2027-03-15T15:30:00.000Z", card.Expiry)
}

func TestSynthetic_DefaultYears(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	card := Synthetic(Template{}, now)
	assert.Equal(t, "2027-01-01T00:00:00.000Z", card.Expiry)
}

func TestParseCSV(t *testing.T) {
	f, err := os.Open("../../testdata/cards.csv")
	require.NoError(t, err)
	defer f.Close()

	got, err := ParseCSV(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "Visa", got[0].Type)
	assert.Equal(t, "Jordan Lee", got[0].HolderName)
	assert.Equal(t, "XXXX XXXX XXXX 1234", got[0].MaskedNumber)
	assert.Equal(t, "2027-09-28T00:00:00.000Z", got[0].Expiry)

	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, "XXXX XXXX XXXX 0004", got[1].MaskedNumber)
	assert.Equal(t, "2028-11-28T00:00:00.000Z", got[1].Expiry)
}

func TestParseCSV_SkipsBadRowsAndKeepsUnparsedExpiry(t *testing.T) {
	input := "Name,Expiry Date,Notes\nA,soon,x\nbroken\n\nB,2026-01-01T00:00:00.000Z,y\n"
	got, err := ParseCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "A", got[0].HolderName)
	assert.Equal(t, "soon", got[0].Expiry)
	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, "2026-01-01T00:00:00.000Z", got[1].Expiry)
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, importer.ErrNoHeader)
}

func TestClassifyHeader(t *testing.T) {
	tests := map[string]column{
		"Card Type":       colType,
		"Holder":          colHolder,
		"Cardholder Name": colHolder,
		"Card Number":     colNumber,
		"Expiry Date":     colExpiry,
		"Valid Thru":      colExpiry,
		"Notes":           colIgnore,
	}
	for h, want := range tests {
		assert.Equal(t, want, classifyHeader(h), h)
	}
}

func TestMaskNumber(t *testing.T) {
	assert.Equal(t, "XXXX XXXX XXXX 4242", MaskNumber("4242-4242-4242-4242"))
	assert.Equal(t, "12", MaskNumber("12"))
}

func TestNormalizeExpiry(t *testing.T) {
	got, err := NormalizeExpiry("02-2030")
	require.NoError(t, err)
	assert.Equal(t, "2030-02-28T00:00:00.000Z", got)

	_, err = NormalizeExpiry("13/27")
	assert.Error(t, err)
	_, err = NormalizeExpiry("0927")
	assert.Error(t, err)
}
