package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrEmptyAmount is returned for a blank amount field.
var ErrEmptyAmount = errors.New("empty amount")

// NormalizeDate converts MM/DD/YYYY or MM/DD/YY to YYYY-MM-DD.
// Two-digit years are read as 20YY; any other year width is rejected.
func NormalizeDate(raw string) (string, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("date %q: expected MM/DD/YYYY", raw)
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("date %q: month: %w", raw, err)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("date %q: day: %w", raw, err)
	}
	yy := parts[2]
	if (len(yy) != 2 && len(yy) != 4) || strings.TrimLeft(yy, "0123456789") != "" {
		return "", fmt.Errorf("date %q: year must be 2 or 4 digits", raw)
	}
	year, err := strconv.Atoi(yy)
	if err != nil {
		return "", fmt.Errorf("date %q: year: %w", raw, err)
	}
	if len(yy) == 2 {
		year += 2000
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", fmt.Errorf("date %q: not a calendar date", raw)
	}
	return t.Format("2006-01-02"), nil
}

// NormalizeAmount parses a statement amount. A currency symbol and
// thousands separators are dropped and "(12.34)" means -12.34.
func NormalizeAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSpace(s[1:len(s)-1])
	}
	if s == "" || s == "-" {
		return decimal.Decimal{}, fmt.Errorf("amount %q: %w", raw, ErrEmptyAmount)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("amount %q: %w", raw, err)
	}
	return amount, nil
}
