// Package cards builds the card records shown on the dashboard, either the
// single synthetic card a statement conversion attaches its transactions to
// or cards imported from a card-list CSV.
package cards

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cleared-dev/spendboard/internal/importer"
	"github.com/cleared-dev/spendboard/internal/logger"
	"github.com/cleared-dev/spendboard/internal/model"
)

// ISOLayout is the timestamp format of card expiries.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// SyntheticID is the ID of the card statement transactions reference.
const SyntheticID = "1"

// Template describes the synthetic card.
type Template struct {
	Type         string
	HolderName   string
	MaskedNumber string
	ValidYears   int
}

// DefaultTemplate is used when nothing is configured.
func DefaultTemplate() Template {
	return Template{
		Type:         "Debit",
		HolderName:   "Account Holder",
		MaskedNumber: "XXXX XXXX XXXX XXXX",
		ValidYears:   3,
	}
}

// Synthetic returns the card a conversion run attaches every transaction
// to. Its expiry is now plus tpl.ValidYears, in UTC.
func Synthetic(tpl Template, now time.Time) model.Card {
	years := tpl.ValidYears
	if years <= 0 {
		years = DefaultTemplate().ValidYears
	}
	return model.Card{
		ID:           SyntheticID,
		Type:         tpl.Type,
		HolderName:   tpl.HolderName,
		MaskedNumber: tpl.MaskedNumber,
		Expiry:       now.UTC().AddDate(years, 0, 0).Format(ISOLayout),
	}
}

type column int

const (
	colIgnore column = iota
	colType
	colHolder
	colNumber
	colExpiry
)

// classifyHeader maps a header by substring. Later checks override
// earlier ones, so "Expiry Date" is an expiry and "Card Number" a number.
func classifyHeader(h string) column {
	h = strings.ToLower(h)
	col := colIgnore
	if strings.Contains(h, "type") {
		col = colType
	}
	if strings.Contains(h, "name") || strings.Contains(h, "holder") {
		col = colHolder
	}
	if strings.Contains(h, "number") {
		col = colNumber
	}
	for _, k := range []string{"expiry", "date", "valid", "expires"} {
		if strings.Contains(h, k) {
			col = colExpiry
		}
	}
	return col
}

// ParseCSV reads a card list. Columns are recognized by header keywords;
// card numbers are masked to their last four digits and MM/YY expiries
// become ISO timestamps. Rows whose field count differs from the header are
// skipped with a warning.
func ParseCSV(ctx context.Context, r io.Reader) ([]model.Card, error) {
	log := logger.FromContext(ctx)
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		return nil, importer.ErrNoHeader
	}
	headers := importer.ParseLine(strings.TrimPrefix(strings.TrimRight(sc.Text(), "\r"), "\ufeff"))
	cols := make([]column, len(headers))
	for i, h := range headers {
		cols[i] = classifyHeader(h)
	}

	out := []model.Card{}
	lineNo := 1
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := importer.ParseLine(line)
		if len(values) != len(headers) {
			log.Warn().Int("line", lineNo).Str("content", line).Msg("skipping card row with incorrect number of values")
			continue
		}

		card := model.Card{ID: strconv.Itoa(len(out) + 1)}
		for i, v := range values {
			switch cols[i] {
			case colType:
				card.Type = v
			case colHolder:
				card.HolderName = v
			case colNumber:
				card.MaskedNumber = MaskNumber(v)
			case colExpiry:
				expiry, err := NormalizeExpiry(v)
				if err != nil {
					log.Warn().Int("line", lineNo).Str("value", v).Err(err).Msg("could not parse card expiry; keeping it as is")
					expiry = v
				}
				card.Expiry = expiry
			}
		}
		out = append(out, card)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", lineNo+1, err)
	}
	return out, nil
}

// MaskNumber keeps only the last four digits of a card number. Values
// with fewer than four digits are returned unchanged.
func MaskNumber(raw string) string {
	var digits []rune
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return raw
	}
	return "XXXX XXXX XXXX " + string(digits[len(digits)-4:])
}

// NormalizeExpiry converts MM/YY, MM/YYYY, MM-YY or MM-YYYY to an ISO
// timestamp on the 28th of that month. Values already containing a "T"
// are taken to be ISO and returned unchanged.
func NormalizeExpiry(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "T") {
		return raw, nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) < 2 {
		return "", fmt.Errorf("expiry %q: expected MM/YY", raw)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("expiry %q: bad month", raw)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("expiry %q: year: %w", raw, err)
	}
	if year < 100 {
		year += 2000
	}
	return time.Date(year, time.Month(month), 28, 0, 0, 0, 0, time.UTC).Format(ISOLayout), nil
}
