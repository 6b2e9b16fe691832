package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction is one canonical row of a bank statement.
type Transaction struct {
	ID              string
	PostedDate      string // as exported, e.g. "01/05/2024"
	TransactionDate string // as exported
	Date            string // YYYY-MM-DD derived from PostedDate, empty when DateInvalid
	Type            string
	Description     string
	Amount          decimal.Decimal // negative = outflow, positive = inflow
	IsDebit         bool
	Category        string
	CardID          string

	DateInvalid   bool // posted date missing or unparseable
	AmountInvalid bool // amount missing or unparseable; Amount is meaningless
}

// Dated reports whether the transaction has a usable canonical date.
func (t Transaction) Dated() bool {
	return !t.DateInvalid && len(t.Date) >= 7
}

// Month returns the YYYY-MM bucket key, or "" for undated transactions.
func (t Transaction) Month() string {
	if !t.Dated() {
		return ""
	}
	return t.Date[:7]
}

// IsOutflow reports whether the transaction has a valid negative amount.
func (t Transaction) IsOutflow() bool {
	return !t.AmountInvalid && t.Amount.IsNegative()
}

type transactionJSON struct {
	ID              string       `json:"id"`
	PostedDate      string       `json:"postedDate"`
	Date            string       `json:"date"`
	TransactionDate string       `json:"transactionDate"`
	Type            string       `json:"type"`
	Description     string       `json:"description"`
	Amount          *json.Number `json:"amount"`
	IsDebit         bool         `json:"isDebit"`
	Category        string       `json:"category"`
	CardID          string       `json:"cardId"`
	DateInvalid     bool         `json:"dateInvalid,omitempty"`
	AmountInvalid   bool         `json:"amountInvalid,omitempty"`
}

// MarshalJSON writes the amount as a bare JSON number, or null when invalid.
func (t Transaction) MarshalJSON() ([]byte, error) {
	out := transactionJSON{
		ID:              t.ID,
		PostedDate:      t.PostedDate,
		Date:            t.Date,
		TransactionDate: t.TransactionDate,
		Type:            t.Type,
		Description:     t.Description,
		IsDebit:         t.IsDebit,
		Category:        t.Category,
		CardID:          t.CardID,
		DateInvalid:     t.DateInvalid,
		AmountInvalid:   t.AmountInvalid,
	}
	if !t.AmountInvalid {
		n := json.Number(t.Amount.String())
		out.Amount = &n
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a transaction previously written by MarshalJSON.
// A null or absent amount marks the transaction AmountInvalid.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var in transactionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*t = Transaction{
		ID:              in.ID,
		PostedDate:      in.PostedDate,
		Date:            in.Date,
		TransactionDate: in.TransactionDate,
		Type:            in.Type,
		Description:     in.Description,
		IsDebit:         in.IsDebit,
		Category:        in.Category,
		CardID:          in.CardID,
		DateInvalid:     in.DateInvalid,
		AmountInvalid:   in.AmountInvalid || in.Amount == nil,
	}
	if in.Amount != nil && !in.AmountInvalid {
		amount, err := decimal.NewFromString(in.Amount.String())
		if err != nil {
			return fmt.Errorf("transaction %s: parsing amount %q: %w", in.ID, in.Amount.String(), err)
		}
		t.Amount = amount
	}
	return nil
}
