// Package audit checks the per-transaction invariants of a stored
// document, complementing the view recomputation done by verify.
package audit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/spendboard/internal/importer"
	"github.com/cleared-dev/spendboard/internal/model"
)

// Check identifies one invariant.
type Check int

const (
	CheckUniqueID Check = iota + 1
	CheckDebitFlag
	CheckDate
	CheckCard
	CheckPrecision
	CheckCategory
)

func (c Check) String() string {
	switch c {
	case CheckUniqueID:
		return "unique-id"
	case CheckDebitFlag:
		return "debit-flag"
	case CheckDate:
		return "date"
	case CheckCard:
		return "card"
	case CheckPrecision:
		return "precision"
	case CheckCategory:
		return "category"
	default:
		return fmt.Sprintf("check-%d", int(c))
	}
}

// Advisory reports whether a failed check is informational only. Extra
// decimal places come straight from the statement, so they are legal input
// that the dashboard merely rounds for display.
func (c Check) Advisory() bool {
	return c == CheckPrecision
}

// Problem describes a single invariant violation.
type Problem struct {
	Check         Check
	TransactionID string
	Description   string
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s [%s]: %s", p.Check, p.TransactionID, p.Description)
}

// CardChecker tests whether a card ID exists in the document.
type CardChecker interface {
	Exists(id string) bool
}

// CardSet is a CardChecker over a list of cards.
type CardSet map[string]bool

// NewCardSet indexes cards by ID.
func NewCardSet(cards []model.Card) CardSet {
	s := make(CardSet, len(cards))
	for _, c := range cards {
		s[c.ID] = true
	}
	return s
}

// Exists implements CardChecker.
func (s CardSet) Exists(id string) bool {
	return s[id]
}

var hundred = decimal.NewFromInt(100)

// Transactions checks every transaction and returns the violations in
// input order.
func Transactions(txns []model.Transaction, cards CardChecker) []Problem {
	var probs []Problem
	add := func(c Check, id, format string, args ...any) {
		probs = append(probs, Problem{Check: c, TransactionID: id, Description: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]bool, len(txns))
	for _, t := range txns {
		if seen[t.ID] {
			add(CheckUniqueID, t.ID, "duplicate transaction id")
		}
		seen[t.ID] = true

		if t.IsDebit != t.IsOutflow() {
			add(CheckDebitFlag, t.ID, "isDebit is %t but amount is %s", t.IsDebit, t.Amount.String())
		}

		switch {
		case t.DateInvalid && t.Date != "":
			add(CheckDate, t.ID, "date %q set on a transaction flagged dateInvalid", t.Date)
		case !t.DateInvalid:
			want, err := importer.NormalizeDate(t.PostedDate)
			if err != nil {
				add(CheckDate, t.ID, "posted date %q does not parse: %v", t.PostedDate, err)
			} else if want != t.Date {
				add(CheckDate, t.ID, "date %q does not match posted date %q", t.Date, t.PostedDate)
			}
		}

		if !cards.Exists(t.CardID) {
			add(CheckCard, t.ID, "unknown card %q", t.CardID)
		}

		if !t.AmountInvalid && !t.Amount.Mul(hundred).Equal(t.Amount.Mul(hundred).Floor()) {
			add(CheckPrecision, t.ID, "amount %s has more than 2 decimal places", t.Amount.String())
		}

		if t.Category == "" {
			add(CheckCategory, t.ID, "no category")
		}
	}
	return probs
}

// Split separates problems that fail verification from advisory ones.
func Split(probs []Problem) (failures, warnings []Problem) {
	for _, p := range probs {
		if p.Check.Advisory() {
			warnings = append(warnings, p)
		} else {
			failures = append(failures, p)
		}
	}
	return failures, warnings
}
