// Package categorize assigns spending categories to statement rows by
// first-match keyword lookup with a transaction-type fallback.
package categorize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Fallback categories, used when no keyword matches.
const (
	CategoryIncome         = "Income"
	CategoryBillPayment    = "Bill Payment"
	CategoryBankFee        = "Bank Fee"
	CategoryCashWithdrawal = "Cash Withdrawal"
	CategoryShopping       = "Shopping"
	CategoryMiscellaneous  = "Miscellaneous"
)

// Transaction type labels recognized by the fallback (case-insensitive).
const (
	TypeCredit = "Credit"
	TypeDebit  = "Debit"
	TypeFee    = "Fee"
	TypeATM    = "ATM"
	TypePOS    = "POS"
)

// Result explains a classification.
type Result struct {
	Category string
	Keyword  string // matched keyword, empty on fallback
	Fallback bool
}

// Classifier is an immutable ordered keyword table. It is safe for
// concurrent use.
type Classifier struct {
	rules []Rule // keywords uppercased
}

// New returns a Classifier over rules. Order is preserved: when several
// keywords match, the earliest rule wins.
func New(rules []Rule) *Classifier {
	own := make([]Rule, len(rules))
	for i, r := range rules {
		own[i] = Rule{Keyword: strings.ToUpper(r.Keyword), Category: r.Category}
	}
	return &Classifier{rules: own}
}

// NewDefault returns a Classifier over the built-in table.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Rules returns a copy of the table in match order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the category for a transaction.
func (c *Classifier) Classify(description, txType string, amount decimal.Decimal) string {
	return c.Match(description, txType, amount).Category
}

// Match classifies and reports which rule decided.
func (c *Classifier) Match(description, txType string, amount decimal.Decimal) Result {
	upper := strings.ToUpper(description)
	for _, r := range c.rules {
		if strings.Contains(upper, r.Keyword) {
			return Result{Category: r.Category, Keyword: r.Keyword}
		}
	}
	return Result{Category: Fallback(txType, amount), Fallback: true}
}

// Fallback picks a category from the transaction type and amount sign.
func Fallback(txType string, amount decimal.Decimal) string {
	switch {
	case strings.EqualFold(txType, TypeCredit) && amount.IsPositive():
		return CategoryIncome
	case strings.EqualFold(txType, TypeDebit) && amount.IsNegative():
		return CategoryBillPayment
	case strings.EqualFold(txType, TypeFee):
		return CategoryBankFee
	case strings.EqualFold(txType, TypeATM):
		return CategoryCashWithdrawal
	case strings.EqualFold(txType, TypePOS) && amount.IsNegative():
		return CategoryShopping
	default:
		return CategoryMiscellaneous
	}
}
