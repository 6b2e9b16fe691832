package importer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/cleared-dev/spendboard/internal/categorize"
	"github.com/cleared-dev/spendboard/internal/id"
	"github.com/cleared-dev/spendboard/internal/model"
)

// FieldError records one field that failed normalization. The transaction
// is still built; the field is flagged invalid.
type FieldError struct {
	Field Field
	Value string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field.String() + ": " + e.Err.Error()
}

// Builder turns resolved CSV rows into canonical transactions for one run.
type Builder struct {
	classifier *categorize.Classifier
	ids        id.Allocator
	cardID     string
	merchants  map[string]struct{}
}

// NewBuilder creates a Builder. Every transaction it builds references cardID.
func NewBuilder(classifier *categorize.Classifier, ids id.Allocator, cardID string) *Builder {
	return &Builder{
		classifier: classifier,
		ids:        ids,
		cardID:     cardID,
		merchants:  make(map[string]struct{}),
	}
}

// Build creates one transaction from a row whose values line up with
// fields. raw is the original line, used by content-derived IDs.
func (b *Builder) Build(fields []Field, values []string, raw string) (model.Transaction, []FieldError) {
	txn := model.Transaction{
		ID:            b.ids.Assign(raw),
		CardID:        b.cardID,
		DateInvalid:   true,
		AmountInvalid: true,
	}

	var errs []FieldError
	for i, f := range fields {
		if i >= len(values) {
			break
		}
		v := values[i]
		switch f {
		case FieldPostedDate:
			txn.PostedDate = v
			date, err := NormalizeDate(v)
			if err != nil {
				errs = append(errs, FieldError{Field: f, Value: v, Err: err})
				txn.Date = ""
				txn.DateInvalid = true
				continue
			}
			txn.Date = date
			txn.DateInvalid = false
		case FieldTransactionDate:
			txn.TransactionDate = v
		case FieldType:
			txn.Type = v
		case FieldDescription:
			txn.Description = v
			b.trackMerchant(v)
		case FieldAmount:
			amount, err := NormalizeAmount(v)
			if err != nil {
				errs = append(errs, FieldError{Field: f, Value: v, Err: err})
				txn.AmountInvalid = true
				continue
			}
			txn.Amount = amount
			txn.AmountInvalid = false
		}
	}

	txn.IsDebit = txn.IsOutflow()
	txn.Category = b.classifier.Classify(txn.Description, txn.Type, txn.Amount)
	return txn, errs
}

// Merchants returns the distinct merchant tokens seen so far, sorted.
func (b *Builder) Merchants() []string {
	out := make([]string, 0, len(b.merchants))
	for m := range b.merchants {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (b *Builder) trackMerchant(description string) {
	if m := MerchantToken(description); m != "" {
		b.merchants[m] = struct{}{}
	}
}

// MerchantToken returns the first word of description with punctuation
// removed, or "" when that leaves two characters or fewer.
func MerchantToken(description string) string {
	words := strings.Fields(description)
	if len(words) == 0 {
		return ""
	}
	token := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, words[0])
	if len(token) <= 2 {
		return ""
	}
	return token
}
