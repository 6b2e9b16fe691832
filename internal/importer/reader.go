package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/spendboard/internal/logger"
	"github.com/cleared-dev/spendboard/internal/model"
)

// ErrNoHeader is returned when the input has no header line.
var ErrNoHeader = errors.New("input has no header row")

const maxLineSize = 1 << 20

// Stats counts what happened to the input lines of one read.
type Stats struct {
	Lines          int // data lines after the header, blank lines included
	Blank          int
	Skipped        int // field count did not match the header
	InvalidDates   int
	InvalidAmounts int
}

// Result is the outcome of reading one statement.
type Result struct {
	Headers      []string
	Transactions []model.Transaction
	Stats        Stats
}

// Read consumes a statement line by line, in file order. Malformed rows
// and fields are logged and counted; only I/O errors, a missing header or
// context cancellation abort the read.
func Read(ctx context.Context, r io.Reader, layout *Layout, b *Builder) (*Result, error) {
	log := logger.FromContext(ctx)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		return nil, ErrNoHeader
	}
	headerLine := strings.TrimPrefix(strings.TrimRight(sc.Text(), "\r"), "\ufeff")
	headers := ParseLine(headerLine)
	fields := layout.Resolve(headers)

	for _, f := range layout.Missing(headers, FieldPostedDate, FieldAmount, FieldDescription) {
		log.Warn().Str("layout", layout.Name).Stringer("field", f).Msg("header has no column for field; every row will lack it")
	}

	res := &Result{Headers: headers, Transactions: []model.Transaction{}}
	lineNo := 1
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++
		res.Stats.Lines++

		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			res.Stats.Blank++
			continue
		}

		values := ParseLine(line)
		if len(values) != len(headers) {
			res.Stats.Skipped++
			log.Warn().
				Int("line", lineNo).
				Int("fields", len(values)).
				Int("expected", len(headers)).
				Str("content", line).
				Msg("skipping line with incorrect number of values")
			continue
		}

		txn, errs := b.Build(fields, values, line)
		for _, fe := range errs {
			log.Warn().
				Int("line", lineNo).
				Str("transaction", txn.ID).
				Stringer("field", fe.Field).
				Str("value", fe.Value).
				Err(fe.Err).
				Msg("field failed normalization")
		}
		if txn.DateInvalid {
			res.Stats.InvalidDates++
		}
		if txn.AmountInvalid {
			res.Stats.InvalidAmounts++
		}
		res.Transactions = append(res.Transactions, txn)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", lineNo+1, err)
	}
	return res, nil
}
