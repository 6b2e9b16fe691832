// Package store reads and writes the dashboard's JSON document. The
// document is a flat object of top-level collections; it is always read and
// written whole.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cleared-dev/spendboard/internal/aggregate"
	"github.com/cleared-dev/spendboard/internal/logger"
	"github.com/cleared-dev/spendboard/internal/model"
)

// Top-level keys written by a conversion.
const (
	KeyCards           = "cards"
	KeyTransactions    = "transactions"
	KeyMonthlySpending = "monthlySpending"
	KeyBalanceHistory  = "balanceHistory"
	KeyRecentActivity  = "recentActivity"
)

// OwnedKeys are the keys a conversion overwrites. Anything else in the
// document belongs to someone else and is preserved.
var OwnedKeys = []string{KeyCards, KeyTransactions, KeyMonthlySpending, KeyBalanceHistory, KeyRecentActivity}

// Document is the persisted JSON object, key -> raw value.
type Document map[string]json.RawMessage

// Set encodes v under key.
func (d Document) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	d[key] = raw
	return nil
}

// Get decodes the value under key into v. It reports false when the key is
// absent.
func (d Document) Get(key string, v any) (bool, error) {
	raw, ok := d[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Keys returns the top-level keys, sorted.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Collections is everything one conversion owns.
type Collections struct {
	Cards        []model.Card
	Transactions []model.Transaction
	Views        aggregate.Views
}

// Merge overwrites the owned keys of d with c, leaving other keys alone.
func (d Document) Merge(c Collections) error {
	cards := c.Cards
	if cards == nil {
		cards = []model.Card{}
	}
	txns := c.Transactions
	if txns == nil {
		txns = []model.Transaction{}
	}
	views := c.Views
	if views.MonthlySpending == nil {
		views.MonthlySpending = model.MonthlySpending{}
	}
	if views.BalanceHistory == nil {
		views.BalanceHistory = []model.BalancePoint{}
	}
	if views.RecentActivity == nil {
		views.RecentActivity = []model.Transaction{}
	}

	values := map[string]any{
		KeyCards:           cards,
		KeyTransactions:    txns,
		KeyMonthlySpending: views.MonthlySpending,
		KeyBalanceHistory:  views.BalanceHistory,
		KeyRecentActivity:  views.RecentActivity,
	}
	for _, key := range OwnedKeys {
		if err := d.Set(key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

// Store loads and saves a Document.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// FileStore keeps the document in one JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document. A missing file yields an empty document. A file
// that is not a JSON object also yields an empty document, with a warning;
// its contents are replaced on the next Save.
func (s *FileStore) Load(ctx context.Context) (Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	log := logger.FromContext(ctx)
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("document is not valid JSON; starting empty")
		return Document{}, nil
	}
	if doc == nil {
		log.Warn().Str("path", s.path).Msg("document is null; starting empty")
		return Document{}, nil
	}
	return doc, nil
}

// Save writes the whole document atomically: a temp file in the same
// directory is renamed over the old one.
func (s *FileStore) Save(_ context.Context, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
