package commands

import (
	"context"
	"fmt"

	"github.com/cleared-dev/spendboard/internal/aggregate"
	"github.com/cleared-dev/spendboard/internal/model"
	"github.com/cleared-dev/spendboard/internal/store"
)

// storedDocument is the decoded content of the owned keys.
type storedDocument struct {
	doc          store.Document
	cards        []model.Card
	transactions []model.Transaction
	views        aggregate.Views
}

func loadStoredDocument(ctx context.Context, st *store.FileStore) (*storedDocument, error) {
	doc, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := doc[store.KeyTransactions]; !ok {
		return nil, fmt.Errorf("%s has no transactions; run convert first", st.Path())
	}

	sd := &storedDocument{doc: doc}
	targets := []struct {
		key string
		dst any
	}{
		{store.KeyCards, &sd.cards},
		{store.KeyTransactions, &sd.transactions},
		{store.KeyMonthlySpending, &sd.views.MonthlySpending},
		{store.KeyBalanceHistory, &sd.views.BalanceHistory},
		{store.KeyRecentActivity, &sd.views.RecentActivity},
	}
	for _, t := range targets {
		if _, err := doc.Get(t.key, t.dst); err != nil {
			return nil, err
		}
	}
	return sd, nil
}
