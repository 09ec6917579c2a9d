package store

import (
	"context"

	"stocksim/internal/models"
)

// QuoteStore keeps the last successful provider lookup per symbol so the
// quote view can fall back to a stale price when the provider is down.
type QuoteStore struct {
	db DB
}

func NewQuoteStore(db DB) *QuoteStore {
	return &QuoteStore{db: db}
}

func (s *QuoteStore) Upsert(ctx context.Context, symbol, companyName string, priceMinor int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (symbol, company_name, price_minor, fetched_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (symbol)
		DO UPDATE SET company_name = $2, price_minor = $3, fetched_at = NOW()
	`, symbol, companyName, priceMinor)
	return err
}

func (s *QuoteStore) GetBySymbol(ctx context.Context, symbol string) (models.StoredQuote, error) {
	var quote models.StoredQuote
	err := s.db.GetContext(ctx, &quote, `
		SELECT symbol, company_name, price_minor, fetched_at
		FROM quotes
		WHERE symbol = $1
	`, symbol)
	if err != nil {
		return models.StoredQuote{}, err
	}
	return quote, nil
}
