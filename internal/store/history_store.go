package store

import (
	"context"

	"stocksim/internal/models"
)

// HistoryStore is the append-only trade ledger. Rows are never updated or
// deleted.
type HistoryStore struct {
	db DB
}

func NewHistoryStore(db DB) *HistoryStore {
	return &HistoryStore{db: db}
}

type HistoryInput struct {
	ID         string
	UserID     string
	Symbol     string
	Shares     int64
	PriceMinor int64
	TotalMinor int64
}

func (s *HistoryStore) Insert(ctx context.Context, tx Execer, input HistoryInput) error {
	query := `
		INSERT INTO history (id, user_id, symbol, shares, price_minor, total_minor)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.Symbol, input.Shares, input.PriceMinor, input.TotalMinor,
	)
	return err
}

func (s *HistoryStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, symbol, shares, price_minor, total_minor, created_at
		FROM history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CashDelta sums the signed cash effect of every ledger row for a user:
// deposits add their total, buys subtract it, sells (stored with a negative
// total) add it back.
func (s *HistoryStore) CashDelta(ctx context.Context, userID, depositLabel string) (int64, error) {
	var delta int64
	err := s.db.GetContext(ctx, &delta, `
		SELECT COALESCE(SUM(CASE WHEN symbol = $2 THEN total_minor ELSE -total_minor END), 0)
		FROM history
		WHERE user_id = $1
	`, userID, depositLabel)
	return delta, err
}
