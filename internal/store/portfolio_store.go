package store

import (
	"context"

	"stocksim/internal/models"
)

type PortfolioStore struct {
	db DB
}

func NewPortfolioStore(db DB) *PortfolioStore {
	return &PortfolioStore{db: db}
}

func (s *PortfolioStore) ListByUser(ctx context.Context, userID string) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.SelectContext(ctx, &holdings, `
		SELECT user_id, symbol, company_name, shares, price_minor, total_minor, updated_at
		FROM portfolio
		WHERE user_id = $1
		ORDER BY symbol
	`, userID)
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

func (s *PortfolioStore) ListSymbols(ctx context.Context, userID string) ([]string, error) {
	var symbols []string
	err := s.db.SelectContext(ctx, &symbols, `
		SELECT symbol
		FROM portfolio
		WHERE user_id = $1
		ORDER BY symbol
	`, userID)
	if err != nil {
		return nil, err
	}
	return symbols, nil
}

func (s *PortfolioStore) GetForUpdate(ctx context.Context, tx Getter, userID, symbol string) (models.Holding, error) {
	var holding models.Holding
	err := tx.GetContext(ctx, &holding, `
		SELECT user_id, symbol, company_name, shares, price_minor, total_minor, updated_at
		FROM portfolio
		WHERE user_id = $1 AND symbol = $2
		FOR UPDATE
	`, userID, symbol)
	if err != nil {
		return models.Holding{}, err
	}
	return holding, nil
}

func (s *PortfolioStore) Insert(ctx context.Context, tx Execer, holding models.Holding) error {
	query := `
		INSERT INTO portfolio (user_id, symbol, company_name, shares, price_minor, total_minor)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		holding.UserID, holding.Symbol, holding.CompanyName,
		holding.Shares, holding.PriceMinor, holding.TotalMinor,
	)
	return err
}

func (s *PortfolioStore) Update(ctx context.Context, tx Execer, userID, symbol string, shares, priceMinor, totalMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE portfolio
		SET shares = $1, price_minor = $2, total_minor = $3, updated_at = NOW()
		WHERE user_id = $4 AND symbol = $5
	`, shares, priceMinor, totalMinor, userID, symbol)
	return err
}

func (s *PortfolioStore) Delete(ctx context.Context, tx Execer, userID, symbol string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM portfolio
		WHERE user_id = $1 AND symbol = $2
	`, userID, symbol)
	return err
}
