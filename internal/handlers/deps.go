package handlers

import (
	"context"

	"stocksim/internal/models"
	"stocksim/internal/services"
	"stocksim/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, passwordHash string, cashMinor int64) error
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type PortfolioStore interface {
	ListSymbols(ctx context.Context, userID string) ([]string, error)
}

type HistoryStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.HistoryEntry, error)
	CashDelta(ctx context.Context, userID, depositLabel string) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type TradingService interface {
	Buy(ctx context.Context, userID, symbol string, shares int64) (services.TradeResult, error)
	Sell(ctx context.Context, userID, symbol string, shares int64) (services.TradeResult, error)
	Deposit(ctx context.Context, userID string, amountMinor int64) (int64, error)
	Snapshot(ctx context.Context, userID string) (services.PortfolioSnapshot, error)
	Quote(ctx context.Context, symbol string) (services.QuoteResult, error)
}
