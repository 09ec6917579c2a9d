package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stocksim/internal/db"
	"stocksim/internal/models"
	"stocksim/internal/money"
	"stocksim/internal/quotes"
	"stocksim/internal/store"
	"stocksim/internal/websocket"
)

var (
	ErrInvalidShares      = errors.New("share count must be a positive integer")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrQuoteUnavailable   = errors.New("quote unavailable")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
)

// DepositLabel is the sentinel symbol marking cash deposits in the ledger.
const DepositLabel = "ADD CASH"

type TradingService struct {
	txRunner   db.TxRunner
	userStore  UserStore
	portfolio  PortfolioStore
	history    HistoryStore
	quoteStore QuoteStore
	provider   quotes.Provider
	auditStore AuditStore
	hub        PortfolioHub
}

type UserStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	UpdateCash(ctx context.Context, tx store.Execer, userID string, cashMinor int64) error
}

type PortfolioStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Holding, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID, symbol string) (models.Holding, error)
	Insert(ctx context.Context, tx store.Execer, holding models.Holding) error
	Update(ctx context.Context, tx store.Execer, userID, symbol string, shares, priceMinor, totalMinor int64) error
	Delete(ctx context.Context, tx store.Execer, userID, symbol string) error
}

type HistoryStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.HistoryInput) error
}

type QuoteStore interface {
	Upsert(ctx context.Context, symbol, companyName string, priceMinor int64) error
	GetBySymbol(ctx context.Context, symbol string) (models.StoredQuote, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type PortfolioHub interface {
	BroadcastPortfolio(userID string, update websocket.PortfolioUpdate)
}

func NewTradingService(txRunner db.TxRunner, userStore UserStore, portfolio PortfolioStore, history HistoryStore, quoteStore QuoteStore, provider quotes.Provider, auditStore AuditStore, hub PortfolioHub) *TradingService {
	return &TradingService{
		txRunner:   txRunner,
		userStore:  userStore,
		portfolio:  portfolio,
		history:    history,
		quoteStore: quoteStore,
		provider:   provider,
		auditStore: auditStore,
		hub:        hub,
	}
}

// TradeResult reports a filled buy or sell.
type TradeResult struct {
	TradeID    string
	Symbol     string
	Shares     int64
	PriceMinor int64
	TotalMinor int64
	CashMinor  int64
}

// Buy purchases shares at the current market price. Cash, the holding and
// the ledger move inside one serializable transaction; the user row is
// locked first so overlapping requests for the same user serialize.
func (s *TradingService) Buy(ctx context.Context, userID, symbol string, shares int64) (TradeResult, error) {
	if shares <= 0 {
		return TradeResult{}, ErrInvalidShares
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	quote, err := s.resolveQuote(ctx, symbol)
	if err != nil {
		return TradeResult{}, err
	}
	if shares > math.MaxInt64/quote.PriceMinor {
		return TradeResult{}, ErrInvalidShares
	}
	totalMinor := quote.PriceMinor * shares
	var result TradeResult
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.userStore.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user.CashMinor < totalMinor {
			return ErrInsufficientFunds
		}
		holding, err := s.portfolio.GetForUpdate(ctx, tx, userID, symbol)
		switch {
		case err == nil:
			newShares := holding.Shares + shares
			if err := s.portfolio.Update(ctx, tx, userID, symbol, newShares, quote.PriceMinor, newShares*quote.PriceMinor); err != nil {
				return err
			}
		case errors.Is(err, sql.ErrNoRows):
			if err := s.portfolio.Insert(ctx, tx, models.Holding{
				UserID:      userID,
				Symbol:      symbol,
				CompanyName: quote.Name,
				Shares:      shares,
				PriceMinor:  quote.PriceMinor,
				TotalMinor:  totalMinor,
			}); err != nil {
				return err
			}
		default:
			return err
		}
		tradeID := uuid.NewString()
		if err := s.history.Insert(ctx, tx, store.HistoryInput{
			ID:         tradeID,
			UserID:     userID,
			Symbol:     symbol,
			Shares:     shares,
			PriceMinor: quote.PriceMinor,
			TotalMinor: totalMinor,
		}); err != nil {
			return err
		}
		newCash := user.CashMinor - totalMinor
		if err := s.userStore.UpdateCash(ctx, tx, userID, newCash); err != nil {
			return err
		}
		result = TradeResult{
			TradeID:    tradeID,
			Symbol:     symbol,
			Shares:     shares,
			PriceMinor: quote.PriceMinor,
			TotalMinor: totalMinor,
			CashMinor:  newCash,
		}
		data, _ := json.Marshal(map[string]any{
			"symbol": symbol,
			"shares": shares,
			"total":  money.FormatMinor(totalMinor),
		})
		return s.auditStore.Log(ctx, tx, userID, "buy", "trade", tradeID, string(data))
	})
	if err != nil {
		return TradeResult{}, err
	}
	s.hub.BroadcastPortfolio(userID, websocket.PortfolioUpdate{
		Cash:   money.FormatMinor(result.CashMinor),
		Symbol: symbol,
		Shares: shares,
	})
	return result, nil
}

// Sell disposes shares at the current market price. A sell that empties the
// position removes the holding row; the ledger records the sale with negated
// price and total.
func (s *TradingService) Sell(ctx context.Context, userID, symbol string, shares int64) (TradeResult, error) {
	if shares <= 0 {
		return TradeResult{}, ErrInvalidShares
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	quote, err := s.resolveQuote(ctx, symbol)
	if err != nil {
		return TradeResult{}, err
	}
	if shares > math.MaxInt64/quote.PriceMinor {
		return TradeResult{}, ErrInvalidShares
	}
	saleMinor := quote.PriceMinor * shares
	var result TradeResult
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.userStore.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		holding, err := s.portfolio.GetForUpdate(ctx, tx, userID, symbol)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInsufficientShares
			}
			return err
		}
		if shares > holding.Shares {
			return ErrInsufficientShares
		}
		if shares == holding.Shares {
			if err := s.portfolio.Delete(ctx, tx, userID, symbol); err != nil {
				return err
			}
		} else {
			newShares := holding.Shares - shares
			if err := s.portfolio.Update(ctx, tx, userID, symbol, newShares, quote.PriceMinor, newShares*quote.PriceMinor); err != nil {
				return err
			}
		}
		tradeID := uuid.NewString()
		if err := s.history.Insert(ctx, tx, store.HistoryInput{
			ID:         tradeID,
			UserID:     userID,
			Symbol:     symbol,
			Shares:     shares,
			PriceMinor: -quote.PriceMinor,
			TotalMinor: -saleMinor,
		}); err != nil {
			return err
		}
		newCash := user.CashMinor + saleMinor
		if err := s.userStore.UpdateCash(ctx, tx, userID, newCash); err != nil {
			return err
		}
		result = TradeResult{
			TradeID:    tradeID,
			Symbol:     symbol,
			Shares:     shares,
			PriceMinor: quote.PriceMinor,
			TotalMinor: saleMinor,
			CashMinor:  newCash,
		}
		data, _ := json.Marshal(map[string]any{
			"symbol": symbol,
			"shares": shares,
			"total":  money.FormatMinor(saleMinor),
		})
		return s.auditStore.Log(ctx, tx, userID, "sell", "trade", tradeID, string(data))
	})
	if err != nil {
		return TradeResult{}, err
	}
	s.hub.BroadcastPortfolio(userID, websocket.PortfolioUpdate{
		Cash:   money.FormatMinor(result.CashMinor),
		Symbol: symbol,
		Shares: -shares,
	})
	return result, nil
}

// Deposit adds cash to the user's balance and records an ADD CASH ledger row
// with shares=1 and price=total=amount.
func (s *TradingService) Deposit(ctx context.Context, userID string, amountMinor int64) (int64, error) {
	if amountMinor <= 0 {
		return 0, ErrInvalidAmount
	}
	var newCash int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.userStore.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		newCash = user.CashMinor + amountMinor
		if err := s.userStore.UpdateCash(ctx, tx, userID, newCash); err != nil {
			return err
		}
		depositID := uuid.NewString()
		if err := s.history.Insert(ctx, tx, store.HistoryInput{
			ID:         depositID,
			UserID:     userID,
			Symbol:     DepositLabel,
			Shares:     1,
			PriceMinor: amountMinor,
			TotalMinor: amountMinor,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"amount": money.FormatMinor(amountMinor),
		})
		return s.auditStore.Log(ctx, tx, userID, "deposit", "trade", depositID, string(data))
	})
	if err != nil {
		return 0, err
	}
	s.hub.BroadcastPortfolio(userID, websocket.PortfolioUpdate{
		Cash: money.FormatMinor(newCash),
	})
	return newCash, nil
}

// PortfolioSnapshot backs the index, bought and sold views.
type PortfolioSnapshot struct {
	CashMinor     int64
	Holdings      []models.Holding
	NetWorthMinor int64
}

func (s *TradingService) Snapshot(ctx context.Context, userID string) (PortfolioSnapshot, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return PortfolioSnapshot{}, err
	}
	holdings, err := s.portfolio.ListByUser(ctx, userID)
	if err != nil {
		return PortfolioSnapshot{}, err
	}
	netWorth := user.CashMinor
	for _, holding := range holdings {
		netWorth += holding.TotalMinor
	}
	return PortfolioSnapshot{
		CashMinor:     user.CashMinor,
		Holdings:      holdings,
		NetWorthMinor: netWorth,
	}, nil
}

// QuoteResult is a quote view lookup. Stale marks a fallback to the last
// stored price because the provider was unreachable.
type QuoteResult struct {
	Symbol     string
	Name       string
	PriceMinor int64
	Stale      bool
}

// Quote resolves a symbol for the quote view. Provider outages fall back to
// the last stored quote; trades never use this fallback.
func (s *TradingService) Quote(ctx context.Context, symbol string) (QuoteResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	quote, err := s.resolveQuote(ctx, symbol)
	if err == nil {
		return QuoteResult{Symbol: quote.Symbol, Name: quote.Name, PriceMinor: quote.PriceMinor}, nil
	}
	if errors.Is(err, ErrUnknownSymbol) {
		return QuoteResult{}, err
	}
	stored, storeErr := s.quoteStore.GetBySymbol(ctx, symbol)
	if storeErr != nil {
		return QuoteResult{}, err
	}
	return QuoteResult{
		Symbol:     stored.Symbol,
		Name:       stored.CompanyName,
		PriceMinor: stored.PriceMinor,
		Stale:      true,
	}, nil
}

// resolveQuote maps provider outcomes onto the service error taxonomy and
// keeps the stored-quote table fresh on success.
func (s *TradingService) resolveQuote(ctx context.Context, symbol string) (quotes.Quote, error) {
	quote, err := s.provider.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, quotes.ErrSymbolNotFound) {
			return quotes.Quote{}, ErrUnknownSymbol
		}
		return quotes.Quote{}, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	if err := s.quoteStore.Upsert(ctx, quote.Symbol, quote.Name, quote.PriceMinor); err != nil {
		log.Printf("stored quote refresh failed for %s: %v", quote.Symbol, err)
	}
	return quote, nil
}
