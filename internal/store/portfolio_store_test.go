package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"stocksim/internal/models"
)

func TestPortfolioStoreListByUser(t *testing.T) {
	ctx := context.Background()
	store := NewPortfolioStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM portfolio") || !strings.Contains(query, "ORDER BY symbol") {
				t.Fatalf("unexpected query: %s", query)
			}
			holdings := dest.(*[]models.Holding)
			*holdings = []models.Holding{{Symbol: "AAPL", Shares: 3}}
			return nil
		},
	})
	holdings, err := store.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(holdings) != 1 || holdings[0].Symbol != "AAPL" {
		t.Fatalf("unexpected holdings: %#v", holdings)
	}
}

func TestPortfolioStoreGetForUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewPortfolioStore(stubDB{})
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected row lock in query: %s", query)
			}
			if len(args) != 2 || args[0] != "user-1" || args[1] != "NFLX" {
				t.Fatalf("unexpected args: %#v", args)
			}
			holding := dest.(*models.Holding)
			*holding = models.Holding{UserID: "user-1", Symbol: "NFLX", Shares: 2}
			return nil
		},
	}
	holding, err := store.GetForUpdate(ctx, getter, "user-1", "NFLX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if holding.Shares != 2 {
		t.Fatalf("unexpected holding: %#v", holding)
	}
}

func TestPortfolioStoreInsert(t *testing.T) {
	ctx := context.Background()
	store := NewPortfolioStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO portfolio") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[1] != "NFLX" || args[3] != int64(2) || args[5] != int64(100000) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	err := store.Insert(ctx, execer, models.Holding{
		UserID: "user-1", Symbol: "NFLX", CompanyName: "Netflix",
		Shares: 2, PriceMinor: 50000, TotalMinor: 100000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPortfolioStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewPortfolioStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "UPDATE portfolio") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != int64(5) || args[2] != int64(250000) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := store.Update(ctx, execer, "user-1", "NFLX", 5, 50000, 250000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPortfolioStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewPortfolioStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "DELETE FROM portfolio") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != "user-1" || args[1] != "NFLX" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := store.Delete(ctx, execer, "user-1", "NFLX"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPortfolioStoreListSymbols(t *testing.T) {
	ctx := context.Background()
	store := NewPortfolioStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "SELECT symbol") {
				t.Fatalf("unexpected query: %s", query)
			}
			symbols := dest.(*[]string)
			*symbols = []string{"AAPL", "NFLX"}
			return nil
		},
	})
	symbols, err := store.ListSymbols(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("unexpected symbols: %#v", symbols)
	}
}
