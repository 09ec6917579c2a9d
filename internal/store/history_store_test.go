package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"stocksim/internal/models"
)

func TestHistoryStoreInsert(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO history") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[2] != "NFLX" || args[3] != int64(2) || args[4] != int64(-50000) || args[5] != int64(-100000) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	err := store.Insert(ctx, execer, HistoryInput{
		ID: "trade-1", UserID: "user-1", Symbol: "NFLX",
		Shares: 2, PriceMinor: -50000, TotalMinor: -100000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHistoryStoreListByUser(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "ORDER BY created_at DESC") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 3 || args[1] != 50 || args[2] != 0 {
				t.Fatalf("unexpected args: %#v", args)
			}
			entries := dest.(*[]models.HistoryEntry)
			*entries = []models.HistoryEntry{{ID: "trade-1", Symbol: "NFLX"}}
			return nil
		},
	})
	entries, err := store.ListByUser(ctx, "user-1", 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "trade-1" {
		t.Fatalf("unexpected entries: %#v", entries)
	}
}

func TestHistoryStoreCashDelta(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "CASE WHEN symbol = $2") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[1] != "ADD CASH" {
				t.Fatalf("unexpected args: %#v", args)
			}
			delta := dest.(*int64)
			*delta = -12345
			return nil
		},
	})
	delta, err := store.CashDelta(ctx, "user-1", "ADD CASH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delta != -12345 {
		t.Fatalf("unexpected delta: %d", delta)
	}
}
