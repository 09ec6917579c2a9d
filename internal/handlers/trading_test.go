package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stocksim/internal/models"
	"stocksim/internal/services"
)

func TestQuoteByQueryParam(t *testing.T) {
	env := newTestEnv()
	env.service.quoteFn = func(ctx context.Context, symbol string) (services.QuoteResult, error) {
		if symbol != "NFLX" {
			t.Fatalf("unexpected symbol: %s", symbol)
		}
		return services.QuoteResult{Symbol: "NFLX", Name: "Netflix", PriceMinor: 50039}, nil
	}
	req := httptest.NewRequest(http.MethodGet, "/quote?symbol=NFLX", nil)
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body["price"] != "500.39" || body["stale"] != false {
		t.Fatalf("unexpected body: %#v", body)
	}
}

func TestQuoteByPostBody(t *testing.T) {
	env := newTestEnv()
	env.service.quoteFn = func(ctx context.Context, symbol string) (services.QuoteResult, error) {
		return services.QuoteResult{Symbol: symbol, PriceMinor: 100}, nil
	}
	req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(`{"symbol":"AAPL"}`))
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestQuoteMissingSymbol(t *testing.T) {
	env := newTestEnv()
	req := httptest.NewRequest(http.MethodGet, "/quote", nil)
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestQuoteRejectsMalformedSymbol(t *testing.T) {
	env := newTestEnv()
	for _, symbol := range []string{"BAD1", "N%20FLX", "TOOLONGSYMBOL"} {
		req := httptest.NewRequest(http.MethodGet, "/quote?symbol="+symbol, nil)
		req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
		rec := env.do(t, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("symbol %q: unexpected status: %d", symbol, rec.Code)
		}
	}
}

func TestQuoteUnknownSymbol(t *testing.T) {
	env := newTestEnv()
	env.service.quoteFn = func(ctx context.Context, symbol string) (services.QuoteResult, error) {
		return services.QuoteResult{}, services.ErrUnknownSymbol
	}
	req := httptest.NewRequest(http.MethodGet, "/quote?symbol=XXXX", nil)
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestBuy(t *testing.T) {
	env := newTestEnv()
	env.service.buyFn = func(ctx context.Context, userID, symbol string, shares int64) (services.TradeResult, error) {
		if userID != "user-1" || symbol != "NFLX" || shares != 2 {
			t.Fatalf("unexpected call: %s %s %d", userID, symbol, shares)
		}
		return services.TradeResult{
			TradeID: "trade-1", Symbol: "NFLX", Shares: 2,
			PriceMinor: 50000, TotalMinor: 100000, CashMinor: 900000,
		}, nil
	}
	req := httptest.NewRequest(http.MethodPost, "/buy", strings.NewReader(`{"symbol":"NFLX","shares":2}`))
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body["total"] != "1000.00" || body["cash"] != "9000.00" {
		t.Fatalf("unexpected body: %#v", body)
	}
}

func TestBuyInsufficientFunds(t *testing.T) {
	env := newTestEnv()
	env.service.buyFn = func(ctx context.Context, userID, symbol string, shares int64) (services.TradeResult, error) {
		return services.TradeResult{}, services.ErrInsufficientFunds
	}
	req := httptest.NewRequest(http.MethodPost, "/buy", strings.NewReader(`{"symbol":"NFLX","shares":200}`))
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestBuyQuoteUnavailable(t *testing.T) {
	env := newTestEnv()
	env.service.buyFn = func(ctx context.Context, userID, symbol string, shares int64) (services.TradeResult, error) {
		return services.TradeResult{}, services.ErrQuoteUnavailable
	}
	req := httptest.NewRequest(http.MethodPost, "/buy", strings.NewReader(`{"symbol":"NFLX","shares":1}`))
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestBuyMissingFields(t *testing.T) {
	env := newTestEnv()
	req := httptest.NewRequest(http.MethodPost, "/buy", strings.NewReader(`{"symbol":"","shares":0}`))
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestTradeRejectsMalformedSymbol(t *testing.T) {
	env := newTestEnv()
	for _, path := range []string{"/buy", "/sell"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"symbol":"BAD1","shares":1}`))
		req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
		rec := env.do(t, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: unexpected status: %d", path, rec.Code)
		}
	}
}

func TestSellInsufficientShares(t *testing.T) {
	env := newTestEnv()
	env.service.sellFn = func(ctx context.Context, userID, symbol string, shares int64) (services.TradeResult, error) {
		return services.TradeResult{}, services.ErrInsufficientShares
	}
	req := httptest.NewRequest(http.MethodPost, "/sell", strings.NewReader(`{"symbol":"NFLX","shares":5}`))
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestBuyForm(t *testing.T) {
	env := newTestEnv()
	env.users.user = models.User{ID: "user-1", CashMinor: 123456}
	req := httptest.NewRequest(http.MethodGet, "/buy", nil)
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["cash"] != "1234.56" {
		t.Fatalf("unexpected cash: %s", body["cash"])
	}
}

func TestSellForm(t *testing.T) {
	env := newTestEnv()
	env.portfolio.symbols = []string{"AAPL", "NFLX"}
	req := httptest.NewRequest(http.MethodGet, "/sell", nil)
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(body["symbols"]) != 2 {
		t.Fatalf("unexpected symbols: %#v", body["symbols"])
	}
}

func TestAddCash(t *testing.T) {
	env := newTestEnv()
	env.service.depositFn = func(ctx context.Context, userID string, amountMinor int64) (int64, error) {
		if amountMinor != 25000 {
			t.Fatalf("unexpected amount: %d", amountMinor)
		}
		return 1025000, nil
	}
	req := httptest.NewRequest(http.MethodPost, "/addcash", strings.NewReader(`{"amount":"250.00"}`))
	req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["cash"] != "10250.00" {
		t.Fatalf("unexpected cash: %s", body["cash"])
	}
}

func TestAddCashRejectsBadAmounts(t *testing.T) {
	env := newTestEnv()
	for _, amount := range []string{"abc", "-5", "0", "1.234"} {
		req := httptest.NewRequest(http.MethodPost, "/addcash", strings.NewReader(`{"amount":"`+amount+`"}`))
		req.Header.Set("Authorization", env.bearerToken(t, "user-1"))
		rec := env.do(t, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("amount %q: unexpected status: %d", amount, rec.Code)
		}
	}
}
