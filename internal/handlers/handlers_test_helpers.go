package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"stocksim/internal/auth"
	"stocksim/internal/config"
	"stocksim/internal/models"
	"stocksim/internal/services"
	"stocksim/internal/store"
	"stocksim/internal/websocket"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type fakeUsers struct {
	createErr   error
	createdCash []int64
	user        models.User
	getErr      error
}

func (f *fakeUsers) Create(ctx context.Context, tx store.Execer, id, username, passwordHash string, cashMinor int64) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createdCash = append(f.createdCash, cashMinor)
	return nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (models.User, error) {
	if f.getErr != nil {
		return models.User{}, f.getErr
	}
	return f.user, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, userID string) (models.User, error) {
	if f.getErr != nil {
		return models.User{}, f.getErr
	}
	return f.user, nil
}

type fakePortfolio struct {
	symbols []string
}

func (f *fakePortfolio) ListSymbols(ctx context.Context, userID string) ([]string, error) {
	return f.symbols, nil
}

type listCall struct {
	limit  int
	offset int
}

type fakeHistory struct {
	entries []models.HistoryEntry
	calls   []listCall
	delta   int64
}

func (f *fakeHistory) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.HistoryEntry, error) {
	f.calls = append(f.calls, listCall{limit: limit, offset: offset})
	return f.entries, nil
}

func (f *fakeHistory) CashDelta(ctx context.Context, userID, depositLabel string) (int64, error) {
	return f.delta, nil
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	f.actions = append(f.actions, action)
	return nil
}

type fakeService struct {
	buyFn      func(ctx context.Context, userID, symbol string, shares int64) (services.TradeResult, error)
	sellFn     func(ctx context.Context, userID, symbol string, shares int64) (services.TradeResult, error)
	depositFn  func(ctx context.Context, userID string, amountMinor int64) (int64, error)
	snapshotFn func(ctx context.Context, userID string) (services.PortfolioSnapshot, error)
	quoteFn    func(ctx context.Context, symbol string) (services.QuoteResult, error)
}

func (f *fakeService) Buy(ctx context.Context, userID, symbol string, shares int64) (services.TradeResult, error) {
	return f.buyFn(ctx, userID, symbol, shares)
}

func (f *fakeService) Sell(ctx context.Context, userID, symbol string, shares int64) (services.TradeResult, error) {
	return f.sellFn(ctx, userID, symbol, shares)
}

func (f *fakeService) Deposit(ctx context.Context, userID string, amountMinor int64) (int64, error) {
	return f.depositFn(ctx, userID, amountMinor)
}

func (f *fakeService) Snapshot(ctx context.Context, userID string) (services.PortfolioSnapshot, error) {
	return f.snapshotFn(ctx, userID)
}

func (f *fakeService) Quote(ctx context.Context, symbol string) (services.QuoteResult, error) {
	return f.quoteFn(ctx, symbol)
}

type testEnv struct {
	handler   *Handler
	router    http.Handler
	users     *fakeUsers
	portfolio *fakePortfolio
	history   *fakeHistory
	audit     *fakeAudit
	service   *fakeService
}

func newTestEnv() *testEnv {
	cfg := config.Config{
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
		AllowedOrigins:    "*",
		StartingCashMinor: 1000000,
	}
	env := &testEnv{
		users:     &fakeUsers{},
		portfolio: &fakePortfolio{},
		history:   &fakeHistory{},
		audit:     &fakeAudit{},
		service:   &fakeService{},
	}
	env.handler = New(fakeTxRunner{}, cfg, env.users, env.portfolio, env.history, env.audit, env.service, websocket.NewHub())
	env.router = env.handler.Routes()
	return env
}

func (env *testEnv) bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken("test-secret", userID, time.Hour)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	return "Bearer " + token
}

func (env *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}
