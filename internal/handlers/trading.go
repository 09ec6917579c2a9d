package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"stocksim/internal/middleware"
	"stocksim/internal/services"
	"stocksim/internal/validator"
)

type quoteRequest struct {
	Symbol string `json:"symbol"`
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if r.Method == http.MethodPost {
		var req quoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apology(w, http.StatusBadRequest, "invalid payload")
			return
		}
		symbol = req.Symbol
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		apology(w, http.StatusBadRequest, "must provide a stock symbol")
		return
	}
	if err := validator.ValidateSymbol(symbol); err != nil {
		apology(w, http.StatusBadRequest, "must provide a valid stock symbol")
		return
	}
	quote, err := h.service.Quote(r.Context(), symbol)
	if err != nil {
		h.tradeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"symbol": quote.Symbol,
		"name":   quote.Name,
		"price":  valueToMoney(quote.PriceMinor),
		"stale":  quote.Stale,
	})
}

type tradeRequest struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apology(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apology(w, http.StatusBadRequest, "invalid payload")
		return
	}
	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" || req.Shares == 0 {
		apology(w, http.StatusBadRequest, "must provide a stock symbol and number of shares")
		return
	}
	if err := validator.ValidateSymbol(symbol); err != nil {
		apology(w, http.StatusBadRequest, "must provide a valid stock symbol")
		return
	}
	result, err := h.service.Buy(r.Context(), userID, symbol, req.Shares)
	if err != nil {
		h.tradeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tradePayload(result))
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apology(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apology(w, http.StatusBadRequest, "invalid payload")
		return
	}
	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" || req.Shares == 0 {
		apology(w, http.StatusBadRequest, "must provide a stock symbol and number of shares")
		return
	}
	if err := validator.ValidateSymbol(symbol); err != nil {
		apology(w, http.StatusBadRequest, "must provide a valid stock symbol")
		return
	}
	result, err := h.service.Sell(r.Context(), userID, symbol, req.Shares)
	if err != nil {
		h.tradeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tradePayload(result))
}

// BuyForm reports spendable cash before a purchase.
func (h *Handler) BuyForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apology(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		apology(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"cash": valueToMoney(user.CashMinor)})
}

// SellForm lists the symbols the user currently holds.
func (h *Handler) SellForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apology(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	symbols, err := h.portfolio.ListSymbols(r.Context(), userID)
	if err != nil {
		apology(w, http.StatusInternalServerError, "unable to load portfolio")
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"symbols": symbols})
}

type addCashRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) AddCash(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apology(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req addCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apology(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		apology(w, http.StatusBadRequest, "must enter a valid dollar amount")
		return
	}
	newCash, err := h.service.Deposit(r.Context(), userID, amountMinor)
	if err != nil {
		h.tradeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"cash": valueToMoney(newCash)})
}

func (h *Handler) AddCashForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apology(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		apology(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"cash": valueToMoney(user.CashMinor)})
}

func tradePayload(result services.TradeResult) map[string]any {
	return map[string]any{
		"trade_id": result.TradeID,
		"symbol":   result.Symbol,
		"shares":   result.Shares,
		"price":    valueToMoney(result.PriceMinor),
		"total":    valueToMoney(result.TotalMinor),
		"cash":     valueToMoney(result.CashMinor),
	}
}

// tradeError maps engine errors onto the apology taxonomy: 400 for bad
// input, 403 for affordability, 502 for a dead provider, 500 otherwise.
func (h *Handler) tradeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidShares):
		apology(w, http.StatusBadRequest, "must enter a positive number of shares")
	case errors.Is(err, services.ErrInvalidAmount):
		apology(w, http.StatusBadRequest, "must enter a valid dollar amount")
	case errors.Is(err, services.ErrUnknownSymbol):
		apology(w, http.StatusBadRequest, "the symbol you entered doesn't correspond to a stock")
	case errors.Is(err, services.ErrInsufficientFunds):
		apology(w, http.StatusForbidden, "you cannot afford this many shares")
	case errors.Is(err, services.ErrInsufficientShares):
		apology(w, http.StatusForbidden, "you don't own enough shares of this stock")
	case errors.Is(err, services.ErrQuoteUnavailable):
		apology(w, http.StatusBadGateway, "quote service is unavailable, try again")
	default:
		log.Printf("internal error: %v", err)
		apology(w, http.StatusInternalServerError, "something went wrong")
	}
}
