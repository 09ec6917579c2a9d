package handlers

import (
	"net/http"
	"strconv"

	"stocksim/internal/middleware"
	"stocksim/internal/services"
)

// Index serves the portfolio snapshot. The index, bought and sold routes all
// share this handler.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apology(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	snapshot, err := h.service.Snapshot(r.Context(), userID)
	if err != nil {
		apology(w, http.StatusInternalServerError, "unable to load portfolio")
		return
	}
	holdings := make([]map[string]any, 0, len(snapshot.Holdings))
	for _, holding := range snapshot.Holdings {
		holdings = append(holdings, map[string]any{
			"symbol": holding.Symbol,
			"name":   holding.CompanyName,
			"shares": holding.Shares,
			"price":  valueToMoney(holding.PriceMinor),
			"total":  valueToMoney(holding.TotalMinor),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"cash":      valueToMoney(snapshot.CashMinor),
		"holdings":  holdings,
		"net_worth": valueToMoney(snapshot.NetWorthMinor),
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apology(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	offset := (page - 1) * limit
	entries, err := h.history.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		apology(w, http.StatusInternalServerError, "unable to load history")
		return
	}
	rows := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]any{
			"symbol": entry.Symbol,
			"shares": entry.Shares,
			"price":  valueToMoney(entry.PriceMinor),
			"total":  valueToMoney(entry.TotalMinor),
			"time":   entry.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, rows)
}

// SelfCheck reconciles the user's cash against the ledger: starting cash
// plus the signed sum of every history row must equal the stored balance.
func (h *Handler) SelfCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apology(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		apology(w, http.StatusInternalServerError, "unable to self_check")
		return
	}
	delta, err := h.history.CashDelta(r.Context(), userID, services.DepositLabel)
	if err != nil {
		apology(w, http.StatusInternalServerError, "unable to self_check")
		return
	}
	expected := h.cfg.StartingCashMinor + delta
	respondJSON(w, http.StatusOK, map[string]any{
		"cash":          valueToMoney(user.CashMinor),
		"ledger_cash":   valueToMoney(expected),
		"difference":    valueToMoney(user.CashMinor - expected),
		"starting_cash": valueToMoney(h.cfg.StartingCashMinor),
	})
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
