package handlers

import (
	"encoding/json"
	"net/http"

	"stocksim/internal/money"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// apology is the uniform error channel: a short human-readable message and
// a status code.
func apology(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func valueToMoney(value int64) string {
	return money.FormatMinor(value)
}
