package models

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CashMinor    int64     `db:"cash_minor" json:"cash_minor"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Holding is a user's current position in one symbol. TotalMinor is the
// position value at the last traded price, recomputed on every mutation.
type Holding struct {
	UserID      string    `db:"user_id" json:"user_id"`
	Symbol      string    `db:"symbol" json:"symbol"`
	CompanyName string    `db:"company_name" json:"company_name"`
	Shares      int64     `db:"shares" json:"shares"`
	PriceMinor  int64     `db:"price_minor" json:"price_minor"`
	TotalMinor  int64     `db:"total_minor" json:"total_minor"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// HistoryEntry is one row of the append-only trade ledger. Sells carry
// negated price and total; deposits use the ADD CASH symbol with shares=1.
type HistoryEntry struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Symbol     string    `db:"symbol" json:"symbol"`
	Shares     int64     `db:"shares" json:"shares"`
	PriceMinor int64     `db:"price_minor" json:"price_minor"`
	TotalMinor int64     `db:"total_minor" json:"total_minor"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StoredQuote is the last successful provider lookup for a symbol.
type StoredQuote struct {
	Symbol      string    `db:"symbol" json:"symbol"`
	CompanyName string    `db:"company_name" json:"company_name"`
	PriceMinor  int64     `db:"price_minor" json:"price_minor"`
	FetchedAt   time.Time `db:"fetched_at" json:"fetched_at"`
}
