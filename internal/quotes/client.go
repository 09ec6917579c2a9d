package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"stocksim/internal/money"
)

var (
	// ErrSymbolNotFound means the symbol does not correspond to a listed
	// stock. It is a user-facing validation error, never a fault.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrUnavailable means the provider could not be reached or answered
	// with a server error.
	ErrUnavailable = errors.New("quote provider unavailable")
)

// Quote is a resolved ticker lookup. PriceMinor is the latest price in cents.
type Quote struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
}

type Provider interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
}

type Client struct {
	client *resty.Client
	token  string
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &Client{client: client, token: token}
}

type quoteResponse struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	LatestPrice decimal.Decimal `json:"latestPrice"`
}

func (c *Client) Lookup(ctx context.Context, symbol string) (Quote, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("token", c.token).
		SetPathParam("symbol", symbol).
		Get("/stock/{symbol}/quote")
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return Quote{}, ErrSymbolNotFound
	}
	if !resp.IsSuccess() {
		return Quote{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	var parsed quoteResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	priceMinor := money.DecimalToMinor(parsed.LatestPrice)
	if priceMinor <= 0 {
		return Quote{}, fmt.Errorf("%w: non-positive price for %s", ErrUnavailable, symbol)
	}
	return Quote{
		Symbol:     parsed.Symbol,
		Name:       parsed.CompanyName,
		PriceMinor: priceMinor,
	}, nil
}
