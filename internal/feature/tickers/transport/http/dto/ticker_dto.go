// Package dto defines the wire formats of the tickers endpoints.
package dto

import "encoding/json"

// CreateTickerRequest adds an instrument; only the symbol is required.
type CreateTickerRequest struct {
	Symbol          string `json:"symbol" binding:"required"`
	Description     string `json:"description"`
	ProductCategory string `json:"product_category"`
}

// UpdateTickerRequest changes instrument metadata.
type UpdateTickerRequest struct {
	Description     *string `json:"description"`
	ProductCategory *string `json:"product_category"`
}

// TickerResponse is one instrument on the wire.
type TickerResponse struct {
	ID              uint   `json:"id"`
	Symbol          string `json:"symbol"`
	Description     string `json:"description"`
	ProductCategory string `json:"product_category"`
	IsCustom        bool   `json:"is_custom"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// PriceRow is one observation of a ticker's price history.
type PriceRow struct {
	Date     string   `json:"date"`
	PxLast   float64  `json:"px_last"`
	PxOpen   *float64 `json:"px_open,omitempty"`
	PxHigh   *float64 `json:"px_high,omitempty"`
	PxLow    *float64 `json:"px_low,omitempty"`
	PxVolume *float64 `json:"px_volume,omitempty"`
}

// PricesResponse is the ranged price lookup payload.
type PricesResponse struct {
	Ticker       TickerResponse `json:"ticker"`
	Prices       []PriceRow     `json:"prices"`
	TotalRecords int            `json:"total_records"`
}

// LatestPriceResponse joins an instrument with its latest stored observation.
type LatestPriceResponse struct {
	TickerID        uint     `json:"ticker_id"`
	Symbol          string   `json:"symbol"`
	Description     string   `json:"description"`
	ProductCategory string   `json:"product_category"`
	PxLast          *float64 `json:"px_last"`
	Date            *string  `json:"date"`
	Change          float64  `json:"change"`
	ChangePct       float64  `json:"change_pct"`
}

// CreateCustomInstrumentRequest adds a derived instrument.
type CreateCustomInstrumentRequest struct {
	Name       string          `json:"name" binding:"required"`
	Type       string          `json:"type" binding:"required"`
	Definition json.RawMessage `json:"definition" binding:"required"`
}

// CustomInstrumentResponse is one derived instrument on the wire.
type CustomInstrumentResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Definition json.RawMessage `json:"definition"`
	CreatedAt  string          `json:"created_at"`
}
