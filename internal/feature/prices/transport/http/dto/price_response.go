// Package dto defines the wire formats of the prices endpoints.
package dto

// TickerQuoteResponse is one live price record.
type TickerQuoteResponse struct {
	Symbol          string   `json:"symbol"`
	Description     string   `json:"description"`
	ProductCategory string   `json:"product_category"`
	PxLast          float64  `json:"px_last"`
	Change          *float64 `json:"change,omitempty"`
	ChangePct       *float64 `json:"change_pct,omitempty"`
	Timestamp       string   `json:"timestamp"`
	IsLive          bool     `json:"is_live"`
}

// DataPoint is one historical (date, price) pair.
type DataPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// HistoricalResponse is the historical range payload.
type HistoricalResponse struct {
	Symbol     string      `json:"symbol"`
	DataPoints []DataPoint `json:"data_points"`
	StartDate  string      `json:"start_date"`
	EndDate    string      `json:"end_date"`
}

// MarketStatusResponse reports trading hours state.
type MarketStatusResponse struct {
	IsOpen    bool    `json:"is_open"`
	Message   string  `json:"message"`
	NextOpen  *string `json:"next_open,omitempty"`
	NextClose *string `json:"next_close,omitempty"`
}

// SettlementItem is one settlement price on the wire, both for ingest and
// for serving.
type SettlementItem struct {
	Symbol          string  `json:"symbol" binding:"required"`
	Date            string  `json:"date" binding:"required"`
	SettlementPrice float64 `json:"settlement_price" binding:"required"`
	ProductCategory string  `json:"product_category"`
}

// SymbolCatalog lists the configured default symbol sets.
type SymbolCatalog struct {
	BaseMetals     []string `json:"base_metals"`
	PreciousMetals []string `json:"precious_metals"`
}
