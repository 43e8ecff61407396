// Package entity defines the domain models for the prices feature.
package entity

import "time"

// Observation is one dated price record for an instrument. Date carries day
// granularity (UTC midnight); PxLast is required, the other fields are only
// set when the terminal supplied them.
type Observation struct {
	TickerID uint      // Owning instrument identity (0 until resolved by the store)
	Symbol   string    // Instrument symbol (e.g., "LMCADS03")
	Date     time.Time // Observation day, truncated to UTC midnight
	PxLast   float64   // Last traded price
	PxOpen   *float64
	PxHigh   *float64
	PxLow    *float64
	PxVolume *float64

	// Description and Category seed a minimal instrument record when the
	// symbol is not tracked yet. They never update an existing instrument.
	Description string
	Category    string
}

// PricePoint is a single (date, price) pair of a historical series.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// Quote is a real-time snapshot row as reported by the terminal.
// LastPrice is nil when the terminal knows the symbol but has no price,
// Change and ChangePct are optional on every terminal variant.
type Quote struct {
	Symbol      string
	LastPrice   *float64
	Change      *float64
	ChangePct   *float64
	Description string
	Category    string
}

// TickerQuote is the unified live-price record returned by the engine.
type TickerQuote struct {
	Symbol          string
	Description     string
	ProductCategory string
	PxLast          float64
	Change          *float64
	ChangePct       *float64
	Timestamp       time.Time
	IsLive          bool
}

// SettlementPrice is an end-of-day official price, stored separately from
// intraday observations and keyed on (symbol, date).
type SettlementPrice struct {
	Symbol          string
	Date            time.Time
	SettlementPrice float64
	ProductCategory string
}

// ConnectionStatus reflects the last known state of the terminal session.
type ConnectionStatus struct {
	Available bool   // Terminal gateway is configured/reachable in principle
	Connected bool   // A session is currently established
	Message   string // Human readable status
}

// MarketStatus describes whether the exchange is currently trading.
type MarketStatus struct {
	IsOpen    bool
	Message   string
	NextOpen  *time.Time
	NextClose *time.Time
}
