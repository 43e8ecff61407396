// Package entity defines the domain models for the tickers feature.
package entity

import "time"

// Ticker is a tracked instrument and its metadata. Symbol is globally
// unique; ID is the integer identity referenced by all price rows.
type Ticker struct {
	ID              uint      `gorm:"primaryKey"`
	Symbol          string    `gorm:"size:32;not null;uniqueIndex"`
	Description     string    `gorm:"size:255;not null"`
	ProductCategory string    `gorm:"size:64;not null;default:OTHER"`
	IsCustom        bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Ticker) TableName() string {
	return "tickers"
}

// CustomInstrument is an operator-defined derived instrument: a spread over
// two underlying symbols or a weighted index of N symbols. Definition holds
// the opaque JSON description of the legs; it is never reconciled against
// the terminal.
type CustomInstrument struct {
	ID         uint      `gorm:"primaryKey"`
	Name       string    `gorm:"size:255;not null;uniqueIndex"`
	Type       string    `gorm:"size:32;not null"`
	Definition string    `gorm:"type:json;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (CustomInstrument) TableName() string {
	return "custom_instruments"
}

// Custom instrument types.
const (
	InstrumentTypeSpread        = "spread"
	InstrumentTypeWeightedIndex = "weighted_index"
)
