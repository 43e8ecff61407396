package usecase

import "errors"

var (
	// ErrTickerNotFound is returned for operations on a missing instrument id.
	ErrTickerNotFound = errors.New("ticker not found")
	// ErrTickerExists reports the idempotent "already tracked" outcome of Add.
	ErrTickerExists = errors.New("ticker already exists")
	// ErrSymbolUnknown rejects symbols the terminal returned no price for.
	ErrSymbolUnknown = errors.New("symbol has no price data on the terminal")
	// ErrInstrumentExists rejects duplicate custom instrument names.
	ErrInstrumentExists = errors.New("custom instrument already exists")
	// ErrInvalidDefinition rejects malformed custom instrument definitions.
	ErrInvalidDefinition = errors.New("invalid custom instrument definition")
)
