// Package usecase implements the instrument registry.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	pricesentity "metals_backend/internal/feature/prices/domain/entity"
	"metals_backend/internal/feature/tickers/domain/entity"
)

const (
	// DefaultSearchLimit is the result cap when the caller sends none.
	DefaultSearchLimit = 20
	// MaxSearchLimit is the hard result cap for searches.
	MaxSearchLimit = 100
	// DefaultPriceLimit caps ranged price lookups per ticker.
	DefaultPriceLimit = 500
)

// TickerRepository abstracts instrument persistence.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type TickerRepository interface {
	List(ctx context.Context, category string) ([]entity.Ticker, error)
	// FindByID and FindBySymbol return (nil, nil) when no row matches.
	FindByID(ctx context.Context, id uint) (*entity.Ticker, error)
	FindBySymbol(ctx context.Context, symbol string) (*entity.Ticker, error)
	Create(ctx context.Context, ticker *entity.Ticker) error
	Update(ctx context.Context, ticker *entity.Ticker) error
	// DeleteWithPrices removes the instrument and all of its price rows.
	DeleteWithPrices(ctx context.Context, id uint) error
	// SearchLike returns all case-insensitive substring matches over
	// symbol, description and category; ranking happens in the usecase.
	SearchLike(ctx context.Context, query string) ([]entity.Ticker, error)
	LatestPrices(ctx context.Context, category string) ([]LatestPriceRow, error)
	// Categories returns the distinct product categories in use, sorted.
	Categories(ctx context.Context) ([]string, error)
}

// QuoteService is the engine's provider-validation path: a live snapshot
// that also merges answered quotes into the store.
type QuoteService interface {
	GetLatestQuotes(ctx context.Context, symbols []string) ([]pricesentity.TickerQuote, error)
}

// ObservationReader serves the ranged price lookup per instrument.
type ObservationReader interface {
	FindByTicker(ctx context.Context, tickerID uint, start, end *time.Time, limit int) ([]pricesentity.Observation, error)
}

// LatestPriceRow is one ticker joined with its most recent observation.
// Price fields are nil for instruments without any observation yet.
type LatestPriceRow struct {
	TickerID        uint
	Symbol          string
	Description     string
	ProductCategory string
	PxLast          *float64
	Date            *time.Time
	PxOpen          *float64
	PxHigh          *float64
	PxLow           *float64
}

// LatestPrice is a LatestPriceRow with derived change fields.
type LatestPrice struct {
	LatestPriceRow
	Change    float64
	ChangePct float64
}

// TickerUsecase provides the instrument registry operations.
type TickerUsecase struct {
	repo   TickerRepository
	quotes QuoteService
	prices ObservationReader
}

// NewTickerUsecase creates a TickerUsecase over its collaborators.
func NewTickerUsecase(repo TickerRepository, quotes QuoteService, prices ObservationReader) *TickerUsecase {
	return &TickerUsecase{repo: repo, quotes: quotes, prices: prices}
}

// List returns all instruments, optionally filtered by product category.
func (u *TickerUsecase) List(ctx context.Context, category string) ([]entity.Ticker, error) {
	return u.repo.List(ctx, category)
}

// Categories lists the distinct product categories of tracked instruments.
func (u *TickerUsecase) Categories(ctx context.Context) ([]string, error) {
	return u.repo.Categories(ctx)
}

// Get returns one instrument by identity.
func (u *TickerUsecase) Get(ctx context.Context, id uint) (*entity.Ticker, error) {
	ticker, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticker == nil {
		return nil, ErrTickerNotFound
	}
	return ticker, nil
}

// Add registers a new instrument. The symbol is first validated through the
// engine's live snapshot; symbols the terminal returns no last price for are
// rejected. Adding an already tracked symbol reports ErrTickerExists along
// with the existing record instead of creating a duplicate.
//
// The validation snapshot itself merges into the store and may auto-create a
// minimal instrument row for the symbol; Add then fills in the caller's (or
// the terminal's) description and category on that row.
func (u *TickerUsecase) Add(ctx context.Context, symbol, description, category string) (*entity.Ticker, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrSymbolUnknown)
	}

	if existing, err := u.repo.FindBySymbol(ctx, symbol); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, ErrTickerExists
	}

	quotes, err := u.quotes.GetLatestQuotes(ctx, []string{symbol})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolUnknown, symbol)
	}
	quote := quotes[0]

	if description == "" {
		description = quote.Description
	}
	if description == "" {
		description = symbol + " Price"
	}
	if category == "" {
		category = quote.ProductCategory
	}
	if category == "" {
		category = "OTHER"
	}

	// The snapshot merge may have created the minimal row already.
	ticker, err := u.repo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if ticker == nil {
		ticker = &entity.Ticker{Symbol: symbol}
		ticker.Description = description
		ticker.ProductCategory = category
		ticker.IsCustom = true
		if err := u.repo.Create(ctx, ticker); err != nil {
			return nil, err
		}
		return ticker, nil
	}

	ticker.Description = description
	ticker.ProductCategory = category
	ticker.IsCustom = true
	if err := u.repo.Update(ctx, ticker); err != nil {
		return nil, err
	}
	slog.Info("tracked new instrument", "symbol", symbol, "category", category)
	return ticker, nil
}

// Update changes description and/or category of an instrument.
func (u *TickerUsecase) Update(ctx context.Context, id uint, description, category *string) (*entity.Ticker, error) {
	ticker, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if description == nil && category == nil {
		return ticker, nil
	}
	if description != nil {
		ticker.Description = *description
	}
	if category != nil {
		ticker.ProductCategory = *category
	}
	if err := u.repo.Update(ctx, ticker); err != nil {
		return nil, err
	}
	return ticker, nil
}

// Remove deletes an instrument and cascades deletion of its price rows.
func (u *TickerUsecase) Remove(ctx context.Context, id uint) error {
	ticker, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if ticker == nil {
		return ErrTickerNotFound
	}
	if err := u.repo.DeleteWithPrices(ctx, id); err != nil {
		return err
	}
	slog.Info("removed instrument", "symbol", ticker.Symbol, "id", id)
	return nil
}

// Search matches query case-insensitively against symbol, description and
// category, ranking exact symbol matches first, then symbol prefixes, then
// description prefixes, then any other match; ties break lexicographically
// by symbol.
func (u *TickerUsecase) Search(ctx context.Context, query string, limit int) ([]entity.Ticker, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	matches, err := u.repo.SearchLike(ctx, query)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := searchRank(matches[i], q), searchRank(matches[j], q)
		if ri != rj {
			return ri < rj
		}
		return matches[i].Symbol < matches[j].Symbol
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func searchRank(t entity.Ticker, q string) int {
	symbol := strings.ToLower(t.Symbol)
	description := strings.ToLower(t.Description)
	switch {
	case symbol == q:
		return 0
	case strings.HasPrefix(symbol, q):
		return 1
	case strings.HasPrefix(description, q):
		return 2
	default:
		return 3
	}
}

// PricesFor returns an instrument and its observations, newest first.
func (u *TickerUsecase) PricesFor(ctx context.Context, id uint, start, end *time.Time, limit int) (*entity.Ticker, []pricesentity.Observation, error) {
	ticker, err := u.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if limit <= 0 || limit > DefaultPriceLimit {
		limit = DefaultPriceLimit
	}
	observations, err := u.prices.FindByTicker(ctx, id, start, end, limit)
	if err != nil {
		return nil, nil, err
	}
	return ticker, observations, nil
}

// LatestPrices lists every instrument with its most recent stored
// observation and derived change fields.
func (u *TickerUsecase) LatestPrices(ctx context.Context, category string) ([]LatestPrice, error) {
	rows, err := u.repo.LatestPrices(ctx, category)
	if err != nil {
		return nil, err
	}
	out := make([]LatestPrice, 0, len(rows))
	for _, row := range rows {
		lp := LatestPrice{LatestPriceRow: row}
		if row.PxLast != nil && row.PxOpen != nil {
			lp.Change = *row.PxLast - *row.PxOpen
			if *row.PxOpen != 0 {
				lp.ChangePct = lp.Change / *row.PxOpen * 100
			}
		}
		out = append(out, lp)
	}
	return out, nil
}
