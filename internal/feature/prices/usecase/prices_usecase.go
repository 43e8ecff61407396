// Package usecase implements the price cache/reconciliation engine.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"metals_backend/internal/feature/prices/domain/entity"
)

// sufficiencyRatio is the cached-coverage threshold below which a historical
// request goes out to the terminal. 80% of the calendar-day span tolerates
// weekends and holidays without a trading-day calendar.
const sufficiencyRatio = 0.8

// PriceProvider abstracts the external market-data terminal.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PriceProvider interface {
	// Status reports the last known session state without blocking.
	Status() entity.ConnectionStatus
	// Snapshot returns real-time quotes for the requested symbols. An
	// unreachable terminal or an unrecognized symbol yields a short or
	// empty result, not an error.
	Snapshot(ctx context.Context, symbols []string) ([]entity.Quote, error)
	// HistoricalRange returns daily prices for [start, end], ascending by
	// date, one entry per trading day the terminal reports.
	HistoricalRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.PricePoint, error)
}

// ObservationRepository abstracts the persistent price store.
type ObservationRepository interface {
	FindRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.Observation, error)
	UpsertBatch(ctx context.Context, observations []entity.Observation) error
}

// SettlementRepository abstracts the settlement price store.
type SettlementRepository interface {
	FindRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.SettlementPrice, error)
	UpsertBatch(ctx context.Context, settlements []entity.SettlementPrice) error
}

// PricesUsecase mediates between the terminal and the persistent store:
// it decides when cached data suffices, merges terminal responses
// idempotently, and synthesizes the unified records handlers return.
type PricesUsecase struct {
	provider    PriceProvider
	store       ObservationRepository
	settlements SettlementRepository
	now         func() time.Time
}

// NewPricesUsecase creates the engine over a terminal provider and store.
func NewPricesUsecase(provider PriceProvider, store ObservationRepository, settlements SettlementRepository) *PricesUsecase {
	return &PricesUsecase{
		provider:    provider,
		store:       store,
		settlements: settlements,
		now:         time.Now,
	}
}

// ProviderStatus exposes the terminal session state for health reporting.
func (u *PricesUsecase) ProviderStatus() entity.ConnectionStatus {
	return u.provider.Status()
}

// GetLatestQuotes fetches live prices for the given symbols. The snapshot is
// always as fresh as the terminal allows; there is no staleness window.
// Every priced quote is merged into the store before the result is returned,
// so observations survive even if the caller discards them. Symbols the
// terminal did not answer are omitted from the result.
func (u *PricesUsecase) GetLatestQuotes(ctx context.Context, symbols []string) ([]entity.TickerQuote, error) {
	quotes, err := u.provider.Snapshot(ctx, symbols)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	today := truncateToDay(now)

	observations := make([]entity.Observation, 0, len(quotes))
	out := make([]entity.TickerQuote, 0, len(quotes))
	for _, q := range quotes {
		if q.LastPrice == nil {
			// Known symbol without a price is "no data", not an error.
			continue
		}
		observations = append(observations, entity.Observation{
			Symbol:      q.Symbol,
			Date:        today,
			PxLast:      *q.LastPrice,
			Description: q.Description,
			Category:    q.Category,
		})
		out = append(out, entity.TickerQuote{
			Symbol:          q.Symbol,
			Description:     q.Description,
			ProductCategory: q.Category,
			PxLast:          *q.LastPrice,
			Change:          q.Change,
			ChangePct:       derivedChangePct(q),
			Timestamp:       now,
			IsLive:          true,
		})
	}

	if err := u.store.UpsertBatch(ctx, observations); err != nil {
		return nil, err
	}
	return out, nil
}

// GetHistoricalRange returns daily prices for symbol within [start, end],
// ascending by date. Cached rows are accepted as complete when they cover at
// least 80% of the calendar-day span; otherwise the terminal is consulted
// and its response merged into the store. An empty terminal response falls
// back to whatever the cache holds rather than failing.
func (u *PricesUsecase) GetHistoricalRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.PricePoint, error) {
	start = truncateToDay(start.UTC())
	end = truncateToDay(end.UTC())

	cached, err := u.store.FindRange(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	span := calendarDays(start, end)
	if float64(len(cached)) >= sufficiencyRatio*float64(span) {
		return observationPoints(cached), nil
	}

	fetched, err := u.provider.HistoricalRange(ctx, symbol, start, end)
	if err != nil {
		// Cancelled mid-flight: abandon without a partial merge.
		return nil, err
	}
	if len(fetched) == 0 {
		slog.Warn("terminal returned no historical data, serving cached rows",
			"symbol", symbol, "cached", len(cached), "span_days", span)
		return observationPoints(cached), nil
	}

	observations := make([]entity.Observation, 0, len(fetched))
	for _, p := range fetched {
		observations = append(observations, entity.Observation{
			Symbol: symbol,
			Date:   truncateToDay(p.Date.UTC()),
			PxLast: p.Price,
		})
	}
	if err := u.store.UpsertBatch(ctx, observations); err != nil {
		return nil, err
	}

	// Return the freshly fetched set, not a re-read of the merged store.
	return fetched, nil
}

// Settlements returns settlement prices for symbol within [start, end].
func (u *PricesUsecase) Settlements(ctx context.Context, symbol string, start, end time.Time) ([]entity.SettlementPrice, error) {
	return u.settlements.FindRange(ctx, symbol, truncateToDay(start.UTC()), truncateToDay(end.UTC()))
}

// RecordSettlements ingests operator-supplied settlement prices.
func (u *PricesUsecase) RecordSettlements(ctx context.Context, settlements []entity.SettlementPrice) error {
	for i := range settlements {
		settlements[i].Date = truncateToDay(settlements[i].Date.UTC())
	}
	return u.settlements.UpsertBatch(ctx, settlements)
}

// MarketStatus reports whether the exchange is currently trading.
func (u *PricesUsecase) MarketStatus() entity.MarketStatus {
	return MarketStatusAt(u.now().UTC())
}

// derivedChangePct passes through the terminal's change_pct when present and
// otherwise computes (last-open)/open*100. Terminal variants disagree on
// whether the field is ever populated, so it is always treated as optional.
func derivedChangePct(q entity.Quote) *float64 {
	if q.ChangePct != nil {
		return q.ChangePct
	}
	if q.Change == nil || q.LastPrice == nil {
		return nil
	}
	open := *q.LastPrice - *q.Change
	pct := changePercent(*q.LastPrice, open)
	return &pct
}

// changePercent computes (last-open)/open*100, yielding 0 when open is zero.
func changePercent(last, open float64) float64 {
	if open == 0 {
		return 0
	}
	return (last - open) / open * 100
}

// calendarDays counts the inclusive calendar-day span of [start, end].
func calendarDays(start, end time.Time) int {
	return int(truncateToDay(end).Sub(truncateToDay(start)).Hours()/24) + 1
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func observationPoints(observations []entity.Observation) []entity.PricePoint {
	points := make([]entity.PricePoint, 0, len(observations))
	for _, obs := range observations {
		points = append(points, entity.PricePoint{Date: obs.Date, Price: obs.PxLast})
	}
	return points
}
