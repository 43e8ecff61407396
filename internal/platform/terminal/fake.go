package terminal

import (
	"context"
	"hash/fnv"
	"time"

	"metals_backend/internal/feature/prices/domain/entity"
	"metals_backend/internal/feature/prices/usecase"
)

// Fake is an offline stand-in for the terminal gateway. It answers every
// symbol with a deterministic price derived from the symbol name, which
// makes local runs and demos reproducible without a terminal license.
type Fake struct{}

var _ usecase.PriceProvider = (*Fake)(nil)

// NewFake creates the offline provider.
func NewFake() *Fake {
	return &Fake{}
}

// Status always reports a connected fake session.
func (f *Fake) Status() entity.ConnectionStatus {
	return entity.ConnectionStatus{
		Available: true,
		Connected: true,
		Message:   "Fake terminal provider (TERMINAL_MODE=fake)",
	}
}

// Snapshot answers every requested symbol with its base price.
func (f *Fake) Snapshot(_ context.Context, symbols []string) ([]entity.Quote, error) {
	quotes := make([]entity.Quote, 0, len(symbols))
	for _, s := range symbols {
		price := basePrice(s)
		change := price * 0.004
		pct := 0.4
		quotes = append(quotes, entity.Quote{
			Symbol:      s,
			LastPrice:   &price,
			Change:      &change,
			ChangePct:   &pct,
			Description: s + " (fake)",
			Category:    "OTHER",
		})
	}
	return quotes, nil
}

// HistoricalRange returns one point per weekday in [start, end] with a small
// deterministic drift around the symbol's base price.
func (f *Fake) HistoricalRange(_ context.Context, symbol string, start, end time.Time) ([]entity.PricePoint, error) {
	var points []entity.PricePoint
	base := basePrice(symbol)
	for d, i := start.UTC(), 0; !d.After(end.UTC()); d, i = d.AddDate(0, 0, 1), i+1 {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		drift := float64(i%7-3) * base * 0.002
		points = append(points, entity.PricePoint{
			Date:  time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			Price: base + drift,
		})
	}
	return points, nil
}

// basePrice maps a symbol to a stable price in the 1000-11000 range.
func basePrice(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 1000 + float64(h.Sum32()%10000)
}
