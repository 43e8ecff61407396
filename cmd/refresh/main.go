// Command refresh backfills a year of history for the configured symbol
// sets plus every tracked ticker. It is meant for cron or manual runs; the
// server itself never polls.
package main

import (
	"context"
	"log"
	"time"

	"metals_backend/internal/app/di"
	pricesadapters "metals_backend/internal/feature/prices/adapters"
	pricesusecase "metals_backend/internal/feature/prices/usecase"
	tickersadapters "metals_backend/internal/feature/tickers/adapters"
	infradb "metals_backend/internal/platform/db"
	"metals_backend/internal/shared/ratelimiter"
)

const backfillDays = 365

func main() {
	db := infradb.OpenDB()
	priceRepo := pricesadapters.NewPriceRepository(db)
	settlementRepo := pricesadapters.NewSettlementRepository(db)
	tickerRepo := tickersadapters.NewTickerRepository(db)

	provider := di.NewPriceProvider()
	uc := pricesusecase.NewPricesUsecase(provider, priceRepo, settlementRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	symbols, precious := di.LoadSymbolSets()
	symbols = append(symbols, precious...)
	tracked, err := tickerRepo.List(ctx, "")
	if err != nil {
		log.Fatal("failed to load tracked tickers:", err)
	}
	seen := map[string]struct{}{}
	for _, s := range symbols {
		seen[s] = struct{}{}
	}
	for _, t := range tracked {
		if _, ok := seen[t.Symbol]; !ok {
			symbols = append(symbols, t.Symbol)
		}
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -backfillDays)

	// The terminal throttles historical requests, pace them
	limiter := ratelimiter.NewRateLimiter(30, time.Minute)
	for _, symbol := range symbols {
		limiter.WaitIfNeeded()
		points, err := uc.GetHistoricalRange(ctx, symbol, start, end)
		if err != nil {
			log.Printf("refresh failed for %s: %v", symbol, err)
			continue
		}
		log.Printf("refreshed %s: %d points", symbol, len(points))
	}
	log.Println("refresh ok")
}
