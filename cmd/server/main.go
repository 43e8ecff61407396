package main

import (
	"log"
	"os"

	redisv9 "github.com/redis/go-redis/v9"

	"metals_backend/internal/app/di"
	"metals_backend/internal/app/router"
	pricesadapters "metals_backend/internal/feature/prices/adapters"
	priceshandler "metals_backend/internal/feature/prices/transport/handler"
	pricesusecase "metals_backend/internal/feature/prices/usecase"
	tickersadapters "metals_backend/internal/feature/tickers/adapters"
	tickershandler "metals_backend/internal/feature/tickers/transport/handler"
	tickersusecase "metals_backend/internal/feature/tickers/usecase"
	"metals_backend/internal/platform/cache"
	infradb "metals_backend/internal/platform/db"
	healthhandler "metals_backend/internal/platform/http/handler"
	infraredis "metals_backend/internal/platform/redis"
)

func main() {
	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	priceRepo := pricesadapters.NewPriceRepository(db)
	settlementRepo := pricesadapters.NewSettlementRepository(db)
	tickerRepo := tickersadapters.NewTickerRepository(db)
	customRepo := tickersadapters.NewCustomInstrumentRepository(db)

	// Ranged lookups go through the Redis cache when available
	cachedPriceRepo := cache.NewCachingPriceRepository(rdb, 0, priceRepo, "prices")

	// Provider
	provider := di.NewPriceProvider()

	// Usecase
	pricesUC := pricesusecase.NewPricesUsecase(provider, cachedPriceRepo, settlementRepo)
	tickersUC := tickersusecase.NewTickerUsecase(tickerRepo, pricesUC, priceRepo)
	customUC := tickersusecase.NewCustomUsecase(customRepo)

	// Handler
	base, precious := di.LoadSymbolSets()
	pricesH := priceshandler.NewPriceHandler(pricesUC, base, precious)
	tickersH := tickershandler.NewTickerHandler(tickersUC)
	customH := tickershandler.NewCustomHandler(customUC)
	healthH := healthhandler.NewHealthHandler(db, pricesUC)

	r := router.NewRouter(pricesH, tickersH, customH, healthH)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
