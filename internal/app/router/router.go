// Package router builds the HTTP route table.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	priceshandler "metals_backend/internal/feature/prices/transport/handler"
	tickershandler "metals_backend/internal/feature/tickers/transport/handler"
	"metals_backend/internal/platform/http/handler"
)

// NewRouter wires all endpoints. The API serves a browser dashboard, so
// CORS is enabled for the whole surface.
func NewRouter(prices *priceshandler.PriceHandler, tickers *tickershandler.TickerHandler,
	custom *tickershandler.CustomHandler, health *handler.HealthHandler) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/healthz", handler.Healthz)

	hg := r.Group("/health")
	{
		hg.GET("/", health.Health)
		hg.GET("/db", health.HealthDB)
	}

	pg := r.Group("/prices")
	{
		pg.GET("/latest", prices.GetLatest)
		pg.GET("/historical/:symbol", prices.GetHistorical)
		pg.GET("/market-status", prices.GetMarketStatus)
		pg.GET("/symbols", prices.GetSymbols)
		pg.GET("/settlements/:symbol", prices.GetSettlements)
		pg.POST("/settlements", prices.PostSettlements)
	}

	tg := r.Group("/tickers")
	{
		tg.GET("", tickers.List)
		tg.POST("", tickers.Create)
		tg.GET("/search", tickers.Search)
		tg.GET("/categories", tickers.Categories)
		tg.GET("/latest-prices", tickers.LatestPrices)
		tg.GET("/:id", tickers.Get)
		tg.PUT("/:id", tickers.Update)
		tg.DELETE("/:id", tickers.Delete)
		tg.GET("/:id/prices", tickers.Prices)
	}

	cg := r.Group("/custom-instruments")
	{
		cg.GET("", custom.List)
		cg.POST("", custom.Create)
		cg.DELETE("/:id", custom.Delete)
	}

	return r
}
