// Package handler provides the HTTP handlers for the prices feature.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"metals_backend/internal/feature/prices/domain/entity"
	"metals_backend/internal/feature/prices/transport/http/dto"
)

const (
	dateLayout = "2006-01-02"
	// MaxHistoricalDays bounds the days query parameter.
	MaxHistoricalDays = 365
)

// PricesUsecase is the engine interface consumed by the handlers.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type PricesUsecase interface {
	GetLatestQuotes(ctx context.Context, symbols []string) ([]entity.TickerQuote, error)
	GetHistoricalRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.PricePoint, error)
	Settlements(ctx context.Context, symbol string, start, end time.Time) ([]entity.SettlementPrice, error)
	RecordSettlements(ctx context.Context, settlements []entity.SettlementPrice) error
	MarketStatus() entity.MarketStatus
}

// PriceHandler serves the /prices endpoints.
type PriceHandler struct {
	uc       PricesUsecase
	base     []string
	precious []string
	now      func() time.Time
}

// NewPriceHandler creates a PriceHandler with the configured default symbol
// sets (6 base metals, extended by 4 precious metals on request).
func NewPriceHandler(uc PricesUsecase, base, precious []string) *PriceHandler {
	return &PriceHandler{uc: uc, base: base, precious: precious, now: time.Now}
}

// GetLatest handles GET /prices/latest?symbols=<csv>&include_precious=<bool>.
// A terminal outage yields an empty array, never a 5xx.
func (h *PriceHandler) GetLatest(c *gin.Context) {
	var symbols []string
	if csv := c.Query("symbols"); csv != "" {
		for _, s := range strings.Split(csv, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	} else {
		symbols = append(symbols, h.base...)
		if c.Query("include_precious") == "true" {
			symbols = append(symbols, h.precious...)
		}
	}

	quotes, err := h.uc.GetLatestQuotes(c.Request.Context(), symbols)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.TickerQuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, dto.TickerQuoteResponse{
			Symbol:          q.Symbol,
			Description:     q.Description,
			ProductCategory: q.ProductCategory,
			PxLast:          q.PxLast,
			Change:          q.Change,
			ChangePct:       q.ChangePct,
			Timestamp:       q.Timestamp.UTC().Format(time.RFC3339),
			IsLive:          q.IsLive,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetHistorical handles GET /prices/historical/:symbol?days=<1..365>.
func (h *PriceHandler) GetHistorical(c *gin.Context) {
	symbol := c.Param("symbol")

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > MaxHistoricalDays {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "days must be between 1 and 365"})
		return
	}

	end := h.now().UTC()
	start := end.AddDate(0, 0, -days)

	points, err := h.uc.GetHistoricalRange(c.Request.Context(), symbol, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := dto.HistoricalResponse{
		Symbol:     symbol,
		DataPoints: make([]dto.DataPoint, 0, len(points)),
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
	}
	for _, p := range points {
		out.DataPoints = append(out.DataPoints, dto.DataPoint{
			Date:  p.Date.UTC().Format(dateLayout),
			Price: p.Price,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetMarketStatus handles GET /prices/market-status.
func (h *PriceHandler) GetMarketStatus(c *gin.Context) {
	status := h.uc.MarketStatus()
	c.JSON(http.StatusOK, dto.MarketStatusResponse{
		IsOpen:    status.IsOpen,
		Message:   status.Message,
		NextOpen:  formatTimePtr(status.NextOpen),
		NextClose: formatTimePtr(status.NextClose),
	})
}

// GetSymbols handles GET /prices/symbols with the configured catalog.
func (h *PriceHandler) GetSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SymbolCatalog{
		BaseMetals:     h.base,
		PreciousMetals: h.precious,
	})
}

// GetSettlements handles GET /prices/settlements/:symbol?start&end.
func (h *PriceHandler) GetSettlements(c *gin.Context) {
	symbol := c.Param("symbol")

	end := h.now().UTC()
	start := end.AddDate(0, 0, -30)
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "start must be YYYY-MM-DD"})
			return
		}
		start = t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "end must be YYYY-MM-DD"})
			return
		}
		end = t
	}

	settlements, err := h.uc.Settlements(c.Request.Context(), symbol, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.SettlementItem, 0, len(settlements))
	for _, s := range settlements {
		out = append(out, dto.SettlementItem{
			Symbol:          s.Symbol,
			Date:            s.Date.UTC().Format(dateLayout),
			SettlementPrice: s.SettlementPrice,
			ProductCategory: s.ProductCategory,
		})
	}
	c.JSON(http.StatusOK, out)
}

// PostSettlements handles POST /prices/settlements for operator ingest.
func (h *PriceHandler) PostSettlements(c *gin.Context) {
	var items []dto.SettlementItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settlements := make([]entity.SettlementPrice, 0, len(items))
	for _, item := range items {
		d, err := time.Parse(dateLayout, item.Date)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		settlements = append(settlements, entity.SettlementPrice{
			Symbol:          item.Symbol,
			Date:            d,
			SettlementPrice: item.SettlementPrice,
			ProductCategory: item.ProductCategory,
		})
	}

	if err := h.uc.RecordSettlements(c.Request.Context(), settlements); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recorded": len(settlements)})
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
