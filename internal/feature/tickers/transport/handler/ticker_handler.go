// Package handler provides the HTTP handlers for the tickers feature.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	pricesentity "metals_backend/internal/feature/prices/domain/entity"
	"metals_backend/internal/feature/tickers/domain/entity"
	"metals_backend/internal/feature/tickers/transport/http/dto"
	"metals_backend/internal/feature/tickers/usecase"
)

const dateLayout = "2006-01-02"

// TickerUsecase is the registry interface consumed by the handlers.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type TickerUsecase interface {
	List(ctx context.Context, category string) ([]entity.Ticker, error)
	Get(ctx context.Context, id uint) (*entity.Ticker, error)
	Add(ctx context.Context, symbol, description, category string) (*entity.Ticker, error)
	Update(ctx context.Context, id uint, description, category *string) (*entity.Ticker, error)
	Remove(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, limit int) ([]entity.Ticker, error)
	Categories(ctx context.Context) ([]string, error)
	PricesFor(ctx context.Context, id uint, start, end *time.Time, limit int) (*entity.Ticker, []pricesentity.Observation, error)
	LatestPrices(ctx context.Context, category string) ([]usecase.LatestPrice, error)
}

// TickerHandler serves the /tickers endpoints.
type TickerHandler struct {
	uc TickerUsecase
}

// NewTickerHandler creates a TickerHandler with the given usecase.
func NewTickerHandler(uc TickerUsecase) *TickerHandler {
	return &TickerHandler{uc: uc}
}

// List handles GET /tickers?product_category=<cat>.
func (h *TickerHandler) List(c *gin.Context) {
	tickers, err := h.uc.List(c.Request.Context(), c.Query("product_category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.TickerResponse, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, toTickerResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /tickers. The symbol is validated against the
// terminal; an already tracked symbol reports 200 with the existing record
// instead of duplicating it.
func (h *TickerHandler) Create(c *gin.Context) {
	var req dto.CreateTickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticker, err := h.uc.Add(c.Request.Context(), req.Symbol, req.Description, req.ProductCategory)
	switch {
	case errors.Is(err, usecase.ErrTickerExists):
		c.JSON(http.StatusOK, gin.H{
			"message": "ticker already exists",
			"ticker":  toTickerResponse(*ticker),
		})
	case errors.Is(err, usecase.ErrSymbolUnknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusCreated, toTickerResponse(*ticker))
	}
}

// Get handles GET /tickers/:id.
func (h *TickerHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ticker, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		respondTickerError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTickerResponse(*ticker))
}

// Update handles PUT /tickers/:id.
func (h *TickerHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateTickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ticker, err := h.uc.Update(c.Request.Context(), id, req.Description, req.ProductCategory)
	if err != nil {
		respondTickerError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTickerResponse(*ticker))
}

// Delete handles DELETE /tickers/:id, cascading to the price rows.
func (h *TickerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.uc.Remove(c.Request.Context(), id); err != nil {
		respondTickerError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search handles GET /tickers/search?q=<query>&limit=<n>.
func (h *TickerHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	tickers, err := h.uc.Search(c.Request.Context(), q, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.TickerResponse, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, toTickerResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

// Categories handles GET /tickers/categories.
func (h *TickerHandler) Categories(c *gin.Context) {
	categories, err := h.uc.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Prices handles GET /tickers/:id/prices?start&end&limit.
func (h *TickerHandler) Prices(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var start, end *time.Time
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "start must be YYYY-MM-DD"})
			return
		}
		start = &t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "end must be YYYY-MM-DD"})
			return
		}
		end = &t
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	ticker, observations, err := h.uc.PricesFor(c.Request.Context(), id, start, end, limit)
	if err != nil {
		respondTickerError(c, err)
		return
	}

	out := dto.PricesResponse{
		Ticker:       toTickerResponse(*ticker),
		Prices:       make([]dto.PriceRow, 0, len(observations)),
		TotalRecords: len(observations),
	}
	for _, obs := range observations {
		out.Prices = append(out.Prices, dto.PriceRow{
			Date:     obs.Date.UTC().Format(dateLayout),
			PxLast:   obs.PxLast,
			PxOpen:   obs.PxOpen,
			PxHigh:   obs.PxHigh,
			PxLow:    obs.PxLow,
			PxVolume: obs.PxVolume,
		})
	}
	c.JSON(http.StatusOK, out)
}

// LatestPrices handles GET /tickers/latest-prices?product_category=<cat>.
func (h *TickerHandler) LatestPrices(c *gin.Context) {
	rows, err := h.uc.LatestPrices(c.Request.Context(), c.Query("product_category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.LatestPriceResponse, 0, len(rows))
	for _, row := range rows {
		item := dto.LatestPriceResponse{
			TickerID:        row.TickerID,
			Symbol:          row.Symbol,
			Description:     row.Description,
			ProductCategory: row.ProductCategory,
			PxLast:          row.PxLast,
			Change:          row.Change,
			ChangePct:       row.ChangePct,
		}
		if row.Date != nil {
			d := row.Date.UTC().Format(dateLayout)
			item.Date = &d
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

func toTickerResponse(t entity.Ticker) dto.TickerResponse {
	return dto.TickerResponse{
		ID:              t.ID,
		Symbol:          t.Symbol,
		Description:     t.Description,
		ProductCategory: t.ProductCategory,
		IsCustom:        t.IsCustom,
		CreatedAt:       t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

func respondTickerError(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrTickerNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticker not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
