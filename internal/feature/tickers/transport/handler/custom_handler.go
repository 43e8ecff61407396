package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"metals_backend/internal/feature/tickers/domain/entity"
	"metals_backend/internal/feature/tickers/transport/http/dto"
	"metals_backend/internal/feature/tickers/usecase"
)

// CustomUsecase manages operator-defined derived instruments.
type CustomUsecase interface {
	Add(ctx context.Context, name, instrumentType string, definition json.RawMessage) (*entity.CustomInstrument, error)
	List(ctx context.Context) ([]entity.CustomInstrument, error)
	Remove(ctx context.Context, id uint) error
}

// CustomHandler serves the /custom-instruments endpoints.
type CustomHandler struct {
	uc CustomUsecase
}

// NewCustomHandler creates a CustomHandler with the given usecase.
func NewCustomHandler(uc CustomUsecase) *CustomHandler {
	return &CustomHandler{uc: uc}
}

// Create handles POST /custom-instruments.
func (h *CustomHandler) Create(c *gin.Context) {
	var req dto.CreateCustomInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instrument, err := h.uc.Add(c.Request.Context(), req.Name, req.Type, req.Definition)
	switch {
	case errors.Is(err, usecase.ErrInstrumentExists):
		c.JSON(http.StatusOK, gin.H{
			"message":    "custom instrument already exists",
			"instrument": toCustomResponse(*instrument),
		})
	case errors.Is(err, usecase.ErrInvalidDefinition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusCreated, toCustomResponse(*instrument))
	}
}

// List handles GET /custom-instruments.
func (h *CustomHandler) List(c *gin.Context) {
	instruments, err := h.uc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.CustomInstrumentResponse, 0, len(instruments))
	for _, instrument := range instruments {
		out = append(out, toCustomResponse(instrument))
	}
	c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /custom-instruments/:id.
func (h *CustomHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.uc.Remove(c.Request.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrTickerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "custom instrument not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func toCustomResponse(instrument entity.CustomInstrument) dto.CustomInstrumentResponse {
	return dto.CustomInstrumentResponse{
		ID:         instrument.ID,
		Name:       instrument.Name,
		Type:       instrument.Type,
		Definition: json.RawMessage(instrument.Definition),
		CreatedAt:  instrument.CreatedAt.UTC().Format(time.RFC3339),
	}
}
