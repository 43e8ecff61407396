// Package adapters provides the repository implementations for the tickers feature.
package adapters

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	pricesadapters "metals_backend/internal/feature/prices/adapters"
	"metals_backend/internal/feature/tickers/domain/entity"
	"metals_backend/internal/feature/tickers/usecase"
)

type tickerGorm struct {
	db *gorm.DB
}

var _ usecase.TickerRepository = (*tickerGorm)(nil)

// NewTickerRepository creates the gorm-backed instrument repository.
func NewTickerRepository(db *gorm.DB) *tickerGorm {
	return &tickerGorm{db: db}
}

// List returns all instruments ordered by category then symbol, optionally
// filtered by product category.
func (r *tickerGorm) List(ctx context.Context, category string) ([]entity.Ticker, error) {
	q := r.db.WithContext(ctx).Order("product_category ASC, symbol ASC")
	if category != "" {
		q = q.Where("product_category = ?", category)
	}
	var tickers []entity.Ticker
	if err := q.Find(&tickers).Error; err != nil {
		return nil, err
	}
	return tickers, nil
}

func (r *tickerGorm) FindByID(ctx context.Context, id uint) (*entity.Ticker, error) {
	var ticker entity.Ticker
	err := r.db.WithContext(ctx).First(&ticker, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticker, nil
}

func (r *tickerGorm) FindBySymbol(ctx context.Context, symbol string) (*entity.Ticker, error) {
	var ticker entity.Ticker
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&ticker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticker, nil
}

func (r *tickerGorm) Create(ctx context.Context, ticker *entity.Ticker) error {
	return r.db.WithContext(ctx).Create(ticker).Error
}

func (r *tickerGorm) Update(ctx context.Context, ticker *entity.Ticker) error {
	return r.db.WithContext(ctx).Save(ticker).Error
}

// DeleteWithPrices removes the instrument together with every price row it
// owns, in one transaction. Price rows are never deleted on their own.
func (r *tickerGorm) DeleteWithPrices(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticker_id = ?", id).Delete(&pricesadapters.PriceModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Ticker{}, id).Error
	})
}

// SearchLike returns case-insensitive substring matches over symbol,
// description and category. Relevance ranking happens in the usecase.
func (r *tickerGorm) SearchLike(ctx context.Context, query string) ([]entity.Ticker, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var tickers []entity.Ticker
	if err := r.db.WithContext(ctx).
		Where("LOWER(symbol) LIKE ? OR LOWER(description) LIKE ? OR LOWER(product_category) LIKE ?",
			pattern, pattern, pattern).
		Find(&tickers).Error; err != nil {
		return nil, err
	}
	return tickers, nil
}

// Categories returns the distinct product categories in use, sorted.
func (r *tickerGorm) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Ticker{}).
		Distinct("product_category").
		Order("product_category ASC").
		Pluck("product_category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// LatestPrices joins every instrument with its most recent observation.
func (r *tickerGorm) LatestPrices(ctx context.Context, category string) ([]usecase.LatestPriceRow, error) {
	q := r.db.WithContext(ctx).
		Table("tickers t").
		Select(`t.id AS ticker_id, t.symbol, t.description, t.product_category,
			p.px_last, p.date, p.px_open, p.px_high, p.px_low`).
		Joins(`LEFT JOIN price_data p ON p.ticker_id = t.id
			AND p.date = (SELECT MAX(date) FROM price_data WHERE ticker_id = t.id)`).
		Order("t.product_category ASC, t.symbol ASC")
	if category != "" {
		q = q.Where("t.product_category = ?", category)
	}

	var rows []usecase.LatestPriceRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
