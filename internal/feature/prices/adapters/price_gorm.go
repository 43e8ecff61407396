// Package adapters provides the persistence implementations for the prices feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"metals_backend/internal/feature/prices/domain/entity"
	"metals_backend/internal/feature/prices/usecase"
	tickerentity "metals_backend/internal/feature/tickers/domain/entity"
)

type priceGorm struct {
	db *gorm.DB
}

var _ usecase.ObservationRepository = (*priceGorm)(nil)

// NewPriceRepository creates the gorm-backed observation repository.
func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

// PriceModel maps the price_data table. (TickerID, Date) is the upsert key:
// at most one observation per instrument per day.
type PriceModel struct {
	ID       uint      `gorm:"primaryKey"`
	TickerID uint      `gorm:"not null;uniqueIndex:price_ticker_date,priority:1"`
	Symbol   string    `gorm:"size:32;not null;index"`
	Date     time.Time `gorm:"not null;uniqueIndex:price_ticker_date,priority:2"`
	PxLast   float64   `gorm:"not null"`
	PxOpen   *float64
	PxHigh   *float64
	PxLow    *float64
	PxVolume *float64
}

func (PriceModel) TableName() string {
	return "price_data"
}

func toModel(e entity.Observation) PriceModel {
	return PriceModel{
		TickerID: e.TickerID,
		Symbol:   e.Symbol,
		Date:     e.Date,
		PxLast:   e.PxLast,
		PxOpen:   e.PxOpen,
		PxHigh:   e.PxHigh,
		PxLow:    e.PxLow,
		PxVolume: e.PxVolume,
	}
}

func toEntity(m PriceModel) entity.Observation {
	return entity.Observation{
		TickerID: m.TickerID,
		Symbol:   m.Symbol,
		Date:     m.Date,
		PxLast:   m.PxLast,
		PxOpen:   m.PxOpen,
		PxHigh:   m.PxHigh,
		PxLow:    m.PxLow,
		PxVolume: m.PxVolume,
	}
}

// UpsertBatch merges observations into the store. Each observation is
// resolved to an instrument identity, creating a minimal ticker row when the
// symbol is entirely new; existing (ticker_id, date) rows only get px_last
// overwritten. Re-merging the same batch is a no-op beyond the latest write.
func (r *priceGorm) UpsertBatch(ctx context.Context, observations []entity.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, obs := range observations {
			tickerID, err := resolveTickerID(tx, obs)
			if err != nil {
				return err
			}

			m := toModel(obs)
			m.TickerID = tickerID
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "ticker_id"}, {Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{"px_last"}),
			}).Create(&m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// resolveTickerID looks up the instrument for an observation, creating a
// minimal record on the fly for unknown symbols.
func resolveTickerID(tx *gorm.DB, obs entity.Observation) (uint, error) {
	if obs.TickerID != 0 {
		return obs.TickerID, nil
	}

	var ticker tickerentity.Ticker
	err := tx.Where("symbol = ?", obs.Symbol).First(&ticker).Error
	if err == nil {
		return ticker.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	ticker = tickerentity.Ticker{
		Symbol:          obs.Symbol,
		Description:     obs.Description,
		ProductCategory: categoryOrDefault(obs.Category),
	}
	if err := tx.Create(&ticker).Error; err != nil {
		return 0, err
	}
	return ticker.ID, nil
}

func categoryOrDefault(category string) string {
	if category == "" {
		return "OTHER"
	}
	return category
}

// FindRange returns all observations for symbol within [start, end],
// ascending by date.
func (r *priceGorm) FindRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.Observation, error) {
	var rows []PriceModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ? AND date >= ? AND date <= ?", symbol, start, end).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Observation, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// FindByTicker returns observations for an instrument identity, newest
// first, with optional bounds and row limit.
func (r *priceGorm) FindByTicker(ctx context.Context, tickerID uint, start, end *time.Time, limit int) ([]entity.Observation, error) {
	q := r.db.WithContext(ctx).Where("ticker_id = ?", tickerID)
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date <= ?", *end)
	}
	q = q.Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []PriceModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Observation, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
