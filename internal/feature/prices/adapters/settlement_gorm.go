package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"metals_backend/internal/feature/prices/domain/entity"
	"metals_backend/internal/feature/prices/usecase"
)

type settlementGorm struct {
	db *gorm.DB
}

var _ usecase.SettlementRepository = (*settlementGorm)(nil)

// NewSettlementRepository creates the gorm-backed settlement price repository.
func NewSettlementRepository(db *gorm.DB) *settlementGorm {
	return &settlementGorm{db: db}
}

// SettlementModel maps the settlement_prices table, keyed on (symbol, date).
type SettlementModel struct {
	ID              uint      `gorm:"primaryKey"`
	Symbol          string    `gorm:"size:32;not null;uniqueIndex:settlement_sym_date,priority:1"`
	Date            time.Time `gorm:"not null;uniqueIndex:settlement_sym_date,priority:2"`
	SettlementPrice float64   `gorm:"not null"`
	ProductCategory string    `gorm:"size:64;not null"`
}

func (SettlementModel) TableName() string {
	return "settlement_prices"
}

// UpsertBatch records settlement prices, overwriting the price on an
// existing (symbol, date) key.
func (r *settlementGorm) UpsertBatch(ctx context.Context, settlements []entity.SettlementPrice) error {
	if len(settlements) == 0 {
		return nil
	}
	ms := make([]SettlementModel, 0, len(settlements))
	for _, s := range settlements {
		ms = append(ms, SettlementModel{
			Symbol:          s.Symbol,
			Date:            s.Date,
			SettlementPrice: s.SettlementPrice,
			ProductCategory: categoryOrDefault(s.ProductCategory),
		})
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"settlement_price"}),
	}).Create(&ms).Error
}

// FindRange returns settlement prices for symbol within [start, end],
// ascending by date.
func (r *settlementGorm) FindRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.SettlementPrice, error) {
	var rows []SettlementModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ? AND date >= ? AND date <= ?", symbol, start, end).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.SettlementPrice, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.SettlementPrice{
			Symbol:          m.Symbol,
			Date:            m.Date,
			SettlementPrice: m.SettlementPrice,
			ProductCategory: m.ProductCategory,
		})
	}
	return out, nil
}
