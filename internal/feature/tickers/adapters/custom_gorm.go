package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"metals_backend/internal/feature/tickers/domain/entity"
	"metals_backend/internal/feature/tickers/usecase"
)

type customGorm struct {
	db *gorm.DB
}

var _ usecase.CustomInstrumentRepository = (*customGorm)(nil)

// NewCustomInstrumentRepository creates the gorm-backed custom instrument repository.
func NewCustomInstrumentRepository(db *gorm.DB) *customGorm {
	return &customGorm{db: db}
}

func (r *customGorm) Create(ctx context.Context, instrument *entity.CustomInstrument) error {
	return r.db.WithContext(ctx).Create(instrument).Error
}

func (r *customGorm) List(ctx context.Context) ([]entity.CustomInstrument, error) {
	var instruments []entity.CustomInstrument
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&instruments).Error; err != nil {
		return nil, err
	}
	return instruments, nil
}

func (r *customGorm) FindByName(ctx context.Context, name string) (*entity.CustomInstrument, error) {
	var instrument entity.CustomInstrument
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&instrument).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &instrument, nil
}

func (r *customGorm) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&entity.CustomInstrument{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
