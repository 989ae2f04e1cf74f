package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// HistoryRepository is the append-only stock audit log. Entries are never
// updated or deleted; product deletion does not cascade here.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.StockHistory) error
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]models.StockHistory, int64, error)
}

type GormHistoryRepository struct {
	db *gorm.DB
}

var _ HistoryRepository = (*GormHistoryRepository)(nil)

func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

func (r *GormHistoryRepository) Append(ctx context.Context, entry *models.StockHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByProduct returns one page of entries for a product, newest first,
// plus the total entry count.
func (r *GormHistoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]models.StockHistory, int64, error) {
	var entries []models.StockHistory
	var total int64

	query := r.db.WithContext(ctx).Model(&models.StockHistory{}).
		Where("product_id = ?", productID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("change_date DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}
