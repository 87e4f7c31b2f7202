// internal/domain/inventory/service.go
package inventory

import (
	"context"

	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// StockListener is told after a transaction that changed stock levels or
// the catalog has committed
type StockListener interface {
	StockChanged(ctx context.Context)
}

// NotifyStockChanged calls every listener in order
func NotifyStockChanged(ctx context.Context, listeners []StockListener) {
	for _, l := range listeners {
		l.StockChanged(ctx)
	}
}

// Service answers stock questions about batches
type Service struct {
	db *gorm.DB
}

// NewService creates a new inventory service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NextBatch returns the batch a new cart line for the product should draw from
func (s *Service) NextBatch(ctx context.Context, productID string) (*Batch, error) {
	var batches []Batch
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, apperror.Internal("failed to load batches", err)
	}
	return SelectBatch(batches)
}

// GetStockLevel sums the quantities of all batches of a product
func (s *Service) GetStockLevel(ctx context.Context, productID string) (int, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&Batch{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, apperror.Internal("failed to get stock level", err)
	}
	return int(total), nil
}

// Movements lists the movement history of a product's batches, newest first
func (s *Service) Movements(ctx context.Context, productID string, limit int) ([]StockMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var movements []StockMovement
	if err := s.db.WithContext(ctx).
		Joins("JOIN batches ON batches.id = stock_movements.batch_id").
		Where("batches.product_id = ?", productID).
		Order("stock_movements.created_at DESC").
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, apperror.Internal("failed to load movements", err)
	}
	return movements, nil
}
