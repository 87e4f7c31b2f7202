// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"github.com/your-org/pharmacy-backend/internal/domain/supplier"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"github.com/your-org/pharmacy-backend/internal/pkg/validation"
	"gorm.io/gorm"
)

// Stock status filters accepted by List
const (
	StatusLow      = "low"
	StatusExpiring = "expiring"
)

// Service handles catalog business logic
type Service struct {
	db        *gorm.DB
	now       func() time.Time
	listeners []inventory.StockListener
}

// NewService creates a new product service
func NewService(db *gorm.DB, listeners ...inventory.StockListener) *Service {
	return &Service{
		db:        db,
		now:       func() time.Time { return time.Now().UTC() },
		listeners: listeners,
	}
}

// ListRequest represents catalog filters
type ListRequest struct {
	Query    string `form:"query"`
	Category string `form:"category"`
	Status   string `form:"status" validate:"omitempty,oneof=low expiring"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// ListResponse is a page of product summaries
type ListResponse struct {
	Products   []Summary  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination info
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// DetailsRequest carries the editable product fields
type DetailsRequest struct {
	Name          string          `json:"name" validate:"required,max=200"`
	Category      string          `json:"category" validate:"required,max=100"`
	Manufacturer  string          `json:"manufacturer" validate:"max=200"`
	MinStockLevel int             `json:"min_stock_level" validate:"gte=0"`
	Price         decimal.Decimal `json:"price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	SupplierID    string          `json:"supplier_id" validate:"required"`
}

// BatchRequest describes a batch being received
type BatchRequest struct {
	BatchNumber string `json:"batch_number" validate:"required,max=100"`
	Quantity    int    `json:"quantity" validate:"gte=1"`
	ExpiryDate  string `json:"expiry_date" validate:"required"`
}

// CreateRequest creates a product together with its first batch
type CreateRequest struct {
	DetailsRequest
	InitialBatch BatchRequest `json:"initial_batch"`
}

// List returns product summaries matching the filters
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 50
	}

	query := s.db.WithContext(ctx).Model(&Product{}).Preload("Batches").Preload("Supplier")

	if q := strings.TrimSpace(req.Query); q != "" {
		search := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", search, search)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	var products []Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, apperror.Internal("failed to retrieve products", err)
	}

	now := s.now()
	summaries := make([]Summary, 0, len(products))
	for _, p := range products {
		summary := Summarize(p, now)
		switch req.Status {
		case StatusLow:
			if !summary.LowStock {
				continue
			}
		case StatusExpiring:
			if !summary.NearExpiry {
				continue
			}
		}
		summaries = append(summaries, summary)
	}

	total := len(summaries)
	start := (req.Page - 1) * req.Limit
	if start > total {
		start = total
	}
	end := start + req.Limit
	if end > total {
		end = total
	}

	totalPages := (total + req.Limit - 1) / req.Limit
	return &ListResponse{
		Products: summaries[start:end],
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      int64(total),
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetProduct returns a product with its supplier and batches, soonest expiry first
func (s *Service) GetProduct(ctx context.Context, id string) (*Summary, error) {
	var product Product
	err := s.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Batches", func(db *gorm.DB) *gorm.DB {
			return db.Order("expiry_date ASC")
		}).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Product not found")
		}
		return nil, apperror.Internal("failed to retrieve product", err)
	}

	summary := Summarize(product, s.now())
	return &summary, nil
}

// CreateProduct creates a product and its initial batch in one transaction
func (s *Service) CreateProduct(ctx context.Context, actor user.Actor, req *CreateRequest) (*Product, error) {
	if err := user.Authorize(actor, user.PermInventoryWrite); err != nil {
		return nil, err
	}
	if err := s.validateDetails(&req.DetailsRequest); err != nil {
		return nil, err
	}
	expiry, err := s.validateBatch(&req.InitialBatch)
	if err != nil {
		return nil, err
	}

	product := Product{
		Name:          strings.TrimSpace(req.Name),
		Category:      strings.TrimSpace(req.Category),
		Manufacturer:  strings.TrimSpace(req.Manufacturer),
		MinStockLevel: req.MinStockLevel,
		Price:         req.Price,
		SellingPrice:  req.SellingPrice,
		SupplierID:    req.SupplierID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSupplier(tx, req.SupplierID); err != nil {
			return err
		}
		if err := tx.Create(&product).Error; err != nil {
			return apperror.Internal("failed to create product", err)
		}

		batch := inventory.Batch{
			ProductID:   product.ID,
			BatchNumber: strings.TrimSpace(req.InitialBatch.BatchNumber),
			Quantity:    req.InitialBatch.Quantity,
			ExpiryDate:  expiry,
		}
		if _, err := inventory.Receive(tx, &batch, actor.UserID); err != nil {
			return err
		}
		product.Batches = []inventory.Batch{batch}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inventory.NotifyStockChanged(ctx, s.listeners)

	return &product, nil
}

// UpdateProduct replaces the product details. Batches are untouched.
func (s *Service) UpdateProduct(ctx context.Context, actor user.Actor, id string, req *DetailsRequest) (*Product, error) {
	if err := user.Authorize(actor, user.PermInventoryWrite); err != nil {
		return nil, err
	}
	if err := s.validateDetails(req); err != nil {
		return nil, err
	}

	var product Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Product not found")
			}
			return apperror.Internal("failed to retrieve product", err)
		}
		if err := ensureSupplier(tx, req.SupplierID); err != nil {
			return err
		}

		product.Name = strings.TrimSpace(req.Name)
		product.Category = strings.TrimSpace(req.Category)
		product.Manufacturer = strings.TrimSpace(req.Manufacturer)
		product.MinStockLevel = req.MinStockLevel
		product.Price = req.Price
		product.SellingPrice = req.SellingPrice
		product.SupplierID = req.SupplierID

		if err := tx.Save(&product).Error; err != nil {
			return apperror.Internal("failed to update product", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inventory.NotifyStockChanged(ctx, s.listeners)
	return &product, nil
}

// DeleteProduct removes a product and its batches. Products with sales history are kept.
func (s *Service) DeleteProduct(ctx context.Context, actor user.Actor, id string) error {
	if err := user.Authorize(actor, user.PermInventoryWrite); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Product not found")
			}
			return apperror.Internal("failed to retrieve product", err)
		}

		batchIDs := tx.Model(&inventory.Batch{}).Select("id").Where("product_id = ?", id)

		var soldLines int64
		if err := tx.Table("sale_items").Where("batch_id IN (?)", batchIDs).Count(&soldLines).Error; err != nil {
			return apperror.Internal("failed to check sales history", err)
		}
		if soldLines > 0 {
			return apperror.Business("Cannot delete product. It has %d recorded sale lines.", soldLines)
		}

		if err := tx.Where("batch_id IN (?)", batchIDs).Delete(&inventory.StockMovement{}).Error; err != nil {
			return apperror.Internal("failed to delete stock movements", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&inventory.Batch{}).Error; err != nil {
			return apperror.Internal("failed to delete batches", err)
		}
		if err := tx.Delete(&product).Error; err != nil {
			return apperror.Internal("failed to delete product", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	inventory.NotifyStockChanged(ctx, s.listeners)
	return nil
}

// Restock receives a new batch for an existing product
func (s *Service) Restock(ctx context.Context, actor user.Actor, productID string, req *BatchRequest) (*inventory.Batch, error) {
	if err := user.Authorize(actor, user.PermInventoryWrite); err != nil {
		return nil, err
	}
	expiry, err := s.validateBatch(req)
	if err != nil {
		return nil, err
	}

	batch := inventory.Batch{
		ProductID:   productID,
		BatchNumber: strings.TrimSpace(req.BatchNumber),
		Quantity:    req.Quantity,
		ExpiryDate:  expiry,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return apperror.Internal("failed to retrieve product", err)
		}
		if count == 0 {
			return apperror.NotFound("Product not found")
		}
		_, err := inventory.Receive(tx, &batch, actor.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	inventory.NotifyStockChanged(ctx, s.listeners)
	return &batch, nil
}

// Categories returns the distinct product categories
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.db.WithContext(ctx).Model(&Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, apperror.Internal("failed to list categories", err)
	}
	return categories, nil
}

func (s *Service) validateDetails(req *DetailsRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if req.Price.IsNegative() {
		return apperror.Validation("Cost price must be positive")
	}
	if req.SellingPrice.IsNegative() {
		return apperror.Validation("Selling price must be positive")
	}
	return nil
}

func (s *Service) validateBatch(req *BatchRequest) (time.Time, error) {
	if err := validation.Struct(req); err != nil {
		return time.Time{}, err
	}
	expiry, err := ParseDate(req.ExpiryDate)
	if err != nil {
		return time.Time{}, err
	}
	if !expiry.After(s.now()) {
		return time.Time{}, apperror.Validation("Expiry date must be in the future")
	}
	return expiry, nil
}

// ParseDate accepts a calendar date or an RFC3339 timestamp and returns it in UTC
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperror.Validation("Invalid date %q, expected YYYY-MM-DD", value)
}

func ensureSupplier(tx *gorm.DB, supplierID string) error {
	var count int64
	if err := tx.Model(&supplier.Supplier{}).Where("id = ?", supplierID).Count(&count).Error; err != nil {
		return apperror.Internal("failed to check supplier", err)
	}
	if count == 0 {
		return apperror.Validation("Supplier not found")
	}
	return nil
}
