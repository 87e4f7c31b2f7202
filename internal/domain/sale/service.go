// internal/domain/sale/service.go
package sale

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"github.com/your-org/pharmacy-backend/internal/pkg/validation"
	"gorm.io/gorm"
)

// Service handles point-of-sale transactions
type Service struct {
	db        *gorm.DB
	log       *logrus.Logger
	listeners []inventory.StockListener
}

// NewService creates a new sale service. listeners hear about every
// committed sale.
func NewService(db *gorm.DB, log *logrus.Logger, listeners ...inventory.StockListener) *Service {
	return &Service{db: db, log: log, listeners: listeners}
}

// ItemRequest is one cart line
type ItemRequest struct {
	ProductID string          `json:"product_id"`
	BatchID   string          `json:"batch_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Price     decimal.Decimal `json:"price"`
}

// CreateRequest represents a checkout of the cart
type CreateRequest struct {
	Items         []ItemRequest   `json:"items" validate:"dive"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method" validate:"required,oneof=CASH CARD UPI"`
}

// ProcessSale records the sale and decrements every batch in the cart.
// Either every line is applied or nothing is.
func (s *Service) ProcessSale(ctx context.Context, actor user.Actor, req *CreateRequest) (*Sale, error) {
	if err := user.Authorize(actor, user.PermSalesCreate); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apperror.Validation("Cart is empty")
	}
	if err := validateCart(req); err != nil {
		return nil, err
	}

	sale := Sale{
		ID:            uuid.NewString(),
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		CashierID:     actor.UserID,
		Items:         make([]SaleItem, 0, len(req.Items)),
	}
	for i, line := range req.Items {
		sale.Items = append(sale.Items, SaleItem{
			Line:     i + 1,
			BatchID:  line.BatchID,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range req.Items {
			var batch inventory.Batch
			if err := tx.First(&batch, "id = ?", line.BatchID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.Business("Insufficient stock for batch %s", line.BatchID)
				}
				return apperror.Internal("failed to load batch", err)
			}
			if line.ProductID != "" && line.ProductID != batch.ProductID {
				return apperror.Validation("Batch %s does not belong to product %s", line.BatchID, line.ProductID)
			}

			if _, err := inventory.Decrement(tx, inventory.Move{
				BatchID:       line.BatchID,
				Quantity:      line.Quantity,
				Reason:        inventory.ReasonSale,
				ReferenceType: "sale",
				ReferenceID:   sale.ID,
				ActorID:       actor.UserID,
			}); err != nil {
				return err
			}
		}

		// lines reference batches, so the sale row goes in once every batch is known
		if err := tx.Create(&sale).Error; err != nil {
			return apperror.Internal("failed to create sale", err)
		}
		return nil
	})
	if err != nil {
		if apperror.Is(err, apperror.KindInternal) {
			s.log.WithError(err).WithField("cashier_id", actor.UserID).Error("Sale transaction failed")
		}
		return nil, err
	}
	inventory.NotifyStockChanged(ctx, s.listeners)

	s.log.WithFields(logrus.Fields{
		"sale_id":    sale.ID,
		"cashier_id": actor.UserID,
		"total":      sale.TotalAmount.StringFixed(2),
		"lines":      len(sale.Items),
	}).Info("Sale completed")

	return &sale, nil
}

func validateCart(req *CreateRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, line := range req.Items {
		if line.Price.IsNegative() {
			return apperror.Validation("Price for batch %s must not be negative", line.BatchID)
		}
		sum = sum.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	if !sum.Round(2).Equal(req.TotalAmount.Round(2)) {
		return apperror.Validation("Total amount %s does not match cart total %s",
			req.TotalAmount.StringFixed(2), sum.StringFixed(2))
	}
	return nil
}

// GetSale returns a sale with its lines
func (s *Service) GetSale(ctx context.Context, id string) (*Sale, error) {
	var sale Sale
	if err := s.withItems(s.db.WithContext(ctx)).First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Sale not found")
		}
		return nil, apperror.Internal("failed to load sale", err)
	}

	sales := []Sale{sale}
	if err := s.attachProductNames(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

// ListRecent returns the latest sales, newest first
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Sale, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var sales []Sale
	if err := s.withItems(s.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(limit).
		Find(&sales).Error; err != nil {
		return nil, apperror.Internal("failed to list sales", err)
	}
	if err := s.attachProductNames(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// Search finds sales whose id contains query. An empty query returns the latest sales.
func (s *Service) Search(ctx context.Context, query string) ([]Sale, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListRecent(ctx, 10)
	}

	var sales []Sale
	if err := s.withItems(s.db.WithContext(ctx)).
		Where("LOWER(id) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("created_at DESC").
		Limit(5).
		Find(&sales).Error; err != nil {
		return nil, apperror.Internal("failed to search sales", err)
	}
	if err := s.attachProductNames(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Service) withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", OrderedItems).Preload("Items.Batch")
}

// OrderedItems sorts preloaded sale lines by their cart position
func OrderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("sale_items.line ASC")
}

func (s *Service) attachProductNames(ctx context.Context, sales []Sale) error {
	ids := make([]string, 0)
	seen := make(map[string]bool)
	for _, sale := range sales {
		for _, item := range sale.Items {
			if item.Batch != nil && !seen[item.Batch.ProductID] {
				seen[item.Batch.ProductID] = true
				ids = append(ids, item.Batch.ProductID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var rows []struct {
		ID   string
		Name string
	}
	if err := s.db.WithContext(ctx).Table("products").Select("id, name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return apperror.Internal("failed to load product names", err)
	}

	names := make(map[string]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.Name
	}
	for i := range sales {
		for j := range sales[i].Items {
			if b := sales[i].Items[j].Batch; b != nil {
				sales[i].Items[j].ProductName = names[b.ProductID]
			}
		}
	}
	return nil
}
