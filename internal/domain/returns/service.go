// internal/domain/returns/service.go
package returns

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"github.com/your-org/pharmacy-backend/internal/domain/sale"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"github.com/your-org/pharmacy-backend/internal/pkg/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles customer returns
type Service struct {
	db        *gorm.DB
	log       *logrus.Logger
	listeners []inventory.StockListener
}

// NewService creates a new return service
func NewService(db *gorm.DB, log *logrus.Logger, listeners ...inventory.StockListener) *Service {
	return &Service{db: db, log: log, listeners: listeners}
}

// ItemRequest is one batch being returned
type ItemRequest struct {
	BatchID  string `json:"batch_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

// CreateRequest represents a return against a sale
type CreateRequest struct {
	SaleID string        `json:"sale_id" validate:"required"`
	Items  []ItemRequest `json:"items" validate:"required,min=1,dive"`
	Reason string        `json:"reason" validate:"max=1000"`
}

// ProcessReturn refunds the returned lines at their sale price and puts the
// stock back. Cumulative returns per batch can never exceed what was sold.
func (s *Service) ProcessReturn(ctx context.Context, actor user.Actor, req *CreateRequest) (*ReturnRecord, error) {
	if err := user.Authorize(actor, user.PermReturnsCreate); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	// merge lines on the same batch, keeping first-seen order
	requested := make(map[string]int, len(req.Items))
	order := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		if _, ok := requested[line.BatchID]; !ok {
			order = append(order, line.BatchID)
		}
		requested[line.BatchID] += line.Quantity
	}

	record := ReturnRecord{
		ID:          uuid.NewString(),
		SaleID:      req.SaleID,
		Reason:      strings.TrimSpace(req.Reason),
		ProcessedBy: actor.UserID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original sale.Sale
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&original, "id = ?", req.SaleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Sale not found")
			}
			return apperror.Internal("failed to load sale", err)
		}

		var items []sale.SaleItem
		if err := sale.OrderedItems(tx.Where("sale_id = ?", original.ID)).Find(&items).Error; err != nil {
			return apperror.Internal("failed to load sale items", err)
		}
		lines := make(map[string][]sale.SaleItem, len(items))
		for _, item := range items {
			lines[item.BatchID] = append(lines[item.BatchID], item)
		}

		alreadyReturned, err := returnedQuantities(tx, req.SaleID)
		if err != nil {
			return err
		}

		refund := decimal.Zero
		for _, batchID := range order {
			qty := requested[batchID]
			batchLines, ok := lines[batchID]
			if !ok {
				return apperror.Business("Batch %s not found in this sale", batchID)
			}

			lineRefund, ok := refundFor(batchLines, alreadyReturned[batchID], qty)
			if !ok {
				return apperror.Business("Cannot return more than sold")
			}
			refund = refund.Add(lineRefund)

			if _, err := inventory.Increment(tx, inventory.Move{
				BatchID:       batchID,
				Quantity:      qty,
				Reason:        inventory.ReasonReturn,
				ReferenceType: "return",
				ReferenceID:   record.ID,
				ActorID:       actor.UserID,
			}); err != nil {
				return err
			}

			record.Items = append(record.Items, ReturnItem{
				BatchID:  batchID,
				Quantity: qty,
			})
		}

		record.RefundAmount = refund
		if err := tx.Create(&record).Error; err != nil {
			return apperror.Internal("failed to create return record", err)
		}
		return nil
	})
	if err != nil {
		if apperror.Is(err, apperror.KindInternal) {
			s.log.WithError(err).WithField("sale_id", req.SaleID).Error("Return transaction failed")
		}
		return nil, err
	}
	inventory.NotifyStockChanged(ctx, s.listeners)

	s.log.WithFields(logrus.Fields{
		"return_id":    record.ID,
		"sale_id":      record.SaleID,
		"refund":       record.RefundAmount.StringFixed(2),
		"processed_by": actor.UserID,
	}).Info("Return processed")

	return &record, nil
}

// refundFor prices qty returned units against the sale lines of one batch.
// Returns consume lines in cart order, so units covered by earlier returns
// are skipped first. ok is false when fewer than qty units remain.
func refundFor(lines []sale.SaleItem, alreadyReturned, qty int) (decimal.Decimal, bool) {
	refund := decimal.Zero
	skip := alreadyReturned
	for _, line := range lines {
		available := line.Quantity
		if skip > 0 {
			used := min(skip, available)
			skip -= used
			available -= used
		}
		take := min(qty, available)
		if take > 0 {
			refund = refund.Add(line.Price.Mul(decimal.NewFromInt(int64(take))))
			qty -= take
		}
		if qty == 0 {
			return refund, true
		}
	}
	return decimal.Zero, false
}

// returnedQuantities sums the units already returned per batch for a sale
func returnedQuantities(tx *gorm.DB, saleID string) (map[string]int, error) {
	var rows []struct {
		BatchID  string
		Quantity int64
	}
	err := tx.Table("return_items").
		Select("return_items.batch_id AS batch_id, COALESCE(SUM(return_items.quantity), 0) AS quantity").
		Joins("JOIN return_records ON return_records.id = return_items.return_record_id").
		Where("return_records.sale_id = ?", saleID).
		Group("return_items.batch_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Internal("failed to load previous returns", err)
	}

	returned := make(map[string]int, len(rows))
	for _, r := range rows {
		returned[r.BatchID] = int(r.Quantity)
	}
	return returned, nil
}

// List returns the latest return records, newest first
func (s *Service) List(ctx context.Context, limit int) ([]ReturnRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var records []ReturnRecord
	if err := s.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, apperror.Internal("failed to list returns", err)
	}
	return records, nil
}
