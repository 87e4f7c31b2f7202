// internal/domain/inventory/ledger.go
package inventory

import (
	"errors"
	"fmt"

	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Move describes one change to a batch quantity
type Move struct {
	BatchID       string
	Quantity      int
	Reason        MovementReason
	ReferenceType string
	ReferenceID   string
	ActorID       string
}

// Decrement removes stock from a batch with a conditional update so that
// concurrent sales can never drive a batch below zero. It must run inside tx.
func Decrement(tx *gorm.DB, m Move) (*StockMovement, error) {
	if m.Quantity <= 0 {
		return nil, apperror.Validation("Quantity must be at least 1")
	}

	result := tx.Model(&Batch{}).
		Where("id = ? AND quantity >= ?", m.BatchID, m.Quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", m.Quantity))
	if result.Error != nil {
		return nil, apperror.Internal("failed to update batch", result.Error)
	}
	if result.RowsAffected != 1 {
		return nil, apperror.Business("Insufficient stock for batch %s", m.BatchID)
	}

	newQuantity, err := currentQuantity(tx, m.BatchID)
	if err != nil {
		return nil, err
	}

	return record(tx, m, MovementTypeOutbound, newQuantity+m.Quantity, newQuantity)
}

// Increment puts stock back into a batch. It must run inside tx.
func Increment(tx *gorm.DB, m Move) (*StockMovement, error) {
	if m.Quantity <= 0 {
		return nil, apperror.Validation("Quantity must be at least 1")
	}

	result := tx.Model(&Batch{}).
		Where("id = ?", m.BatchID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", m.Quantity))
	if result.Error != nil {
		return nil, apperror.Internal("failed to update batch", result.Error)
	}
	if result.RowsAffected != 1 {
		return nil, apperror.NotFound("Batch %s not found", m.BatchID)
	}

	newQuantity, err := currentQuantity(tx, m.BatchID)
	if err != nil {
		return nil, err
	}

	return record(tx, m, MovementTypeInbound, newQuantity-m.Quantity, newQuantity)
}

// Receive creates a new batch and logs it as an inbound movement. It must run inside tx.
func Receive(tx *gorm.DB, batch *Batch, actorID string) (*StockMovement, error) {
	if batch.Quantity <= 0 {
		return nil, apperror.Validation("Quantity must be at least 1")
	}
	if err := tx.Create(batch).Error; err != nil {
		return nil, apperror.Internal("failed to create batch", err)
	}

	return record(tx, Move{
		BatchID:       batch.ID,
		Quantity:      batch.Quantity,
		Reason:        ReasonRestock,
		ReferenceType: "batch",
		ReferenceID:   batch.ID,
		ActorID:       actorID,
	}, MovementTypeInbound, 0, batch.Quantity)
}

func currentQuantity(tx *gorm.DB, batchID string) (int, error) {
	var batch Batch
	if err := tx.Select("id", "quantity").First(&batch, "id = ?", batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.NotFound("Batch %s not found", batchID)
		}
		return 0, apperror.Internal("failed to reload batch", err)
	}
	return batch.Quantity, nil
}

func record(tx *gorm.DB, m Move, movementType MovementType, previous, next int) (*StockMovement, error) {
	movement := &StockMovement{
		BatchID:          m.BatchID,
		MovementType:     movementType,
		Reason:           m.Reason,
		Quantity:         m.Quantity,
		PreviousQuantity: previous,
		NewQuantity:      next,
		ReferenceType:    m.ReferenceType,
		ReferenceID:      m.ReferenceID,
		CreatedBy:        m.ActorID,
	}
	if err := tx.Create(movement).Error; err != nil {
		return nil, apperror.Internal("failed to record movement", fmt.Errorf("batch %s: %w", m.BatchID, err))
	}
	return movement, nil
}
