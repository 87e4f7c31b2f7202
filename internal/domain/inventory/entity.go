// internal/domain/inventory/entity.go
package inventory

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementTypeInbound  MovementType = "inbound"  // Restock, return
	MovementTypeOutbound MovementType = "outbound" // Sale
)

// MovementReason represents the reason for a stock movement
type MovementReason string

const (
	ReasonSale    MovementReason = "sale"
	ReasonReturn  MovementReason = "return"
	ReasonRestock MovementReason = "restock"
)

// Batch is a dated lot of a product with its own expiry and quantity
type Batch struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID   string    `gorm:"type:varchar(36);not null;index" json:"product_id"`
	BatchNumber string    `gorm:"size:100;not null" json:"batch_number"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	ExpiryDate  time.Time `gorm:"not null;index" json:"expiry_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockMovement records every change to a batch quantity
type StockMovement struct {
	ID               string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	BatchID          string         `gorm:"type:varchar(36);not null;index" json:"batch_id"`
	MovementType     MovementType   `gorm:"size:20;not null" json:"movement_type"`
	Reason           MovementReason `gorm:"size:20;not null" json:"reason"`
	Quantity         int            `gorm:"not null" json:"quantity"`
	PreviousQuantity int            `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int            `gorm:"not null" json:"new_quantity"`
	ReferenceType    string         `gorm:"size:50" json:"reference_type"` // "sale", "return", "batch"
	ReferenceID      string         `gorm:"type:varchar(36);index" json:"reference_id"`
	CreatedBy        string         `gorm:"type:varchar(36);index" json:"created_by"`
	CreatedAt        time.Time      `json:"created_at"`
}

// TableName overrides the table name for Batch
func (Batch) TableName() string {
	return "batches"
}

// TableName overrides the table name for StockMovement
func (StockMovement) TableName() string {
	return "stock_movements"
}

// BeforeCreate assigns the batch id
func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns the movement id
func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// DaysUntilExpiry returns the whole days left before expiry, rounded up
func (b *Batch) DaysUntilExpiry(now time.Time) int {
	return int(math.Ceil(b.ExpiryDate.Sub(now).Hours() / 24))
}

// IsNearExpiry reports whether the batch expires within the window and has not expired yet
func (b *Batch) IsNearExpiry(now time.Time, windowDays int) bool {
	days := b.DaysUntilExpiry(now)
	return days > 0 && days <= windowDays
}

// IsExpired checks if the batch expiry date has passed
func (b *Batch) IsExpired(now time.Time) bool {
	return !b.ExpiryDate.After(now)
}
