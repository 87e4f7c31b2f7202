// internal/domain/returns/entity.go
package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/pharmacy-backend/internal/domain/sale"
	"gorm.io/gorm"
)

// ReturnRecord is one processed customer return against a sale
type ReturnRecord struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	SaleID       string          `gorm:"type:varchar(36);not null;index" json:"sale_id"`
	Reason       string          `gorm:"type:text" json:"reason"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"refund_amount"`
	ProcessedBy  string          `gorm:"type:varchar(36);not null;index" json:"processed_by"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`

	// Relationships
	Sale  *sale.Sale   `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
	Items []ReturnItem `gorm:"foreignKey:ReturnRecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// ReturnItem is the quantity of one batch coming back
type ReturnItem struct {
	ID             string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ReturnRecordID string `gorm:"type:varchar(36);not null;index" json:"return_record_id"`
	BatchID        string `gorm:"type:varchar(36);not null;index" json:"batch_id"`
	Quantity       int    `gorm:"not null" json:"quantity"`
}

// TableName overrides the table name for ReturnRecord
func (ReturnRecord) TableName() string {
	return "return_records"
}

// TableName overrides the table name for ReturnItem
func (ReturnItem) TableName() string {
	return "return_items"
}

// BeforeCreate assigns the return record id
func (r *ReturnRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns the return item id
func (ri *ReturnItem) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == "" {
		ri.ID = uuid.NewString()
	}
	return nil
}
