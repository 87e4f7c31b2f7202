// internal/domain/sale/entity.go
package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodCard PaymentMethod = "CARD"
	PaymentMethodUPI  PaymentMethod = "UPI"
)

// Sale represents a completed point-of-sale transaction
type Sale struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PaymentMethod PaymentMethod   `gorm:"size:10;not null" json:"payment_method"`
	CashierID     string          `gorm:"type:varchar(36);not null;index" json:"cashier_id"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`

	// Relationships
	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// SaleItem is one cart line. Price is the unit price at the time of sale.
type SaleItem struct {
	ID       string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	SaleID   string          `gorm:"type:varchar(36);not null;index" json:"sale_id"`
	Line     int             `gorm:"not null;default:0" json:"line"` // position in the cart, from 1
	BatchID  string          `gorm:"type:varchar(36);not null;index" json:"batch_id"`
	Quantity int             `gorm:"not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`

	// Relationships
	Batch *inventory.Batch `gorm:"foreignKey:BatchID" json:"batch,omitempty"`

	ProductName string `gorm:"-" json:"product_name,omitempty"`
}

// TableName overrides the table name for Sale
func (Sale) TableName() string {
	return "sales"
}

// TableName overrides the table name for SaleItem
func (SaleItem) TableName() string {
	return "sale_items"
}

// BeforeCreate assigns the sale id
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns the sale item id
func (si *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == "" {
		si.ID = uuid.NewString()
	}
	return nil
}

// LineTotal returns price times quantity
func (si *SaleItem) LineTotal() decimal.Decimal {
	return si.Price.Mul(decimal.NewFromInt(int64(si.Quantity)))
}

// ItemCount returns the number of units sold
func (s *Sale) ItemCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}
