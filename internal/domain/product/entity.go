// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"github.com/your-org/pharmacy-backend/internal/domain/supplier"
	"gorm.io/gorm"
)

// NearExpiryWindowDays is how close to expiry a batch must be to be flagged
const NearExpiryWindowDays = 30

// Product represents a medicine or item sold by the pharmacy
type Product struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name          string          `gorm:"size:200;not null;index" json:"name"`
	Category      string          `gorm:"size:100;not null;index" json:"category"`
	Manufacturer  string          `gorm:"size:200" json:"manufacturer"`
	MinStockLevel int             `gorm:"not null;default:10" json:"min_stock_level"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"` // cost price
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	SupplierID    string          `gorm:"type:varchar(36);not null;index" json:"supplier_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relationships
	Supplier *supplier.Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Batches  []inventory.Batch  `gorm:"foreignKey:ProductID" json:"batches,omitempty"`
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns the product id
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TotalStock sums the quantities of the loaded batches
func (p *Product) TotalStock() int {
	total := 0
	for _, b := range p.Batches {
		total += b.Quantity
	}
	return total
}

// IsLowStock checks if stock is at or below the minimum level
func (p *Product) IsLowStock() bool {
	return p.TotalStock() <= p.MinStockLevel
}

// HasNearExpiryBatch reports whether any loaded batch is close to expiry
func (p *Product) HasNearExpiryBatch(now time.Time) bool {
	for i := range p.Batches {
		if p.Batches[i].IsNearExpiry(now, NearExpiryWindowDays) {
			return true
		}
	}
	return false
}

// Summary is a product row with its derived stock figures
type Summary struct {
	Product
	TotalStock   int  `json:"total_stock"`
	LowStock     bool `json:"low_stock"`
	NearExpiry   bool `json:"near_expiry"`
	BatchesCount int  `json:"batches_count"`
}

// Summarize derives stock figures from a product with batches loaded
func Summarize(p Product, now time.Time) Summary {
	return Summary{
		Product:      p,
		TotalStock:   p.TotalStock(),
		LowStock:     p.IsLowStock(),
		NearExpiry:   p.HasNearExpiryBatch(now),
		BatchesCount: len(p.Batches),
	}
}
