// internal/domain/supplier/service.go
package supplier

import (
	"context"
	"errors"
	"strings"

	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"github.com/your-org/pharmacy-backend/internal/pkg/validation"
	"gorm.io/gorm"
)

// Service handles supplier business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new supplier service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SaveRequest carries supplier fields for create and update
type SaveRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Contact string `json:"contact" validate:"max=100"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

// List returns all suppliers ordered by name
func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	var suppliers []Supplier
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, apperror.Internal("failed to list suppliers", err)
	}
	return suppliers, nil
}

// GetByID returns one supplier
func (s *Service) GetByID(ctx context.Context, id string) (*Supplier, error) {
	var supplier Supplier
	if err := s.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Supplier not found")
		}
		return nil, apperror.Internal("failed to load supplier", err)
	}
	return &supplier, nil
}

// Create adds a supplier
func (s *Service) Create(ctx context.Context, actor user.Actor, req *SaveRequest) (*Supplier, error) {
	if err := user.Authorize(actor, user.PermSuppliersWrite); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	supplier := Supplier{
		Name:    strings.TrimSpace(req.Name),
		Contact: strings.TrimSpace(req.Contact),
		Email:   strings.TrimSpace(req.Email),
		Address: strings.TrimSpace(req.Address),
	}
	if err := s.db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, apperror.Internal("failed to create supplier", err)
	}
	return &supplier, nil
}

// Update replaces the editable fields of a supplier
func (s *Service) Update(ctx context.Context, actor user.Actor, id string, req *SaveRequest) (*Supplier, error) {
	if err := user.Authorize(actor, user.PermSuppliersWrite); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var supplier Supplier
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&supplier, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Supplier not found")
			}
			return apperror.Internal("failed to load supplier", err)
		}

		supplier.Name = strings.TrimSpace(req.Name)
		supplier.Contact = strings.TrimSpace(req.Contact)
		supplier.Email = strings.TrimSpace(req.Email)
		supplier.Address = strings.TrimSpace(req.Address)

		if err := tx.Save(&supplier).Error; err != nil {
			return apperror.Internal("failed to update supplier", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Delete removes a supplier that no product references
func (s *Service) Delete(ctx context.Context, actor user.Actor, id string) error {
	if err := user.Authorize(actor, user.PermSuppliersWrite); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productCount int64
		if err := tx.Table("products").Where("supplier_id = ?", id).Count(&productCount).Error; err != nil {
			return apperror.Internal("failed to count supplier products", err)
		}
		if productCount > 0 {
			return apperror.Business("Cannot delete supplier. They have %d associated products.", productCount)
		}

		result := tx.Delete(&Supplier{}, "id = ?", id)
		if result.Error != nil {
			return apperror.Internal("failed to delete supplier", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("Supplier not found")
		}
		return nil
	})
}
