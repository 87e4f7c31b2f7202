// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"github.com/your-org/pharmacy-backend/internal/pkg/auth"
	"github.com/your-org/pharmacy-backend/internal/pkg/validation"
	"gorm.io/gorm"
)

// Service handles staff accounts and sessions
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateRequest represents the data needed to add a staff account
type CreateRequest struct {
	Name     string `json:"name" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,oneof=ADMIN PHARMACIST CASHIER"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *User     `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login authenticates a user and issues an access token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var user User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("Invalid email or password")
		}
		return nil, apperror.Internal("failed to load user", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	token, expiresAt, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperror.Internal("failed to generate access token", err)
	}

	return &AuthResponse{
		User:        &user,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// GetByID returns a single user
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	return &user, nil
}

// List returns all staff accounts, newest first
func (s *Service) List(ctx context.Context, actor Actor) ([]User, error) {
	if err := Authorize(actor, PermUsersManage); err != nil {
		return nil, err
	}

	var users []User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperror.Internal("failed to list users", err)
	}
	return users, nil
}

// Create adds a staff account
func (s *Service) Create(ctx context.Context, actor Actor, req *CreateRequest) (*User, error) {
	if err := Authorize(actor, PermUsersManage); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hashed, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}

	user := User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: hashed,
		Role:     req.Role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).Count(&count).Error; err != nil {
			return apperror.Internal("failed to check email", err)
		}
		if count > 0 {
			return apperror.Business("User with this email already exists")
		}
		if err := tx.Create(&user).Error; err != nil {
			return apperror.Internal("failed to create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Delete removes a staff account. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	if err := Authorize(actor, PermUsersManage); err != nil {
		return err
	}
	if id == actor.UserID {
		return apperror.Business("Cannot delete your own account")
	}

	result := s.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return apperror.Internal("failed to delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}
