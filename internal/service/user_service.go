package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aptiva/examgate-backend/internal/model"
	"github.com/aptiva/examgate-backend/internal/repository"
)

// UserService handles account management.
type UserService struct {
	userRepo *repository.UserRepository
	auth     *AuthService
	audit    *AuditPublisher
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, auth *AuthService, audit *AuditPublisher) *UserService {
	return &UserService{userRepo: userRepo, auth: auth, audit: audit}
}

// Create provisions a new account. Only admins reach this path; the router
// enforces that.
func (s *UserService) Create(ctx context.Context, createdBy uuid.UUID, req *model.CreateUserRequest, clientIP string) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Department:   req.Department,
	}
	if req.ProctorID != "" {
		pid, err := uuid.Parse(req.ProctorID)
		if err != nil {
			return nil, fmt.Errorf("parse proctor id: %w", err)
		}
		user.ProctorID = &pid
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.audit.Record(ctx, AuditEvent{
		UserID:    &createdBy,
		Action:    model.AuditCreateUser,
		IPAddress: clientIP,
		Metadata:  map[string]any{"created_user_id": user.ID, "role": user.Role},
	})
	return user, nil
}

// GetByID retrieves a user profile.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
