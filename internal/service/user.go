package service

import (
	"context"
	"log/slog"

	"github.com/snippetify/snippetify/internal/apperror"
	"github.com/snippetify/snippetify/internal/model"
	"github.com/snippetify/snippetify/internal/repository"
)

// UserService exposes the read-only view of user records this application
// needs. Provisioning happens in the external identity service.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService wires the service to its repository.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Profile returns the principal's own public projection.
func (s *UserService) Profile(ctx context.Context, principalID string) (*model.Author, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated("authentication required")
	}

	user, err := s.users.GetUserByID(ctx, principalID)
	if err != nil {
		return nil, err
	}
	return user.PublicProfile(), nil
}
