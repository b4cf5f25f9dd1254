package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/snippetify/snippetify/internal/apperror"
	"github.com/snippetify/snippetify/internal/model"
	"github.com/snippetify/snippetify/internal/repository"
)

// CollectionService manages the grouping labels snippets can reference.
// Collections are strictly per-user: every operation requires the principal
// and enforces ownership.
type CollectionService struct {
	collections repository.CollectionRepository
	logger      *slog.Logger
}

// NewCollectionService wires the service to its repository.
func NewCollectionService(collections repository.CollectionRepository, logger *slog.Logger) *CollectionService {
	return &CollectionService{collections: collections, logger: logger}
}

// Create validates and saves a new collection owned by the principal.
func (s *CollectionService) Create(ctx context.Context, principalID, name, description string) (*model.Collection, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated("authentication required to create collections")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "collection name is required")
	}
	if len(name) > model.MaxCollectionNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("collection name must be %d characters or less", model.MaxCollectionNameLength))
	}

	collection := &model.Collection{
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     principalID,
	}
	if err := s.collections.CreateCollection(ctx, collection); err != nil {
		s.logger.Error("failed to create collection",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	s.logger.Info("collection created",
		slog.String("id", collection.ID),
		slog.String("owner", principalID),
	)
	return collection, nil
}

// List returns all of the principal's collections.
func (s *CollectionService) List(ctx context.Context, principalID string) ([]model.Collection, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated("authentication required to list collections")
	}

	collections, err := s.collections.ListCollectionsByOwner(ctx, principalID)
	if err != nil {
		s.logger.Error("failed to list collections", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return collections, nil
}

// Get returns one collection the principal owns.
func (s *CollectionService) Get(ctx context.Context, principalID, id string) (*model.Collection, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated("authentication required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "collection ID is required")
	}

	collection, err := s.collections.GetCollectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if collection.OwnerID != principalID {
		return nil, apperror.Forbidden("collection belongs to another user")
	}
	return collection, nil
}

// Delete removes a collection the principal owns. Snippets referencing it
// are left in place, uncategorized.
func (s *CollectionService) Delete(ctx context.Context, principalID, id string) error {
	if _, err := s.Get(ctx, principalID, id); err != nil {
		return err
	}
	if err := s.collections.DeleteCollection(ctx, id); err != nil {
		return err
	}

	s.logger.Info("collection deleted", slog.String("id", id))
	return nil
}

// nowUTC exists so update timestamps are consistent across the package.
func nowUTC() time.Time {
	return time.Now().UTC()
}
