// Package service contains the business logic: validation, ownership and
// visibility enforcement, and orchestration of the repositories. It knows
// nothing about HTTP — handlers translate its domain errors at the boundary.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/snippetify/snippetify/internal/apperror"
	"github.com/snippetify/snippetify/internal/model"
	"github.com/snippetify/snippetify/internal/query"
	"github.com/snippetify/snippetify/internal/repository"
)

// Pagination is the envelope returned alongside every snippet listing.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// SnippetPage is one page of a listing plus its pagination envelope.
type SnippetPage struct {
	Snippets   []model.Snippet `json:"snippets"`
	Pagination Pagination      `json:"pagination"`
}

// CreateSnippetInput carries the fields accepted on create.
type CreateSnippetInput struct {
	Title        string
	Description  string
	Code         string
	Language     string
	Tags         []string
	IsPublic     bool
	CollectionID *string
}

// UpdateSnippetInput carries a partial update: nil pointers mean "leave the
// field alone". For CollectionID, an empty string clears the reference.
type UpdateSnippetInput struct {
	Title        *string
	Description  *string
	Code         *string
	Language     *string
	Tags         []string // nil = unchanged; empty slice = clear tags
	IsPublic     *bool
	CollectionID *string
}

// SnippetService implements the snippet operations: the filtered,
// access-controlled listing, the visibility-checked single fetch with its
// view side effect, and the ownership-checked mutations.
type SnippetService struct {
	snippets    repository.SnippetRepository
	collections repository.CollectionRepository
	logger      *slog.Logger
}

// NewSnippetService wires the service to its repositories.
func NewSnippetService(snippets repository.SnippetRepository, collections repository.CollectionRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		snippets:    snippets,
		collections: collections,
		logger:      logger,
	}
}

// List returns one page of the caller's own snippets, filtered and sorted
// per the raw parameters. The predicate is always scoped to the principal:
// this is a personal-library view, so the isPublic filter narrows within
// the caller's snippets and never exposes anyone else's.
//
// The count and the page fetch run concurrently over the identical compiled
// plan, so the total and the returned items agree with each other at the
// granularity the store provides.
func (s *SnippetService) List(ctx context.Context, principalID string, params query.Params) (*SnippetPage, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated("authentication required to list snippets")
	}

	plan := query.Compile(params)
	plan.Filter = plan.Filter.WithAuthor(principalID)

	var (
		items []model.Snippet
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.snippets.List(gctx, plan)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.snippets.Count(gctx, plan.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	pages := int((total + int64(plan.Page.Limit) - 1) / int64(plan.Page.Limit))

	return &SnippetPage{
		Snippets: items,
		Pagination: Pagination{
			Current: plan.Page.Num,
			Pages:   pages,
			Total:   total,
			HasNext: plan.Page.Num < pages,
			HasPrev: plan.Page.Num > 1,
		},
	}, nil
}

// Get returns one snippet by id. Owners always see their snippets; everyone
// else (including anonymous callers, principalID == "") sees only public
// ones and counts as a view. Owners never bump their own view counter.
func (s *SnippetService) Get(ctx context.Context, principalID, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if principalID == snippet.AuthorID {
		return snippet, nil
	}
	if !snippet.IsPublic {
		return nil, apperror.Forbidden("this snippet is private")
	}

	views, err := s.snippets.IncrementViews(ctx, id)
	if err != nil {
		s.logger.Error("failed to increment views",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("incrementing views: %w", err)
	}
	snippet.Views = views

	return snippet, nil
}

// Create validates and saves a new snippet owned by the principal, then
// re-fetches it so the response carries the expanded author projection.
func (s *SnippetService) Create(ctx context.Context, principalID string, in CreateSnippetInput) (*model.Snippet, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated("authentication required to create snippets")
	}

	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateCode(in.Code); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	language := model.NormalizeLanguage(in.Language)
	if !model.ValidLanguage(language) {
		return nil, apperror.ValidationFailed("language",
			fmt.Sprintf("language must be one of the supported values, got %q", in.Language))
	}

	tags := model.NormalizeTags(in.Tags)
	if err := validateTags(tags); err != nil {
		return nil, err
	}

	collectionID, err := s.resolveCollection(ctx, principalID, in.CollectionID)
	if err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		Title:        title,
		Description:  description,
		Code:         in.Code,
		Language:     language,
		Tags:         tags,
		IsPublic:     in.IsPublic,
		AuthorID:     principalID,
		CollectionID: collectionID,
	}

	if err := s.snippets.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("author", principalID),
	)

	return s.snippets.GetByID(ctx, snippet.ID)
}

// Update applies a partial update to a snippet the principal owns. Only the
// fields present in the input are mutated; the author, views, and likes are
// never touched here. UpdatedAt is set explicitly on every call.
func (s *SnippetService) Update(ctx context.Context, principalID, id string, in UpdateSnippetInput) (*model.Snippet, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated("authentication required to update snippets")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snippet.AuthorID != principalID {
		return nil, apperror.Forbidden("only the owner can update this snippet")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		snippet.Title = title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if err := validateDescription(description); err != nil {
			return nil, err
		}
		snippet.Description = description
	}
	if in.Code != nil {
		if err := validateCode(*in.Code); err != nil {
			return nil, err
		}
		snippet.Code = *in.Code
	}
	if in.Language != nil {
		language := model.NormalizeLanguage(*in.Language)
		if !model.ValidLanguage(language) {
			return nil, apperror.ValidationFailed("language",
				fmt.Sprintf("language must be one of the supported values, got %q", *in.Language))
		}
		snippet.Language = language
	}
	if in.Tags != nil {
		tags := model.NormalizeTags(in.Tags)
		if err := validateTags(tags); err != nil {
			return nil, err
		}
		snippet.Tags = tags
	}
	if in.IsPublic != nil {
		snippet.IsPublic = *in.IsPublic
	}
	if in.CollectionID != nil {
		collectionID, err := s.resolveCollection(ctx, principalID, in.CollectionID)
		if err != nil {
			return nil, err
		}
		snippet.CollectionID = collectionID
	}

	// Set explicitly rather than relying on any store-side auto-touch.
	snippet.UpdatedAt = nowUTC()

	if err := s.snippets.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", id))

	return s.snippets.GetByID(ctx, id)
}

// Delete removes a snippet the principal owns. The collection reference is
// detached first as an explicit protocol step, then the record is removed.
func (s *SnippetService) Delete(ctx context.Context, principalID, id string) error {
	if principalID == "" {
		return apperror.Unauthenticated("authentication required to delete snippets")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if snippet.AuthorID != principalID {
		return apperror.Forbidden("only the owner can delete this snippet")
	}

	if err := s.collections.DetachSnippet(ctx, id); err != nil {
		return fmt.Errorf("detaching snippet from collection: %w", err)
	}
	if err := s.snippets.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

// ToggleLike flips the principal's membership in the snippet's like set:
// present means remove, absent means add. Two calls in a row restore the
// original state. Any authenticated principal may toggle.
func (s *SnippetService) ToggleLike(ctx context.Context, principalID, id string) (*model.Snippet, error) {
	if principalID == "" {
		return nil, apperror.Unauthenticated("authentication required to like snippets")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	liked, err := s.snippets.ToggleLike(ctx, id, principalID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("snippet like toggled",
		slog.String("id", id),
		slog.String("user", principalID),
		slog.Bool("liked", liked),
	)

	return s.snippets.GetByID(ctx, id)
}

// resolveCollection validates a collection reference: nil or "" clears the
// reference, otherwise the collection must exist and belong to the
// principal.
func (s *SnippetService) resolveCollection(ctx context.Context, principalID string, collectionID *string) (*string, error) {
	if collectionID == nil {
		return nil, nil
	}
	id := strings.TrimSpace(*collectionID)
	if id == "" {
		return nil, nil
	}

	collection, err := s.collections.GetCollectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if collection.OwnerID != principalID {
		return nil, apperror.Forbidden("collection belongs to another user")
	}
	return &collection.ID, nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "snippet title is required")
	}
	if len(title) > model.MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("snippet title must be %d characters or less", model.MaxTitleLength))
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > model.MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", model.MaxDescriptionLength))
	}
	return nil
}

func validateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return apperror.ValidationFailed("code", "snippet code is required")
	}
	if len(code) > model.MaxCodeLength {
		return apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", model.MaxCodeLength))
	}
	return nil
}

func validateTags(tags []string) error {
	for _, tag := range tags {
		if len(tag) > model.MaxTagLength {
			return apperror.ValidationFailed("tags",
				fmt.Sprintf("tags must be %d characters or less", model.MaxTagLength))
		}
	}
	return nil
}
