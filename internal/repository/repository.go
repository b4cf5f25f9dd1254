// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage is the production implementation;
// tests may substitute their own.
package repository

import (
	"context"

	"github.com/snippetify/snippetify/internal/model"
	"github.com/snippetify/snippetify/internal/query"
)

// SnippetRepository persists snippets. Read operations return snippets with
// the author expanded to its public projection and the like set loaded.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)

	// List returns one page of snippets matching the compiled plan.
	List(ctx context.Context, plan query.Plan) ([]model.Snippet, error)
	// Count returns the total number of snippets matching the filter,
	// ignoring pagination. List and Count over the same plan are what the
	// service runs concurrently to build the pagination envelope.
	Count(ctx context.Context, filter query.Filter) (int64, error)

	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error

	// IncrementViews bumps the view counter atomically in the store and
	// returns the new value. Lost updates under concurrency are not
	// possible with this primitive.
	IncrementViews(ctx context.Context, id string) (int64, error)

	// ToggleLike flips the given user's membership in the snippet's like
	// set and reports the resulting state (true = now liked).
	ToggleLike(ctx context.Context, id, userID string) (bool, error)
}

// UserRepository persists user records. Accounts originate with the external
// identity service; this store only mirrors the public profile fields needed
// for author expansion.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// Upsert inserts or refreshes a profile mirror keyed by id.
	Upsert(ctx context.Context, user *model.User) error
}

// CollectionRepository persists collections and owns the snippet-detach step
// of the deletion protocol.
type CollectionRepository interface {
	CreateCollection(ctx context.Context, collection *model.Collection) error
	GetCollectionByID(ctx context.Context, id string) (*model.Collection, error)
	ListCollectionsByOwner(ctx context.Context, ownerID string) ([]model.Collection, error)
	// DeleteCollection removes a collection; its snippets stay, uncategorized.
	DeleteCollection(ctx context.Context, id string) error
	// DetachSnippet clears the given snippet's collection reference, if any.
	// Called by the snippet-delete protocol before the record is removed.
	DetachSnippet(ctx context.Context, snippetID string) error
}
