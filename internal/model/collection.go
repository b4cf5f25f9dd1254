package model

import "time"

// MaxCollectionNameLength is the write-time limit for collection names.
const MaxCollectionNameLength = 100

// Collection is an optional grouping label for snippets. The relation is
// held on the snippet side (Snippet.CollectionID); deleting a collection
// leaves its snippets in place as uncategorized.
type Collection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
