package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/snippetify/snippetify/internal/apperror"
	"github.com/snippetify/snippetify/internal/model"
	"github.com/snippetify/snippetify/internal/repository"
)

var _ repository.CollectionRepository = (*DB)(nil)

// CreateCollection inserts a new collection, generating its id and timestamps.
func (db *DB) CreateCollection(ctx context.Context, c *model.Collection) error {
	c.ID = xid.New().String()

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO collections (id, name, description, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.OwnerID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating collection: %w", err)
	}
	return nil
}

// GetCollectionByID returns a collection by id.
func (db *DB) GetCollectionByID(ctx context.Context, id string) (*model.Collection, error) {
	var c model.Collection
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, owner_id, created_at, updated_at
		 FROM collections WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("collection", id)
		}
		return nil, fmt.Errorf("sqlite: getting collection %s: %w", id, err)
	}
	return &c, nil
}

// ListCollectionsByOwner returns the owner's collections, newest first.
func (db *DB) ListCollectionsByOwner(ctx context.Context, ownerID string) ([]model.Collection, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, owner_id, created_at, updated_at
		 FROM collections
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing collections: %w", err)
	}
	defer rows.Close()

	collections := []model.Collection{}
	for rows.Next() {
		var c model.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.OwnerID,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning collection row: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating collections: %w", err)
	}
	return collections, nil
}

// DeleteCollection removes the collection row. The snippets' collection_id
// columns go NULL via the foreign key, leaving them uncategorized.
func (db *DB) DeleteCollection(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM collections WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting collection %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("collection", id)
	}
	return nil
}

// DetachSnippet clears a snippet's collection reference. A snippet with no
// reference is left untouched; this step must succeed before the snippet
// record itself is removed.
func (db *DB) DetachSnippet(ctx context.Context, snippetID string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE snippets SET collection_id = NULL
		 WHERE id = ? AND collection_id IS NOT NULL`,
		snippetID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: detaching snippet %s: %w", snippetID, err)
	}
	return nil
}
