package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/snippetify/snippetify/internal/apperror"
	"github.com/snippetify/snippetify/internal/model"
	"github.com/snippetify/snippetify/internal/query"
)

func createTestCollection(t *testing.T, db *DB, ownerID, name string) *model.Collection {
	t.Helper()
	c := &model.Collection{Name: name, OwnerID: ownerID}
	if err := db.CreateCollection(context.Background(), c); err != nil {
		t.Fatalf("failed to create test collection: %v", err)
	}
	return c
}

func TestCreateAndGetCollection(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")

	c := createTestCollection(t, db, ada.ID, "Algorithms")
	if c.ID == "" {
		t.Fatal("CreateCollection() did not set an id")
	}

	got, err := db.GetCollectionByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetCollectionByID() error = %v", err)
	}
	if got.Name != "Algorithms" || got.OwnerID != ada.ID {
		t.Errorf("GetCollectionByID() = %+v", got)
	}
}

func TestGetCollectionByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetCollectionByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetCollectionByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListCollectionsByOwner(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")
	bob := createTestUser(t, db, "bob")

	createTestCollection(t, db, ada.ID, "First")
	createTestCollection(t, db, ada.ID, "Second")
	createTestCollection(t, db, bob.ID, "Other")

	got, err := db.ListCollectionsByOwner(context.Background(), ada.ID)
	if err != nil {
		t.Fatalf("ListCollectionsByOwner() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListCollectionsByOwner() returned %d collections, want 2", len(got))
	}
	for _, c := range got {
		if c.OwnerID != ada.ID {
			t.Errorf("collection %s owned by %s, want %s", c.ID, c.OwnerID, ada.ID)
		}
	}
}

func TestDeleteCollection_LeavesSnippetsUncategorized(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")
	col := createTestCollection(t, db, ada.ID, "Doomed")
	s := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.CollectionID = &col.ID })

	if err := db.DeleteCollection(context.Background(), col.ID); err != nil {
		t.Fatalf("DeleteCollection() error = %v", err)
	}

	got, err := db.GetByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.CollectionID != nil {
		t.Errorf("snippet still references %s after collection delete", *got.CollectionID)
	}

	uncategorized, err := db.List(context.Background(),
		planFor(query.Params{Collection: "uncategorized"}, ada.ID))
	if err != nil {
		t.Fatalf("List(uncategorized) error = %v", err)
	}
	if len(uncategorized) != 1 || uncategorized[0].ID != s.ID {
		t.Errorf("List(uncategorized) = %v, want [%s]", listIDs(uncategorized), s.ID)
	}
}

func TestDeleteCollection_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteCollection(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteCollection(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDetachSnippet(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")
	col := createTestCollection(t, db, ada.ID, "Keep")
	attached := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.CollectionID = &col.ID })
	loose := seedSnippet(t, db, ada.ID, nil)

	if err := db.DetachSnippet(context.Background(), attached.ID); err != nil {
		t.Fatalf("DetachSnippet() error = %v", err)
	}
	got, _ := db.GetByID(context.Background(), attached.ID)
	if got.CollectionID != nil {
		t.Error("DetachSnippet() did not clear collection reference")
	}

	// No-op on a snippet that was never attached.
	if err := db.DetachSnippet(context.Background(), loose.ID); err != nil {
		t.Errorf("DetachSnippet(loose) error = %v", err)
	}
}
