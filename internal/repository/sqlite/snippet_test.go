package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/snippetify/snippetify/internal/apperror"
	"github.com/snippetify/snippetify/internal/model"
	"github.com/snippetify/snippetify/internal/query"
)

// newTestDB opens a fresh in-memory database per test. t.Cleanup closes it
// even when subtests fail.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, FirstName: "Test", LastName: "User"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// seedSnippet fills the required fields with defaults, applies the caller's
// values on top, and persists.
func seedSnippet(t *testing.T, db *DB, authorID string, mutate func(*model.Snippet)) *model.Snippet {
	t.Helper()
	s := &model.Snippet{
		Title:    "Test Snippet",
		Code:     "print(1)",
		Language: "python",
		AuthorID: authorID,
	}
	if mutate != nil {
		mutate(s)
	}
	if err := db.Create(context.Background(), s); err != nil {
		t.Fatalf("failed to seed snippet: %v", err)
	}
	return s
}

func listIDs(snippets []model.Snippet) []string {
	ids := make([]string, len(snippets))
	for i, s := range snippets {
		ids[i] = s.ID
	}
	return ids
}

func planFor(params query.Params, authorID string) query.Plan {
	plan := query.Compile(params)
	plan.Filter = plan.Filter.WithAuthor(authorID)
	return plan
}

func TestCreateSnippet(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ada")

	s := &model.Snippet{
		Title:    "Hello",
		Code:     "print('hello')",
		Language: "python",
		Tags:     []string{"demo", "hello"},
		AuthorID: user.ID,
	}
	if err := db.Create(context.Background(), s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if s.ID == "" {
		t.Error("Create() did not set ID")
	}
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
	if s.Views != 0 {
		t.Errorf("Create() views = %d, want 0", s.Views)
	}

	got, err := db.GetByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Hello" || got.Language != "python" {
		t.Errorf("persisted snippet = %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "demo" || got.Tags[1] != "hello" {
		t.Errorf("persisted tags = %v, want [demo hello]", got.Tags)
	}
	if len(got.Likes) != 0 {
		t.Errorf("new snippet likes = %v, want empty", got.Likes)
	}
}

func TestGetByID_ExpandsAuthor(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ada")
	s := seedSnippet(t, db, user.ID, nil)

	got, err := db.GetByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Author == nil {
		t.Fatal("GetByID() did not expand the author")
	}
	if got.Author.ID != user.ID || got.Author.Username != "ada" {
		t.Errorf("author = %+v, want id=%s username=ada", got.Author, user.ID)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestList_ScopedByAuthor(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")
	bob := createTestUser(t, db, "bob")

	mine := seedSnippet(t, db, ada.ID, nil)
	seedSnippet(t, db, bob.ID, func(s *model.Snippet) { s.IsPublic = true })

	got, err := db.List(context.Background(), planFor(query.Params{}, ada.ID))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(got) != 1 || got[0].ID != mine.ID {
		t.Errorf("List() ids = %v, want only %s", listIDs(got), mine.ID)
	}
}

func TestList_LanguageAndVisibilityFilters(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")

	goPublic := seedSnippet(t, db, ada.ID, func(s *model.Snippet) {
		s.Language = "go"
		s.IsPublic = true
	})
	goPrivate := seedSnippet(t, db, ada.ID, func(s *model.Snippet) {
		s.Language = "go"
	})
	pyPublic := seedSnippet(t, db, ada.ID, func(s *model.Snippet) {
		s.IsPublic = true
	})

	got, err := db.List(context.Background(), planFor(query.Params{Language: "go"}, ada.ID))
	if err != nil {
		t.Fatalf("List(language=go) error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("List(language=go) ids = %v, want %v", listIDs(got), []string{goPrivate.ID, goPublic.ID})
	}

	got, err = db.List(context.Background(), planFor(query.Params{IsPublic: "true"}, ada.ID))
	if err != nil {
		t.Fatalf("List(isPublic=true) error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("List(isPublic=true) = %v, want %v", listIDs(got), []string{pyPublic.ID, goPublic.ID})
	}

	got, err = db.List(context.Background(),
		planFor(query.Params{Language: "go", IsPublic: "false"}, ada.ID))
	if err != nil {
		t.Fatalf("List(go,private) error = %v", err)
	}
	if len(got) != 1 || got[0].ID != goPrivate.ID {
		t.Errorf("List(go,private) = %v, want [%s]", listIDs(got), goPrivate.ID)
	}
}

func TestList_CollectionFilter(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")

	col := &model.Collection{Name: "Algorithms", OwnerID: ada.ID}
	if err := db.CreateCollection(context.Background(), col); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}

	inCol := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.CollectionID = &col.ID })
	loose := seedSnippet(t, db, ada.ID, nil)

	got, err := db.List(context.Background(), planFor(query.Params{Collection: col.ID}, ada.ID))
	if err != nil {
		t.Fatalf("List(collection=id) error = %v", err)
	}
	if len(got) != 1 || got[0].ID != inCol.ID {
		t.Errorf("List(collection=id) = %v, want [%s]", listIDs(got), inCol.ID)
	}

	got, err = db.List(context.Background(),
		planFor(query.Params{Collection: "uncategorized"}, ada.ID))
	if err != nil {
		t.Fatalf("List(uncategorized) error = %v", err)
	}
	if len(got) != 1 || got[0].ID != loose.ID {
		t.Errorf("List(uncategorized) = %v, want [%s]", listIDs(got), loose.ID)
	}

	got, err = db.List(context.Background(), planFor(query.Params{Collection: "all"}, ada.ID))
	if err != nil {
		t.Fatalf("List(all) error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("List(all) = %v, want both snippets", listIDs(got))
	}
}

func TestList_SearchDisjunction(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")

	byTitle := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Title = "foo helper" })
	byDescription := seedSnippet(t, db, ada.ID, func(s *model.Snippet) {
		s.Description = "utilities for Foo parsing"
	})
	byTag := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Tags = []string{"foo", "cli"} })
	seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Title = "unrelated" })

	got, err := db.List(context.Background(), planFor(query.Params{Search: "foo"}, ada.ID))
	if err != nil {
		t.Fatalf("List(search=foo) error = %v", err)
	}

	want := map[string]bool{byTitle.ID: true, byDescription.ID: true, byTag.ID: true}
	if len(got) != 3 {
		t.Fatalf("List(search=foo) returned %d snippets (%v), want 3", len(got), listIDs(got))
	}
	for _, s := range got {
		if !want[s.ID] {
			t.Errorf("List(search=foo) returned unexpected snippet %s", s.ID)
		}
	}
}

func TestList_SearchTreatsWildcardsLiterally(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")

	literal := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Title = "discount 50% off" })
	seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Title = "fifty things" })

	got, err := db.List(context.Background(), planFor(query.Params{Search: "50%"}, ada.ID))
	if err != nil {
		t.Fatalf("List(search=50%%) error = %v", err)
	}
	if len(got) != 1 || got[0].ID != literal.ID {
		t.Errorf("List(search=50%%) = %v, want [%s]", listIDs(got), literal.ID)
	}
}

func TestList_SortAndPagination(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")

	a := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Title = "alpha" })
	b := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Title = "bravo" })
	c := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Title = "charlie" })

	got, err := db.List(context.Background(),
		planFor(query.Params{SortBy: "title", SortOrder: "asc"}, ada.ID))
	if err != nil {
		t.Fatalf("List(sort title asc) error = %v", err)
	}
	wantOrder := []string{a.ID, b.ID, c.ID}
	for i, id := range listIDs(got) {
		if id != wantOrder[i] {
			t.Fatalf("sort order = %v, want %v", listIDs(got), wantOrder)
		}
	}

	// Second page of size 2, same ordering.
	got, err = db.List(context.Background(),
		planFor(query.Params{SortBy: "title", SortOrder: "asc", Page: "2", Limit: "2"}, ada.ID))
	if err != nil {
		t.Fatalf("List(page 2) error = %v", err)
	}
	if len(got) != 1 || got[0].ID != c.ID {
		t.Errorf("page 2 = %v, want [%s]", listIDs(got), c.ID)
	}
}

func TestCount_MatchesFilter(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")
	bob := createTestUser(t, db, "bob")

	seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Language = "go" })
	seedSnippet(t, db, ada.ID, nil)
	seedSnippet(t, db, bob.ID, func(s *model.Snippet) { s.Language = "go" })

	total, err := db.Count(context.Background(), planFor(query.Params{}, ada.ID).Filter)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 2 {
		t.Errorf("Count(ada) = %d, want 2", total)
	}

	total, err = db.Count(context.Background(), planFor(query.Params{Language: "go"}, ada.ID).Filter)
	if err != nil {
		t.Fatalf("Count(go) error = %v", err)
	}
	if total != 1 {
		t.Errorf("Count(ada, go) = %d, want 1", total)
	}
}

func TestUpdateSnippet(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")
	s := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Tags = []string{"old"} })

	s.Title = "renamed"
	s.Tags = []string{"new", "tags"}
	s.IsPublic = true
	if err := db.Update(context.Background(), s); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.GetByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "renamed" || !got.IsPublic {
		t.Errorf("updated snippet = %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "new" {
		t.Errorf("updated tags = %v, want [new tags]", got.Tags)
	}
}

func TestUpdateSnippet_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.Snippet{ID: "missing", Title: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSnippet(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")
	s := seedSnippet(t, db, ada.ID, func(s *model.Snippet) { s.Tags = []string{"t"} })

	if _, err := db.ToggleLike(context.Background(), s.ID, ada.ID); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}

	if err := db.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.GetByID(context.Background(), s.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID after delete error = %v, want ErrNotFound", err)
	}

	if err := db.Delete(context.Background(), s.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestIncrementViews(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")
	s := seedSnippet(t, db, ada.ID, nil)

	views, err := db.IncrementViews(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("IncrementViews() error = %v", err)
	}
	if views != 1 {
		t.Errorf("first increment = %d, want 1", views)
	}

	views, err = db.IncrementViews(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("IncrementViews() error = %v", err)
	}
	if views != 2 {
		t.Errorf("second increment = %d, want 2", views)
	}

	if _, err := db.IncrementViews(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("IncrementViews(missing) error = %v, want ErrNotFound", err)
	}
}

func TestToggleLike_Flips(t *testing.T) {
	db := newTestDB(t)
	ada := createTestUser(t, db, "ada")
	bob := createTestUser(t, db, "bob")
	s := seedSnippet(t, db, ada.ID, nil)

	liked, err := db.ToggleLike(context.Background(), s.ID, bob.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if !liked {
		t.Error("first toggle should like")
	}

	got, _ := db.GetByID(context.Background(), s.ID)
	if len(got.Likes) != 1 || got.Likes[0] != bob.ID {
		t.Errorf("likes = %v, want [%s]", got.Likes, bob.ID)
	}

	liked, err = db.ToggleLike(context.Background(), s.ID, bob.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if liked {
		t.Error("second toggle should unlike")
	}

	got, _ = db.GetByID(context.Background(), s.ID)
	if len(got.Likes) != 0 {
		t.Errorf("likes after unlike = %v, want empty", got.Likes)
	}

	if _, err := db.ToggleLike(context.Background(), "missing", bob.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ToggleLike(missing) error = %v, want ErrNotFound", err)
	}
}
