package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/snippetify/snippetify/internal/apperror"
	"github.com/snippetify/snippetify/internal/model"
	"github.com/snippetify/snippetify/internal/query"
	"github.com/snippetify/snippetify/internal/repository"
)

// Compile-time interface check.
var _ repository.SnippetRepository = (*DB)(nil)

// snippetColumns is the SELECT list shared by GetByID and List. The user
// join expands the author to its public projection in the same query.
const snippetColumns = `
	s.id, s.title, s.description, s.code, s.language, s.is_public,
	s.views, s.author_id, s.collection_id, s.created_at, s.updated_at,
	u.username, u.first_name, u.last_name, u.avatar_url`

// Create inserts a snippet and its tag rows in one transaction.
// The snippet's ID and timestamps are filled in on the passed struct.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now().UTC()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snippets
		 (id, title, description, code, language, is_public, views,
		  author_id, collection_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Title,
		snippet.Description,
		snippet.Code,
		snippet.Language,
		snippet.IsPublic,
		snippet.AuthorID,
		snippet.CollectionID,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	if err := replaceTags(ctx, tx, snippet.ID, snippet.Tags); err != nil {
		return fmt.Errorf("sqlite: writing snippet tags: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet create: %w", err)
	}

	snippet.Views = 0
	if snippet.Likes == nil {
		snippet.Likes = []string{}
	}
	return nil
}

// GetByID returns one snippet with its author projection, tags, and like set.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT`+snippetColumns+`
		 FROM snippets s
		 JOIN users u ON u.id = s.author_id
		 WHERE s.id = ?`,
		id,
	)

	snippet, err := scanSnippet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	if err := db.loadTagsAndLikes(ctx, []*model.Snippet{snippet}); err != nil {
		return nil, err
	}
	return snippet, nil
}

// List returns one page of snippets for the compiled plan, authors expanded.
func (db *DB) List(ctx context.Context, plan query.Plan) ([]model.Snippet, error) {
	where, args := whereClause(plan.Filter)
	args = append(args, plan.Page.Limit, plan.Page.Skip)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT`+snippetColumns+`
		 FROM snippets s
		 JOIN users u ON u.id = s.author_id
		 `+where+`
		 ORDER BY `+orderClause(plan.Sort)+`
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0, plan.Page.Limit)
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	refs := make([]*model.Snippet, len(snippets))
	for i := range snippets {
		refs[i] = &snippets[i]
	}
	if err := db.loadTagsAndLikes(ctx, refs); err != nil {
		return nil, err
	}
	return snippets, nil
}

// Count returns the number of snippets matching the filter, ignoring
// pagination. Uses the identical WHERE clause as List so the two stay
// consistent for the pagination envelope.
func (db *DB) Count(ctx context.Context, filter query.Filter) (int64, error) {
	where, args := whereClause(filter)

	var total int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snippets s `+where, args...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting snippets: %w", err)
	}
	return total, nil
}

// Update rewrites the snippet's mutable columns and replaces its tag rows.
// The author, views, and like set are never touched here.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, description = ?, code = ?, language = ?,
		     is_public = ?, collection_id = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Description,
		snippet.Code,
		snippet.Language,
		snippet.IsPublic,
		snippet.CollectionID,
		snippet.UpdatedAt,
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	if err := replaceTags(ctx, tx, snippet.ID, snippet.Tags); err != nil {
		return fmt.Errorf("sqlite: replacing snippet tags: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet update: %w", err)
	}
	return nil
}

// Delete removes the snippet row; tag and like rows cascade.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}
	return nil
}

// IncrementViews bumps the counter in a single UPDATE, so concurrent reads
// of the same snippet never lose an increment.
func (db *DB) IncrementViews(ctx context.Context, id string) (int64, error) {
	var views int64
	err := db.conn.QueryRowContext(ctx,
		`UPDATE snippets SET views = views + 1 WHERE id = ? RETURNING views`,
		id,
	).Scan(&views)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apperror.NotFound("snippet", id)
		}
		return 0, fmt.Errorf("sqlite: incrementing views for %s: %w", id, err)
	}
	return views, nil
}

// ToggleLike flips the user's membership in the snippet's like set.
// The (snippet_id, user_id) primary key guarantees at-most-once membership.
func (db *DB) ToggleLike(ctx context.Context, id, userID string) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snippets WHERE id = ?`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking snippet %s: %w", id, err)
	}
	if exists == 0 {
		return false, apperror.NotFound("snippet", id)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM snippet_likes WHERE snippet_id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: unliking snippet %s: %w", id, err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	liked := false
	if removed == 0 {
		// Nothing to remove — this call is a like, not an unlike.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snippet_likes (snippet_id, user_id) VALUES (?, ?)`,
			id, userID,
		)
		if err != nil {
			return false, fmt.Errorf("sqlite: liking snippet %s: %w", id, err)
		}
		liked = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing like toggle: %w", err)
	}
	return liked, nil
}

// --- query building -------------------------------------------------------

// whereClause builds the WHERE fragment for a compiled filter. Only typed
// plan values reach this point; every user-supplied string is bound as a
// parameter, never spliced into the SQL text.
func whereClause(f query.Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if f.AuthorID != "" {
		clauses = append(clauses, "s.author_id = ?")
		args = append(args, f.AuthorID)
	}

	switch f.Visibility {
	case query.VisibilityPublic:
		clauses = append(clauses, "s.is_public = 1")
	case query.VisibilityPrivate:
		clauses = append(clauses, "s.is_public = 0")
	}

	if f.Language != "" {
		clauses = append(clauses, "s.language = ?")
		args = append(args, f.Language)
	}

	switch f.Collection.Mode {
	case query.CollectionNone:
		clauses = append(clauses, "s.collection_id IS NULL")
	case query.CollectionID:
		clauses = append(clauses, "s.collection_id = ?")
		args = append(args, f.Collection.ID)
	}

	if f.Search != "" {
		// Disjunction over title, description, and any tag. SQLite's LIKE
		// is case-insensitive for ASCII, which matches the write-time
		// lowercasing of tags and the case-insensitive search contract.
		pattern := "%" + escapeLike(f.Search) + "%"
		clauses = append(clauses,
			`(s.title LIKE ? ESCAPE '\'
			  OR s.description LIKE ? ESCAPE '\'
			  OR EXISTS (SELECT 1 FROM snippet_tags st
			             WHERE st.snippet_id = s.id AND st.tag LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// orderClause maps the compiled sort to columns. The id is appended as a
// secondary key in the same direction so ordering among equal values is
// deterministic and pagination stays stable.
func orderClause(s query.Sort) string {
	col := "s.created_at"
	switch s.Field {
	case query.SortUpdatedAt:
		col = "s.updated_at"
	case query.SortTitle:
		col = "s.title"
	case query.SortViews:
		col = "s.views"
	case query.SortLanguage:
		col = "s.language"
	}

	dir := "DESC"
	if s.Direction == query.Asc {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s, s.id %s", col, dir, dir)
}

// escapeLike escapes LIKE metacharacters so the search term is a literal
// substring, not a pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// --- row mapping ----------------------------------------------------------

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row rowScanner) (*model.Snippet, error) {
	var (
		s            model.Snippet
		author       model.Author
		collectionID sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.Title, &s.Description, &s.Code, &s.Language, &s.IsPublic,
		&s.Views, &s.AuthorID, &collectionID, &s.CreatedAt, &s.UpdatedAt,
		&author.Username, &author.FirstName, &author.LastName, &author.AvatarURL,
	)
	if err != nil {
		return nil, err
	}

	author.ID = s.AuthorID
	s.Author = &author
	if collectionID.Valid {
		s.CollectionID = &collectionID.String
	}
	s.Tags = []string{}
	s.Likes = []string{}
	return &s, nil
}

// loadTagsAndLikes fills Tags and Likes for the given snippets with one
// query per table rather than one per snippet.
func (db *DB) loadTagsAndLikes(ctx context.Context, snippets []*model.Snippet) error {
	if len(snippets) == 0 {
		return nil
	}

	byID := make(map[string]*model.Snippet, len(snippets))
	placeholders := make([]string, 0, len(snippets))
	ids := make([]any, 0, len(snippets))
	for _, s := range snippets {
		byID[s.ID] = s
		placeholders = append(placeholders, "?")
		ids = append(ids, s.ID)
	}
	in := "(" + strings.Join(placeholders, ", ") + ")"

	rows, err := db.conn.QueryContext(ctx,
		`SELECT snippet_id, tag FROM snippet_tags
		 WHERE snippet_id IN `+in+`
		 ORDER BY snippet_id, position`,
		ids...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading snippet tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var snippetID, tag string
		if err := rows.Scan(&snippetID, &tag); err != nil {
			return fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		if s := byID[snippetID]; s != nil {
			s.Tags = append(s.Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating tag rows: %w", err)
	}

	likeRows, err := db.conn.QueryContext(ctx,
		`SELECT snippet_id, user_id FROM snippet_likes
		 WHERE snippet_id IN `+in+`
		 ORDER BY snippet_id, created_at`,
		ids...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading snippet likes: %w", err)
	}
	defer likeRows.Close()
	for likeRows.Next() {
		var snippetID, userID string
		if err := likeRows.Scan(&snippetID, &userID); err != nil {
			return fmt.Errorf("sqlite: scanning like row: %w", err)
		}
		if s := byID[snippetID]; s != nil {
			s.Likes = append(s.Likes, userID)
		}
	}
	if err := likeRows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating like rows: %w", err)
	}

	return nil
}

// replaceTags rewrites the tag rows for a snippet inside the caller's tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func replaceTags(ctx context.Context, tx execer, snippetID string, tags []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snippet_tags WHERE snippet_id = ?`, snippetID,
	); err != nil {
		return err
	}
	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snippet_tags (snippet_id, position, tag) VALUES (?, ?, ?)`,
			snippetID, i, tag,
		); err != nil {
			return err
		}
	}
	return nil
}
