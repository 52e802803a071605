package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/yabzec/SnipHub/internal/apperror"
	"github.com/yabzec/SnipHub/internal/model"
	"github.com/yabzec/SnipHub/internal/repository"
)

// compile-time check that *DB implements repository.SnippetRepository
var _ repository.SnippetRepository = (*DB)(nil)

// Create inserts a snippet row and one association row per tag id.
//
// The insert and the association inserts are separate statements with no
// transaction: a failure in between leaves a snippet with fewer tags than
// requested. That window is accepted — the service layer has already checked
// tag ownership, and the client sees the error and can retry the tagging.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet, tagIDs []string) error {
	snippet.ID = xid.New().String()
	snippet.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, title, content, language, is_favorite,
			created_at, folder_id, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Title,
		snippet.Content,
		snippet.Language,
		snippet.IsFavorite,
		snippet.CreatedAt,
		snippet.FolderID,
		snippet.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	if err := db.addTagLinks(ctx, snippet.ID, tagIDs); err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a snippet by id, scoped to its owner, with tags attached.
func (db *DB) GetByID(ctx context.Context, userID, id string) (*model.Snippet, error) {
	var s model.Snippet

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, content, language, is_favorite, created_at, folder_id, user_id
		 FROM snippets
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&s.ID, &s.Title, &s.Content, &s.Language, &s.IsFavorite,
		&s.CreatedAt, &s.FolderID, &s.UserID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	tags, err := db.tagsForSnippets(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.Tags = tags[s.ID]
	if s.Tags == nil {
		s.Tags = []model.TagRef{}
	}

	return &s, nil
}

// List returns one page of the user's snippets, newest first, optionally
// filtered to a folder, plus the total matching count. Tags are joined and
// attached inline.
func (db *DB) List(ctx context.Context, userID string, folderID *string, opts repository.ListOptions) ([]model.Snippet, int, error) {
	where := `WHERE user_id = ?`
	args := []any{userID}
	if folderID != nil {
		where += ` AND folder_id = ?`
		args = append(args, *folderID)
	}

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snippets `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting snippets: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 25
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, content, language, is_favorite, created_at, folder_id, user_id
		 FROM snippets `+where+`
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0, limit)
	ids := make([]string, 0, limit)

	for rows.Next() {
		var s model.Snippet
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Content, &s.Language, &s.IsFavorite,
			&s.CreatedAt, &s.FolderID, &s.UserID,
		); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		s.Tags = []model.TagRef{}
		snippets = append(snippets, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	tagsByID, err := db.tagsForSnippets(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range snippets {
		if tags, ok := tagsByID[snippets[i].ID]; ok {
			snippets[i].Tags = tags
		}
	}

	return snippets, total, nil
}

// Update writes the merged snippet fields (the service owns the merge rules)
// and applies tag association changes. Ownership is part of the WHERE clause,
// so updating someone else's snippet reads as not found.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet, ops repository.TagOps) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, content = ?, language = ?, is_favorite = ?, folder_id = ?
		 WHERE id = ? AND user_id = ?`,
		snippet.Title,
		snippet.Content,
		snippet.Language,
		snippet.IsFavorite,
		snippet.FolderID,
		snippet.ID,
		snippet.UserID,
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

	if len(ops.Add) > 0 {
		if err := db.addTagLinks(ctx, snippet.ID, ops.Add); err != nil {
			return err
		}
	}
	if len(ops.Remove) > 0 {
		if err := db.removeTagLinks(ctx, snippet.ID, ops.Remove); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes a snippet if id and owner both match. Association rows
// cascade.
func (db *DB) Delete(ctx context.Context, userID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ? AND user_id = ?`,
		id, userID,
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

// addTagLinks inserts association rows, skipping pairs that already exist.
func (db *DB) addTagLinks(ctx context.Context, snippetID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		_, err := db.conn.ExecContext(ctx,
			`INSERT OR IGNORE INTO snippets_to_tags (snippet_id, tag_id) VALUES (?, ?)`,
			snippetID, tagID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: linking snippet %s to tag %s: %w", snippetID, tagID, err)
		}
	}
	return nil
}

// removeTagLinks deletes association rows. Missing pairs are not an error.
func (db *DB) removeTagLinks(ctx context.Context, snippetID string, tagIDs []string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets_to_tags
		 WHERE snippet_id = ? AND tag_id IN (`+placeholders(len(tagIDs))+`)`,
		append([]any{snippetID}, toAnySlice(tagIDs)...)...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unlinking tags from snippet %s: %w", snippetID, err)
	}
	return nil
}

// tagsForSnippets fetches the flattened tag rows for a set of snippet ids in
// a single join, keyed by snippet id.
func (db *DB) tagsForSnippets(ctx context.Context, snippetIDs []string) (map[string][]model.TagRef, error) {
	result := make(map[string][]model.TagRef, len(snippetIDs))
	if len(snippetIDs) == 0 {
		return result, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT st.snippet_id, t.id, t.label, t.color
		 FROM snippets_to_tags st
		 JOIN tags t ON t.id = st.tag_id
		 WHERE st.snippet_id IN (`+placeholders(len(snippetIDs))+`)`,
		toAnySlice(snippetIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading snippet tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var snippetID string
		var tag model.TagRef
		if err := rows.Scan(&snippetID, &tag.ID, &tag.Label, &tag.Color); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet tag row: %w", err)
		}
		result[snippetID] = append(result[snippetID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippet tags: %w", err)
	}

	return result, nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
