package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/yabzec/SnipHub/internal/apperror"
	"github.com/yabzec/SnipHub/internal/model"
	"github.com/yabzec/SnipHub/internal/repository"
)

// Tags and folders share the same row shape and lifecycle, so both
// repositories live here. The UNIQUE(user_id, label) constraint enforces
// per-user label uniqueness at the schema level; a violation surfaces as a
// conflict error rather than a racy read-then-insert check.

var (
	_ repository.TagRepository    = (*DB)(nil)
	_ repository.FolderRepository = (*DB)(nil)
)

// CreateTag inserts a tag for its owning user.
func (db *DB) CreateTag(ctx context.Context, tag *model.Tag) error {
	tag.ID = xid.New().String()
	tag.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, label, color, created_at, user_id)
		 VALUES (?, ?, ?, ?, ?)`,
		tag.ID, tag.Label, tag.Color, tag.CreatedAt, tag.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("tag label %q already exists", tag.Label))
		}
		return fmt.Errorf("sqlite: creating tag: %w", err)
	}

	return nil
}

// ListTags returns every tag owned by the user. No pagination — tag counts
// stay small in practice.
func (db *DB) ListTags(ctx context.Context, userID string) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, label, color, created_at, user_id
		 FROM tags WHERE user_id = ? ORDER BY label`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Label, &t.Color, &t.CreatedAt, &t.UserID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tags, nil
}

// DeleteTag removes a tag if id and owner both match. Association rows on
// snippets cascade away with it.
func (db *DB) DeleteTag(ctx context.Context, userID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM tags WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting tag %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("tag", id)
	}

	return nil
}

// CountTagsOwned reports how many of the given tag ids belong to the user.
// The service compares the count against len(tagIDs) to reject associations
// referencing another user's tags.
func (db *DB) CountTagsOwned(ctx context.Context, userID string, tagIDs []string) (int, error) {
	if len(tagIDs) == 0 {
		return 0, nil
	}

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags
		 WHERE user_id = ? AND id IN (`+placeholders(len(tagIDs))+`)`,
		append([]any{userID}, toAnySlice(tagIDs)...)...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting owned tags: %w", err)
	}

	return count, nil
}

// CreateFolder inserts a folder for its owning user.
func (db *DB) CreateFolder(ctx context.Context, folder *model.Folder) error {
	folder.ID = xid.New().String()
	folder.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO folders (id, label, color, created_at, user_id)
		 VALUES (?, ?, ?, ?, ?)`,
		folder.ID, folder.Label, folder.Color, folder.CreatedAt, folder.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("folder label %q already exists", folder.Label))
		}
		return fmt.Errorf("sqlite: creating folder: %w", err)
	}

	return nil
}

// ListFolders returns every folder owned by the user.
func (db *DB) ListFolders(ctx context.Context, userID string) ([]model.Folder, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, label, color, created_at, user_id
		 FROM folders WHERE user_id = ? ORDER BY label`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing folders: %w", err)
	}
	defer rows.Close()

	folders := []model.Folder{}
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.Label, &f.Color, &f.CreatedAt, &f.UserID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning folder row: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating folders: %w", err)
	}

	return folders, nil
}

// DeleteFolder removes a folder if id and owner both match. Snippets in the
// folder keep existing with folder_id set to NULL.
func (db *DB) DeleteFolder(ctx context.Context, userID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM folders WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting folder %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("folder", id)
	}

	return nil
}
