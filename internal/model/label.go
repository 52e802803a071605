package model

import "time"

// DefaultLabelColor is applied when a tag or folder is created without a color.
const DefaultLabelColor = "#4f1c4f"

// Tag is a user-defined label attached to snippets through the
// snippets_to_tags association table. Labels are unique per owning user.
type Tag struct {
	ID        string    `json:"id"        db:"id"`
	Label     string    `json:"label"     db:"label"`
	Color     string    `json:"color"     db:"color"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UserID    string    `json:"userId"    db:"user_id"`
}

// Folder groups snippets for a single user. Same lifecycle shape as Tag;
// deleting a folder nulls the folder reference on its snippets rather than
// deleting them.
type Folder struct {
	ID        string    `json:"id"        db:"id"`
	Label     string    `json:"label"     db:"label"`
	Color     string    `json:"color"     db:"color"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UserID    string    `json:"userId"    db:"user_id"`
}
