package model

import "time"

// DefaultLanguage is stored when a snippet is created without one.
const DefaultLanguage = "text"

// Snippet represents a saved code snippet owned by a single user.
//
// FolderID is nil for snippets outside any folder. Tags carries the flattened
// tag rows joined through the association table — it is populated on reads
// and ignored on writes (associations are managed separately).
type Snippet struct {
	ID         string    `json:"id"         db:"id"`
	Title      string    `json:"title"      db:"title"`
	Content    string    `json:"content"    db:"content"`
	Language   string    `json:"language"   db:"language"`
	IsFavorite bool      `json:"isFavorite" db:"is_favorite"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
	FolderID   *string   `json:"folderId"   db:"folder_id"`
	UserID     string    `json:"userId"     db:"user_id"`
	Tags       []TagRef  `json:"tags"`
}

// TagRef is the inline tag shape embedded in snippet responses.
type TagRef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}
