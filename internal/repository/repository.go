// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage provides the real implementation; tests
// substitute in-memory mocks.
//
// Every method that touches user-owned rows takes the owning user's id and
// filters by it — ownership is enforced at this boundary, not in a separate
// authorization layer.
package repository

import (
	"context"
	"time"

	"github.com/yabzec/SnipHub/internal/model"
)

// ListOptions carries offset pagination parameters.
type ListOptions struct {
	Limit  int
	Offset int
}

// TagOps are the association changes applied during a snippet update.
type TagOps struct {
	Add    []string
	Remove []string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error)
	// MarkVerified sets email_verified_at and clears the verification token.
	MarkVerified(ctx context.Context, id string, at time.Time) error
	DeleteUser(ctx context.Context, id string) error
	// DeleteUnverifiedBefore removes unverified accounts created before the
	// cutoff and returns how many rows went. Owned rows cascade.
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet, tagIDs []string) error
	GetByID(ctx context.Context, userID, id string) (*model.Snippet, error)
	// List returns one page of the user's snippets (optionally filtered to a
	// folder) plus the total matching count for pagination metadata.
	List(ctx context.Context, userID string, folderID *string, opts ListOptions) ([]model.Snippet, int, error)
	Update(ctx context.Context, snippet *model.Snippet, ops TagOps) error
	Delete(ctx context.Context, userID, id string) error
}

type TagRepository interface {
	CreateTag(ctx context.Context, tag *model.Tag) error
	ListTags(ctx context.Context, userID string) ([]model.Tag, error)
	DeleteTag(ctx context.Context, userID, id string) error
	// CountTagsOwned reports how many of the given tag ids belong to the
	// user. Used to reject associations with foreign tags.
	CountTagsOwned(ctx context.Context, userID string, tagIDs []string) (int, error)
}

type FolderRepository interface {
	CreateFolder(ctx context.Context, folder *model.Folder) error
	ListFolders(ctx context.Context, userID string) ([]model.Folder, error)
	DeleteFolder(ctx context.Context, userID, id string) error
}
