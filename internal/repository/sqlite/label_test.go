package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/yabzec/SnipHub/internal/apperror"
	"github.com/yabzec/SnipHub/internal/model"
)

func TestCreateTag_DuplicateLabelPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	first := &model.Tag{Label: "go", Color: "#fff", UserID: alice.ID}
	if err := db.CreateTag(ctx, first); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	// Same label, same user: conflict.
	dup := &model.Tag{Label: "go", Color: "#000", UserID: alice.ID}
	if err := db.CreateTag(ctx, dup); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateTag() duplicate error = %v, want ErrConflict", err)
	}

	// Same label, different user: fine.
	theirs := &model.Tag{Label: "go", Color: "#000", UserID: bob.ID}
	if err := db.CreateTag(ctx, theirs); err != nil {
		t.Errorf("CreateTag() for other user error = %v", err)
	}
}

func TestDeleteTag_CascadesAssociations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ada@example.com")

	tag := &model.Tag{Label: "go", Color: "#fff", UserID: user.ID}
	if err := db.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	snippet := createTestSnippet(t, db, user.ID, "tagged", []string{tag.ID})

	if err := db.DeleteTag(ctx, user.ID, tag.ID); err != nil {
		t.Fatalf("DeleteTag() error = %v", err)
	}

	found, err := db.GetByID(ctx, user.ID, snippet.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(found.Tags) != 0 {
		t.Errorf("snippet tags = %d, want 0 after tag delete", len(found.Tags))
	}
}

func TestDeleteTag_OwnerScoped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")

	tag := &model.Tag{Label: "go", Color: "#fff", UserID: owner.ID}
	if err := db.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	if err := db.DeleteTag(ctx, other.ID, tag.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteTag() with wrong owner error = %v, want ErrNotFound", err)
	}

	tags, err := db.ListTags(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("tags = %d, want 1 (row untouched)", len(tags))
	}
}

func TestCountTagsOwned(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	mine := &model.Tag{Label: "mine", Color: "#fff", UserID: alice.ID}
	theirs := &model.Tag{Label: "theirs", Color: "#fff", UserID: bob.ID}
	if err := db.CreateTag(ctx, mine); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	if err := db.CreateTag(ctx, theirs); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	count, err := db.CountTagsOwned(ctx, alice.ID, []string{mine.ID, theirs.ID})
	if err != nil {
		t.Fatalf("CountTagsOwned() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestDeleteFolder_NullsSnippetReference(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ada@example.com")

	folder := &model.Folder{Label: "scripts", Color: "#fff", UserID: user.ID}
	if err := db.CreateFolder(ctx, folder); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}

	snippet := &model.Snippet{
		Title: "in-folder", Content: "x", Language: "text",
		FolderID: &folder.ID, UserID: user.ID,
	}
	if err := db.Create(ctx, snippet, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := db.DeleteFolder(ctx, user.ID, folder.ID); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}

	found, err := db.GetByID(ctx, user.ID, snippet.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v (snippet must survive folder delete)", err)
	}
	if found.FolderID != nil {
		t.Errorf("FolderID = %v, want nil after folder delete", *found.FolderID)
	}
}

func TestCreateFolder_DuplicateLabelPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ada@example.com")

	first := &model.Folder{Label: "scripts", Color: "#fff", UserID: user.ID}
	if err := db.CreateFolder(ctx, first); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}

	dup := &model.Folder{Label: "scripts", Color: "#000", UserID: user.ID}
	if err := db.CreateFolder(ctx, dup); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateFolder() duplicate error = %v, want ErrConflict", err)
	}
}
