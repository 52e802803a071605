package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/xid"

	"github.com/yabzec/SnipHub/internal/apperror"
	"github.com/yabzec/SnipHub/internal/model"
	"github.com/yabzec/SnipHub/internal/repository"
)

// mockSnippetRepo is an in-memory SnippetRepository keyed by id.
type mockSnippetRepo struct {
	snippets map[string]*model.Snippet
	links    map[string]map[string]bool // snippet id -> tag id set
}

func newMockSnippetRepo() *mockSnippetRepo {
	return &mockSnippetRepo{
		snippets: make(map[string]*model.Snippet),
		links:    make(map[string]map[string]bool),
	}
}

func (m *mockSnippetRepo) Create(ctx context.Context, snippet *model.Snippet, tagIDs []string) error {
	snippet.ID = xid.New().String()
	snippet.CreatedAt = time.Now()
	copied := *snippet
	m.snippets[snippet.ID] = &copied
	set := make(map[string]bool)
	for _, id := range tagIDs {
		set[id] = true
	}
	m.links[snippet.ID] = set
	return nil
}

func (m *mockSnippetRepo) GetByID(ctx context.Context, userID, id string) (*model.Snippet, error) {
	s, ok := m.snippets[id]
	if !ok || s.UserID != userID {
		return nil, apperror.NotFound("snippet", id)
	}
	copied := *s
	return &copied, nil
}

func (m *mockSnippetRepo) List(ctx context.Context, userID string, folderID *string, opts repository.ListOptions) ([]model.Snippet, int, error) {
	var all []model.Snippet
	for _, s := range m.snippets {
		if s.UserID != userID {
			continue
		}
		if folderID != nil && (s.FolderID == nil || *s.FolderID != *folderID) {
			continue
		}
		all = append(all, *s)
	}
	total := len(all)
	if opts.Offset >= total {
		return []model.Snippet{}, total, nil
	}
	end := opts.Offset + opts.Limit
	if end > total {
		end = total
	}
	return all[opts.Offset:end], total, nil
}

func (m *mockSnippetRepo) Update(ctx context.Context, snippet *model.Snippet, ops repository.TagOps) error {
	existing, ok := m.snippets[snippet.ID]
	if !ok || existing.UserID != snippet.UserID {
		return apperror.NotFound("snippet", snippet.ID)
	}
	copied := *snippet
	m.snippets[snippet.ID] = &copied
	for _, id := range ops.Add {
		m.links[snippet.ID][id] = true
	}
	for _, id := range ops.Remove {
		delete(m.links[snippet.ID], id)
	}
	return nil
}

func (m *mockSnippetRepo) Delete(ctx context.Context, userID, id string) error {
	s, ok := m.snippets[id]
	if !ok || s.UserID != userID {
		return apperror.NotFound("snippet", id)
	}
	delete(m.snippets, id)
	delete(m.links, id)
	return nil
}

// mockTagRepo only answers ownership counts; the snippet service needs
// nothing else from it.
type mockTagRepo struct {
	owned map[string]string // tag id -> owning user id
}

func (m *mockTagRepo) CreateTag(ctx context.Context, tag *model.Tag) error { return nil }
func (m *mockTagRepo) ListTags(ctx context.Context, userID string) ([]model.Tag, error) {
	return nil, nil
}
func (m *mockTagRepo) DeleteTag(ctx context.Context, userID, id string) error { return nil }

func (m *mockTagRepo) CountTagsOwned(ctx context.Context, userID string, tagIDs []string) (int, error) {
	count := 0
	for _, id := range tagIDs {
		if m.owned[id] == userID {
			count++
		}
	}
	return count, nil
}

func newTestSnippetService(snippets *mockSnippetRepo, tags *mockTagRepo) *SnippetService {
	return NewSnippetService(snippets, tags, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSnippetCreate_Validation(t *testing.T) {
	svc := newTestSnippetService(newMockSnippetRepo(), &mockTagRepo{})
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"no title", CreateInput{Content: "x"}},
		{"blank title", CreateInput{Title: "  ", Content: "x"}},
		{"no content", CreateInput{Title: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "u1", tt.in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSnippetCreate_DefaultsLanguage(t *testing.T) {
	svc := newTestSnippetService(newMockSnippetRepo(), &mockTagRepo{})

	snippet, err := svc.Create(context.Background(), "u1", CreateInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if snippet.Language != model.DefaultLanguage {
		t.Errorf("Language = %q, want %q", snippet.Language, model.DefaultLanguage)
	}
	if snippet.ID == "" {
		t.Error("ID not assigned")
	}
}

func TestSnippetCreate_RejectsForeignTags(t *testing.T) {
	tags := &mockTagRepo{owned: map[string]string{"tag-mine": "u1", "tag-theirs": "u2"}}
	svc := newTestSnippetService(newMockSnippetRepo(), tags)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CreateInput{
		Title: "t", Content: "c",
		TagIDs: []string{"tag-mine", "tag-theirs"},
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() with foreign tag error = %v, want ErrValidation", err)
	}

	if _, err := svc.Create(ctx, "u1", CreateInput{
		Title: "t", Content: "c",
		TagIDs: []string{"tag-mine"},
	}); err != nil {
		t.Errorf("Create() with owned tag error = %v", err)
	}
}

func TestSnippetUpdate_TruthyMerge(t *testing.T) {
	snippets := newMockSnippetRepo()
	svc := newTestSnippetService(snippets, &mockTagRepo{})
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", CreateInput{
		Title: "original", Content: "body", Language: "go", IsFavorite: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Provided-but-falsy values must be ignored by the merge: empty strings
	// and isFavorite=false leave the stored values alone.
	empty := ""
	favOff := false
	updated, err := svc.Update(ctx, "u1", created.ID, UpdateInput{
		Title:      &empty,
		Content:    &empty,
		IsFavorite: &favOff,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "original" || updated.Content != "body" {
		t.Errorf("falsy fields changed the snippet: %+v", updated)
	}
	if !updated.IsFavorite {
		t.Error("isFavorite=false must not clear the flag")
	}

	// Non-empty values do apply, fields not provided stay put.
	newTitle := "renamed"
	updated, err = svc.Update(ctx, "u1", created.ID, UpdateInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "renamed" {
		t.Errorf("Title = %q, want renamed", updated.Title)
	}
	if updated.Content != "body" || updated.Language != "go" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestSnippetUpdate_TagOwnershipBothLists(t *testing.T) {
	snippets := newMockSnippetRepo()
	tags := &mockTagRepo{owned: map[string]string{"tag-mine": "u1", "tag-theirs": "u2"}}
	svc := newTestSnippetService(snippets, tags)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", CreateInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Update(ctx, "u1", created.ID, UpdateInput{
		Tags: repository.TagOps{Add: []string{"tag-theirs"}},
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() adding foreign tag error = %v, want ErrValidation", err)
	}

	_, err = svc.Update(ctx, "u1", created.ID, UpdateInput{
		Tags: repository.TagOps{Remove: []string{"tag-theirs"}},
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() removing foreign tag error = %v, want ErrValidation", err)
	}

	_, err = svc.Update(ctx, "u1", created.ID, UpdateInput{
		Tags: repository.TagOps{Add: []string{"tag-mine"}},
	})
	if err != nil {
		t.Errorf("Update() with owned tag error = %v", err)
	}
	if !snippets.links[created.ID]["tag-mine"] {
		t.Error("owned tag was not linked")
	}
}

func TestSnippetUpdate_NotFound(t *testing.T) {
	svc := newTestSnippetService(newMockSnippetRepo(), &mockTagRepo{})

	_, err := svc.Update(context.Background(), "u1", "missing", UpdateInput{})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestSnippetList_PageMeta(t *testing.T) {
	snippets := newMockSnippetRepo()
	svc := newTestSnippetService(snippets, &mockTagRepo{})
	ctx := context.Background()

	// 26 snippets: two pages, the second holding a single item.
	for i := 0; i < PageSize+1; i++ {
		if _, err := svc.Create(ctx, "u1", CreateInput{Title: "t", Content: "c"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	page, err := svc.List(ctx, "u1", nil, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Data) != PageSize {
		t.Errorf("page 1 size = %d, want %d", len(page.Data), PageSize)
	}
	want := PageMeta{CurrentPage: 1, TotalPages: 2, TotalItems: PageSize + 1, PageSize: PageSize}
	if page.Meta != want {
		t.Errorf("Meta = %+v, want %+v", page.Meta, want)
	}

	page, err = svc.List(ctx, "u1", nil, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Data) != 1 {
		t.Errorf("page 2 size = %d, want 1", len(page.Data))
	}

	// Page below 1 clamps to 1 instead of erroring.
	page, err = svc.List(ctx, "u1", nil, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Meta.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want 1", page.Meta.CurrentPage)
	}

	// Past the last page: empty data, same totals.
	page, err = svc.List(ctx, "u1", nil, 9)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Data) != 0 {
		t.Errorf("overflow page size = %d, want 0", len(page.Data))
	}
	if page.Meta.TotalItems != PageSize+1 {
		t.Errorf("TotalItems = %d", page.Meta.TotalItems)
	}
}
