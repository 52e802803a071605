package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/yabzec/SnipHub/internal/apperror"
	"github.com/yabzec/SnipHub/internal/model"
	"github.com/yabzec/SnipHub/internal/repository"
)

// PageSize is the fixed snippet page size.
const PageSize = 25

// SnippetService handles business logic for snippets, including the tag
// association rules.
type SnippetService struct {
	snippets repository.SnippetRepository
	tags     repository.TagRepository
	logger   *slog.Logger
}

// NewSnippetService creates a SnippetService.
func NewSnippetService(
	snippets repository.SnippetRepository,
	tags repository.TagRepository,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets: snippets,
		tags:     tags,
		logger:   logger,
	}
}

// PageMeta is the pagination metadata attached to list responses.
type PageMeta struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
	PageSize    int `json:"pageSize"`
}

// SnippetPage is one page of snippets with its metadata.
type SnippetPage struct {
	Data []model.Snippet `json:"data"`
	Meta PageMeta        `json:"meta"`
}

// List returns one page of the user's snippets, newest first, optionally
// filtered to a folder. Pages are 1-based; anything below 1 is clamped.
func (s *SnippetService) List(ctx context.Context, userID string, folderID *string, page int) (*SnippetPage, error) {
	if page < 1 {
		page = 1
	}

	snippets, total, err := s.snippets.List(ctx, userID, folderID, repository.ListOptions{
		Limit:  PageSize,
		Offset: (page - 1) * PageSize,
	})
	if err != nil {
		s.logger.Error("failed to list snippets",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return &SnippetPage{
		Data: snippets,
		Meta: PageMeta{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(total) / float64(PageSize))),
			TotalItems:  total,
			PageSize:    PageSize,
		},
	}, nil
}

// CreateInput carries the fields for a new snippet.
type CreateInput struct {
	Title      string
	Content    string
	Language   string
	IsFavorite bool
	FolderID   *string
	TagIDs     []string
}

// Create validates and saves a new snippet with its tag associations.
// Every requested tag id must belong to the acting user.
func (s *SnippetService) Create(ctx context.Context, userID string, in CreateInput) (*model.Snippet, error) {
	if strings.TrimSpace(in.Title) == "" || in.Content == "" {
		return nil, apperror.ValidationFailed("title", "title and content are required")
	}

	language := in.Language
	if language == "" {
		language = model.DefaultLanguage
	}

	if err := s.checkTagOwnership(ctx, userID, in.TagIDs); err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		Title:      in.Title,
		Content:    in.Content,
		Language:   language,
		IsFavorite: in.IsFavorite,
		FolderID:   in.FolderID,
		UserID:     userID,
	}

	if err := s.snippets.Create(ctx, snippet, in.TagIDs); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("userID", userID),
	)

	return snippet, nil
}

// UpdateInput is a partial update: nil means "field not provided".
//
// Provided-but-falsy values (empty strings, isFavorite=false) are also
// ignored by the merge — existing clients depend on that behaviour, so it is
// kept deliberately even though it means isFavorite can only be cleared by
// never having set it. See Update.
type UpdateInput struct {
	Title      *string
	Content    *string
	Language   *string
	IsFavorite *bool
	FolderID   *string
	Tags       repository.TagOps
}

// Update applies a partial merge to a snippet owned by the user, then the
// tag association changes. Tag ids in both the add and remove lists must
// belong to the acting user.
func (s *SnippetService) Update(ctx context.Context, userID, snippetID string, in UpdateInput) (*model.Snippet, error) {
	snippet, err := s.snippets.GetByID(ctx, userID, snippetID)
	if err != nil {
		return nil, err
	}

	// Truthy merge: a field changes only when provided with a non-zero
	// value. Kept compatible with the previous API; each field is one line
	// to change once clients can distinguish "clear" from "keep".
	if in.Title != nil && *in.Title != "" {
		snippet.Title = *in.Title
	}
	if in.Content != nil && *in.Content != "" {
		snippet.Content = *in.Content
	}
	if in.Language != nil && *in.Language != "" {
		snippet.Language = *in.Language
	}
	if in.IsFavorite != nil && *in.IsFavorite {
		snippet.IsFavorite = true
	}
	if in.FolderID != nil && *in.FolderID != "" {
		snippet.FolderID = in.FolderID
	}

	if err := s.checkTagOwnership(ctx, userID, in.Tags.Add); err != nil {
		return nil, err
	}
	if err := s.checkTagOwnership(ctx, userID, in.Tags.Remove); err != nil {
		return nil, err
	}

	if err := s.snippets.Update(ctx, snippet, in.Tags); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", snippetID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", snippetID))
	return snippet, nil
}

// Delete removes a snippet owned by the user.
func (s *SnippetService) Delete(ctx context.Context, userID, snippetID string) error {
	if err := s.snippets.Delete(ctx, userID, snippetID); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", snippetID))
	return nil
}

// checkTagOwnership rejects tag ids that don't belong to the user.
func (s *SnippetService) checkTagOwnership(ctx context.Context, userID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	owned, err := s.tags.CountTagsOwned(ctx, userID, tagIDs)
	if err != nil {
		return fmt.Errorf("checking tag ownership: %w", err)
	}
	if owned != len(tagIDs) {
		return apperror.ValidationFailed("tags", "one or more tags do not exist")
	}

	return nil
}
