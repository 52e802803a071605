package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yabzec/SnipHub/internal/apperror"
	"github.com/yabzec/SnipHub/internal/model"
	"github.com/yabzec/SnipHub/internal/repository"
)

// TagService handles per-user tag CRUD. Tags have no update operation —
// delete and recreate is the lifecycle.
type TagService struct {
	tags   repository.TagRepository
	logger *slog.Logger
}

func NewTagService(tags repository.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{tags: tags, logger: logger}
}

func (s *TagService) List(ctx context.Context, userID string) ([]model.Tag, error) {
	tags, err := s.tags.ListTags(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tags",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// Create validates and saves a tag. The label must be unique for this user;
// the repository surfaces a conflict when it isn't. Color falls back to the
// default palette value.
func (s *TagService) Create(ctx context.Context, userID, label, color string) (*model.Tag, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apperror.ValidationFailed("label", "label is required")
	}
	if color == "" {
		color = model.DefaultLabelColor
	}

	tag := &model.Tag{
		Label:  label,
		Color:  color,
		UserID: userID,
	}

	if err := s.tags.CreateTag(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag created",
		slog.String("id", tag.ID),
		slog.String("label", tag.Label),
	)

	return tag, nil
}

func (s *TagService) Delete(ctx context.Context, userID, id string) error {
	if err := s.tags.DeleteTag(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("tag deleted", slog.String("id", id))
	return nil
}

// FolderService mirrors TagService for folders.
type FolderService struct {
	folders repository.FolderRepository
	logger  *slog.Logger
}

func NewFolderService(folders repository.FolderRepository, logger *slog.Logger) *FolderService {
	return &FolderService{folders: folders, logger: logger}
}

func (s *FolderService) List(ctx context.Context, userID string) ([]model.Folder, error) {
	folders, err := s.folders.ListFolders(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list folders",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	return folders, nil
}

func (s *FolderService) Create(ctx context.Context, userID, label, color string) (*model.Folder, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apperror.ValidationFailed("label", "label is required")
	}
	if color == "" {
		color = model.DefaultLabelColor
	}

	folder := &model.Folder{
		Label:  label,
		Color:  color,
		UserID: userID,
	}

	if err := s.folders.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		slog.String("id", folder.ID),
		slog.String("label", folder.Label),
	)

	return folder, nil
}

func (s *FolderService) Delete(ctx context.Context, userID, id string) error {
	if err := s.folders.DeleteFolder(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("folder deleted", slog.String("id", id))
	return nil
}
