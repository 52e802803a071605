package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yabzec/SnipHub/internal/auth"
	"github.com/yabzec/SnipHub/internal/repository"
	"github.com/yabzec/SnipHub/internal/service"
)

// SnippetHandler exposes the snippet CRUD endpoints. Every route here sits
// behind the auth middleware, so the user id is always in the context.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

// NewSnippetHandler creates a SnippetHandler.
func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// HandleList returns one page of the caller's snippets.
//
// HTTP: GET /api/protected/snippets?page=N
// HTTP: GET /api/protected/snippets/{folderID}?page=N
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var folderID *string
	if f := chi.URLParam(r, "folderID"); f != "" {
		folderID = &f
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			page = parsed
		}
	}

	result, err := h.snippets.List(r.Context(), userID, folderID, page)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type createSnippetRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Language   string   `json:"language"`
	IsFavorite bool     `json:"isFavorite"`
	Tags       []string `json:"tags"`
}

// HandleCreate saves a new snippet, optionally into a folder and with tag
// associations.
//
// HTTP: POST /api/protected/snippets?folderId=<id>
// BODY: {"title":..., "content":..., "language"?, "isFavorite"?, "tags"?: [id...]}
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	var folderID *string
	if f := r.URL.Query().Get("folderId"); f != "" {
		folderID = &f
	}

	snippet, err := h.snippets.Create(r.Context(), userID, service.CreateInput{
		Title:      req.Title,
		Content:    req.Content,
		Language:   req.Language,
		IsFavorite: req.IsFavorite,
		FolderID:   folderID,
		TagIDs:     req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": snippet.ID})
}

type updateSnippetRequest struct {
	// Pointer fields distinguish "absent" from "provided"; the service's
	// merge additionally ignores provided-but-falsy values.
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Language   *string `json:"language"`
	IsFavorite *bool   `json:"isFavorite"`
	FolderID   *string `json:"folderId"`
	Tags       *struct {
		Add    []string `json:"add"`
		Remove []string `json:"remove"`
	} `json:"tags"`
}

// HandleUpdate applies a partial update and tag association changes.
//
// HTTP: POST /api/protected/snippets/{id}
// BODY: partial fields plus "tags": {"add": [id...], "remove": [id...]}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	snippetID := chi.URLParam(r, "id")

	var req updateSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	in := service.UpdateInput{
		Title:      req.Title,
		Content:    req.Content,
		Language:   req.Language,
		IsFavorite: req.IsFavorite,
		FolderID:   req.FolderID,
	}
	if req.Tags != nil {
		in.Tags = repository.TagOps{
			Add:    req.Tags.Add,
			Remove: req.Tags.Remove,
		}
	}

	snippet, err := h.snippets.Update(r.Context(), userID, snippetID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": snippet.ID})
}

// HandleDelete removes a snippet owned by the caller.
//
// HTTP: DELETE /api/protected/snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	snippetID := chi.URLParam(r, "id")

	if err := h.snippets.Delete(r.Context(), userID, snippetID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Ok"})
}
