package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yabzec/SnipHub/internal/apperror"
	"github.com/yabzec/SnipHub/internal/model"
)

// resolverFunc adapts a function to the UserResolver interface.
type resolverFunc func(ctx context.Context, id string) (*model.User, error)

func (f resolverFunc) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return f(ctx, id)
}

func knownUser(ctx context.Context, id string) (*model.User, error) {
	return &model.User{ID: id, Email: "ada@example.com"}, nil
}

func noUser(ctx context.Context, id string) (*model.User, error) {
	return nil, apperror.NotFound("user", id)
}

func authRequest(t *testing.T, tokens *TokenService, resolver resolverFunc, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/protected/snippets", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()

	RequireAuth(tokens, resolver)(next).ServeHTTP(rec, req)
	return rec, gotUserID
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	tokens, _ := NewTokenService(testSecret)

	rec, _ := authRequest(t, tokens, knownUser, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	tokens, _ := NewTokenService(testSecret)

	rec, _ := authRequest(t, tokens, knownUser, "Bearer not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuth_DeletedAccount(t *testing.T) {
	tokens, _ := NewTokenService(testSecret)
	token, err := tokens.Generate("user-123", "ada@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Valid token, but the account no longer exists (reaped).
	rec, _ := authRequest(t, tokens, noUser, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuth_Success(t *testing.T) {
	tokens, _ := NewTokenService(testSecret)
	token, err := tokens.Generate("user-123", "ada@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	rec, gotUserID := authRequest(t, tokens, knownUser, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-123" {
		t.Errorf("userID in context = %q, want user-123", gotUserID)
	}
}
