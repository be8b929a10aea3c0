package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fundhive/fundhive-api/internal/pkg/jwt"
)

type fakeAdminChecker struct {
	admins map[uuid.UUID]bool
	err    error
}

func (f *fakeAdminChecker) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.admins[userID], nil
}

func okHandler(captured *uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = GetUserID(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthAcceptsValidToken(t *testing.T) {
	jwtService := jwt.NewService("secret", time.Minute, time.Hour)
	userID := uuid.New()
	token, err := jwtService.GenerateAccessToken(userID, false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var got uuid.UUID
	handler := Auth(jwtService)(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != userID {
		t.Fatal("expected user ID in request context")
	}
}

func TestAuthRejectsMissingAndMalformedHeaders(t *testing.T) {
	jwtService := jwt.NewService("secret", time.Minute, time.Hour)
	handler := Auth(jwtService)(okHandler(nil))

	for _, header := range []string{"", "Bearer", "Basic abc123", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	jwtService := jwt.NewService("secret", -time.Minute, time.Hour)
	token, err := jwtService.GenerateAccessToken(uuid.New(), false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	handler := Auth(jwtService)(okHandler(nil))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	jwtService := jwt.NewService("secret", time.Minute, time.Hour)
	var got uuid.UUID
	handler := OptionalAuth(jwtService)(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != uuid.Nil {
		t.Fatal("expected no user ID for anonymous request")
	}
}

func TestOptionalAuthPopulatesContext(t *testing.T) {
	jwtService := jwt.NewService("secret", time.Minute, time.Hour)
	userID := uuid.New()
	token, _ := jwtService.GenerateAccessToken(userID, false)

	var got uuid.UUID
	handler := OptionalAuth(jwtService)(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got != userID {
		t.Fatal("expected user ID from bearer token")
	}
}

func TestRequireAdminChecksDatabase(t *testing.T) {
	jwtService := jwt.NewService("secret", time.Minute, time.Hour)
	adminID := uuid.New()
	regularID := uuid.New()
	checker := &fakeAdminChecker{admins: map[uuid.UUID]bool{adminID: true}}

	chain := func(userID uuid.UUID, isAdminClaim bool) int {
		token, _ := jwtService.GenerateAccessToken(userID, isAdminClaim)
		handler := Auth(jwtService)(RequireAdmin(checker)(okHandler(nil)))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := chain(adminID, true); code != http.StatusOK {
		t.Fatalf("expected admin to pass, got %d", code)
	}
	if code := chain(regularID, false); code != http.StatusForbidden {
		t.Fatalf("expected non-admin forbidden, got %d", code)
	}
	// A stale admin claim in the token does not beat the database.
	if code := chain(regularID, true); code != http.StatusForbidden {
		t.Fatalf("expected revoked admin forbidden, got %d", code)
	}
}

func TestRequireAdminWithoutAuth(t *testing.T) {
	checker := &fakeAdminChecker{admins: map[uuid.UUID]bool{}}
	handler := RequireAdmin(checker)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth context, got %d", rec.Code)
	}
}
