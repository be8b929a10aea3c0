package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fundhive/fundhive-api/internal/domain/user"
	"github.com/fundhive/fundhive-api/internal/pkg/jwt"
	"github.com/fundhive/fundhive-api/internal/pkg/password"
)

/* ==== fakes ==== */

type fakeUserRepo struct {
	profiles map[uuid.UUID]*user.Profile
}

func newFakeUserRepo(profiles ...*user.Profile) *fakeUserRepo {
	r := &fakeUserRepo{profiles: map[uuid.UUID]*user.Profile{}}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (f *fakeUserRepo) Create(ctx context.Context, profile *user.Profile) error {
	for _, p := range f.profiles {
		if p.Email == profile.Email {
			return user.ErrEmailAlreadyExists
		}
	}
	f.profiles[profile.ID] = profile
	return nil
}
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.Profile, error) {
	return f.profiles[id], nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, nil
}
func (f *fakeUserRepo) Update(ctx context.Context, profile *user.Profile) error { return nil }
func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL, thumbURL string) error {
	return nil
}
func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return nil
}
func (f *fakeUserRepo) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	p, ok := f.profiles[id]
	return ok && p.IsAdmin, nil
}
func (f *fakeUserRepo) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	if p, ok := f.profiles[id]; ok {
		p.IsAdmin = isAdmin
	}
	return nil
}
func (f *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]user.Profile, int, error) {
	return nil, 0, nil
}

type fakeTokenStore struct {
	mu    sync.Mutex
	items map[string]*RefreshTokenRecord
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{items: map[string]*RefreshTokenRecord{}}
}

func (s *fakeTokenStore) Create(ctx context.Context, rec *RefreshTokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyRec := *rec
	s.items[rec.TokenHash] = &copyRec
	return nil
}
func (s *fakeTokenStore) GetByTokenHash(ctx context.Context, tokenHash string) (*RefreshTokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[tokenHash]
	if !ok {
		return nil, nil
	}
	copyRec := *rec
	return &copyRec, nil
}
func (s *fakeTokenStore) MarkUsed(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.items[tokenHash]; ok {
		rec.UsedAt.Time = time.Now()
		rec.UsedAt.Valid = true
	}
	return nil
}
func (s *fakeTokenStore) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.items[tokenHash]; ok {
		rec.RevokedAt.Time = time.Now()
		rec.RevokedAt.Valid = true
	}
	return nil
}
func (s *fakeTokenStore) RevokeAllByUserID(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.items {
		if rec.UserID == userID {
			rec.RevokedAt.Time = time.Now()
			rec.RevokedAt.Valid = true
		}
	}
	return nil
}

func (s *fakeTokenStore) revokedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.items {
		if rec.RevokedAt.Valid {
			n++
		}
	}
	return n
}

type fakeWalletCreator struct {
	created []uuid.UUID
	err     error
}

func (f *fakeWalletCreator) CreateForUser(ctx context.Context, userID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, userID)
	return nil
}

func newTestService(repo user.Repository, store RefreshTokenStore, wallets WalletCreator) *Service {
	return NewService(repo, store, wallets, jwt.NewService("secret", time.Minute, time.Hour))
}

/* ==== register ==== */

func TestRegisterCreatesWallet(t *testing.T) {
	repo := newFakeUserRepo()
	wallets := &fakeWalletCreator{}
	svc := newTestService(repo, newFakeTokenStore(), wallets)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "New@Example.com",
		Password: "password123",
		FullName: "New User",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User.Email != "new@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.User.Email)
	}
	if len(wallets.created) != 1 || wallets.created[0] != resp.User.ID {
		t.Fatal("expected a wallet for the new user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	existing := &user.Profile{ID: uuid.New(), Email: "taken@example.com"}
	svc := newTestService(newFakeUserRepo(existing), newFakeTokenStore(), &fakeWalletCreator{})

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "Taken@example.com",
		Password: "password123",
		FullName: "Other User",
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

/* ==== login ==== */

func TestLoginSuccess(t *testing.T) {
	hash, _ := password.Hash("password123")
	u := &user.Profile{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}
	svc := newTestService(newFakeUserRepo(u), newFakeTokenStore(), &fakeWalletCreator{})

	resp, err := svc.Login(context.Background(), &LoginRequest{Email: "User@Example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("expected login success, got %v", err)
	}
	if resp.User.ID != u.ID {
		t.Fatal("expected matching user")
	}
	if resp.Tokens.TokenType != "Bearer" {
		t.Fatalf("unexpected token type %q", resp.Tokens.TokenType)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := password.Hash("password123")
	u := &user.Profile{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}
	svc := newTestService(newFakeUserRepo(u), newFakeTokenStore(), &fakeWalletCreator{})

	_, err := svc.Login(context.Background(), &LoginRequest{Email: u.Email, Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(newFakeUserRepo(), newFakeTokenStore(), &fakeWalletCreator{})

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "ghost@example.com", Password: "password123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

/* ==== refresh rotation ==== */

func TestRefreshRotatesToken(t *testing.T) {
	hash, _ := password.Hash("password123")
	u := &user.Profile{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}
	store := newFakeTokenStore()
	svc := newTestService(newFakeUserRepo(u), store, &fakeWalletCreator{})

	first, err := svc.Login(context.Background(), &LoginRequest{Email: u.Email, Password: "password123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if second.Tokens.RefreshToken == first.Tokens.RefreshToken {
		t.Fatal("expected a new refresh token after rotation")
	}
}

func TestRefreshReuseRevokesAllSessions(t *testing.T) {
	hash, _ := password.Hash("password123")
	u := &user.Profile{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}
	store := newFakeTokenStore()
	svc := newTestService(newFakeUserRepo(u), store, &fakeWalletCreator{})

	first, err := svc.Login(context.Background(), &LoginRequest{Email: u.Email, Password: "password123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	// Presenting the same token again looks like theft.
	_, err = svc.Refresh(context.Background(), first.Tokens.RefreshToken)
	if !errors.Is(err, ErrRefreshTokenReused) {
		t.Fatalf("expected ErrRefreshTokenReused, got %v", err)
	}
	if store.revokedCount() == 0 {
		t.Fatal("expected all sessions revoked after reuse")
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc := newTestService(newFakeUserRepo(), newFakeTokenStore(), &fakeWalletCreator{})

	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrRefreshTokenRequired) {
		t.Fatalf("expected ErrRefreshTokenRequired, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRefreshRevokedToken(t *testing.T) {
	hash, _ := password.Hash("password123")
	u := &user.Profile{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}
	store := newFakeTokenStore()
	svc := newTestService(newFakeUserRepo(u), store, &fakeWalletCreator{})

	resp, err := svc.Login(context.Background(), &LoginRequest{Email: u.Email, Password: "password123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), resp.Tokens.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	_, err = svc.Refresh(context.Background(), resp.Tokens.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken after logout, got %v", err)
	}
}

func TestLogoutEmptyTokenIsNoop(t *testing.T) {
	svc := newTestService(newFakeUserRepo(), newFakeTokenStore(), &fakeWalletCreator{})
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("expected nil for empty token, got %v", err)
	}
}
