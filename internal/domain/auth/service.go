package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fundhive/fundhive-api/internal/domain/user"
	"github.com/fundhive/fundhive-api/internal/pkg/jwt"
	"github.com/fundhive/fundhive-api/internal/pkg/password"
)

// RefreshTokenStore defines refresh token persistence needed by auth
type RefreshTokenStore interface {
	Create(ctx context.Context, rec *RefreshTokenRecord) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*RefreshTokenRecord, error)
	MarkUsed(ctx context.Context, tokenHash string) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uuid.UUID) error
}

// WalletCreator opens a wallet for a newly registered user
type WalletCreator interface {
	CreateForUser(ctx context.Context, userID uuid.UUID) error
}

// Service handles authentication business logic
type Service struct {
	userRepo   user.Repository
	tokenStore RefreshTokenStore
	wallets    WalletCreator
	jwtService *jwt.Service
}

// NewService creates auth service
func NewService(userRepo user.Repository, tokenStore RefreshTokenStore, wallets WalletCreator, jwtService *jwt.Service) *Service {
	return &Service{
		userRepo:   userRepo,
		tokenStore: tokenStore,
		wallets:    wallets,
		jwtService: jwtService,
	}
}

// Register creates a new account with an empty wallet
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	existing, _ := s.userRepo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	profile := &user.Profile{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, profile); err != nil {
		if err == user.ErrEmailAlreadyExists {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	if err := s.wallets.CreateForUser(ctx, profile.ID); err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, profile)
}

// Login authenticates a user
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	profile, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil || profile == nil {
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(req.Password, profile.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(ctx, profile)
}

// Refresh rotates the refresh token and issues a fresh pair.
// A token presented twice is treated as stolen: every session for that
// user is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	if _, err := s.jwtService.ValidateRefreshToken(refreshToken); err != nil {
		return nil, ErrInvalidRefreshToken
	}

	tokenHash := jwt.HashRefreshToken(refreshToken)
	rec, err := s.tokenStore.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.RevokedAt.Valid || time.Now().After(rec.ExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}

	if rec.UsedAt.Valid {
		log.Warn().Str("user_id", rec.UserID.String()).Msg("Refresh token reuse detected, revoking all sessions")
		_ = s.tokenStore.RevokeAllByUserID(ctx, rec.UserID)
		return nil, ErrRefreshTokenReused
	}

	profile, err := s.userRepo.GetByID(ctx, rec.UserID)
	if err != nil || profile == nil {
		return nil, ErrUserNotFound
	}

	if err := s.tokenStore.MarkUsed(ctx, tokenHash); err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, profile)
}

// Logout revokes the presented refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokenStore.RevokeByTokenHash(ctx, jwt.HashRefreshToken(refreshToken))
}

// GetCurrentUser returns current user by ID
func (s *Service) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	profile, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || profile == nil {
		return nil, ErrUserNotFound
	}

	resp := NewUserResponse(profile.ID, profile.Email, profile.FullName, profile.IsAdmin, profile.CreatedAt)
	return &resp, nil
}

// generateTokens creates an access/refresh pair and records the refresh hash
func (s *Service) generateTokens(ctx context.Context, profile *user.Profile) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(profile.ID, profile.IsAdmin)
	if err != nil {
		return nil, err
	}

	refreshToken, jti, expiresAt, err := s.jwtService.GenerateRefreshToken(profile.ID)
	if err != nil {
		return nil, err
	}

	rec := &RefreshTokenRecord{
		ID:        uuid.New(),
		UserID:    profile.ID,
		TokenHash: jwt.HashRefreshToken(refreshToken),
		JTI:       jti,
		ExpiresAt: expiresAt,
	}
	if err := s.tokenStore.Create(ctx, rec); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User: NewUserResponse(profile.ID, profile.Email, profile.FullName, profile.IsAdmin, profile.CreatedAt),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
			TokenType:    "Bearer",
		},
	}, nil
}
