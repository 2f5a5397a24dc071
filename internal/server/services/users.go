// Package services contains server-side business logic. This file implements
// UserService, which handles credential login and the access/refresh token
// lifecycle backed by server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Hashith00/tlschat/internal/common"
	"github.com/Hashith00/tlschat/internal/server/auth"
	"github.com/Hashith00/tlschat/internal/server/config"
	"github.com/Hashith00/tlschat/internal/server/models"
	"github.com/Hashith00/tlschat/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
//   - Register: create users
//   - Login: verify credentials and mint a token pair
//   - ValidateAccess / ValidateRefresh: token checks during the relay phase
//   - RefreshAccess: mint a new access token from a valid refresh token
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new user. The password must already be hashed with
// cryptox.HashSecret; plaintext never reaches this layer.
func (s *UserService) Register(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	user := &models.User{Name: name, Email: email, PasswordHash: passwordHash}
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the (email, password digest) pair against the store and, on
// success, mints a token pair and persists the refresh token, overwriting any
// prior token the user held. Unknown credentials yield ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, passwordHash string) (*models.User, *TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmailAndPassword(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// ValidateAccess verifies the signature and expiry of an access token.
// It is side-effect-free and never touches the store.
func (s *UserService) ValidateAccess(token string) bool {
	return auth.ValidToken(token, s.jwtSecret)
}

// ValidateRefresh reports whether a refresh token exists in the store and its
// persisted expiry has not passed.
func (s *UserService) ValidateRefresh(ctx context.Context, token string) bool {
	repo := s.repomanager.RefreshTokens(s.db)
	stored, err := repo.Find(ctx, token)
	if err != nil {
		return false
	}
	return stored.Expires.After(time.Now())
}

// RefreshAccess mints a new access token for the identity owning the refresh
// token. The refresh token itself is not rotated and stays usable until its
// stored expiry. Unknown or expired tokens yield ErrInvalidToken.
func (s *UserService) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", common.ErrorInternal
	}

	access, err := s.generateAccessToken(user)
	if err != nil {
		return "", common.ErrorInternal
	}
	return access, nil
}

// --- helpers below ---

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user, s.jwtSecret, s.accessTokenValidityDuration)
}

// generateRefreshToken returns an opaque high-entropy token string.
func (s *UserService) generateRefreshToken() string {
	return uuid.NewString() + uuid.NewString()
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh := s.generateRefreshToken()

	refreshRepo := s.repomanager.RefreshTokens(s.db)
	if err := refreshRepo.Save(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
