package services

import (
	"context"
	"errors"
	"time"

	"github.com/sjperalta/registro-api/internal/config"
	"github.com/sjperalta/registro-api/internal/middleware"
	"github.com/sjperalta/registro-api/internal/repository"
)

// DefaultTokenTTL is the lifetime of ops API tokens
const DefaultTokenTTL = 12 * time.Hour

// AuthService issues ops API tokens for registered users
type AuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// IssueToken signs a token for the active user username
func (s *AuthService) IssueToken(ctx context.Context, username string, ttl time.Duration) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", mapRepoError(err)
	}
	if !user.Active {
		return "", errors.New("user is not active")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return middleware.SignToken(s.cfg.JWTSecret, user.Username, user.Role, ttl)
}
