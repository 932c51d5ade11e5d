// AuthService is the business layer for authentication:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT)
//
// Two ways in: the GitHub OAuth callback, and a development login that
// checks a bcrypt hash from the environment and is never enabled in
// production.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/repository"
)

// DevLoginGitHubID marks the development hunter. Real GitHub ids are
// positive, so it can never collide with an OAuth account.
const DevLoginGitHubID int64 = -1

// DevLogin configures the development login. An empty PasswordHash
// disables it.
type DevLogin struct {
	Login        string
	PasswordHash string
}

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	dev       DevLogin
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	dev DevLogin,
	logger *slog.Logger,
) *AuthService {
	if dev.Login == "" {
		dev.Login = "dev-hunter"
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		dev:       dev,
		logger:    logger,
	}
}

// DevLoginEnabled reports whether POST /auth/dev-login is served.
func (s *AuthService) DevLoginEnabled() bool {
	return s.dev.PasswordHash != ""
}

// TokenTTL is the session lifetime, used for the cookie Max-Age.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// AuthResult is returned by authentication operations.
// It bundles the user record and the issued JWT together so the caller
// (the HTTP handler) can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub upserts the hunter behind a GitHub OAuth callback
// and issues a session token. The GitHub id is stable, so first login
// inserts and later logins refresh login/email/avatar on the same row.
// Cookies are the handler's concern.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID:  ghUser.ID,
		Login:     ghUser.Login,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{
		User:  user,
		Token: token,
	}, nil
}

// GetUserByID backs GET /api/me.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

// ValidateToken returns the user id a session token was issued for.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}

// DevLogin signs in the development hunter when password matches the
// configured hash.
func (s *AuthService) DevLogin(ctx context.Context, password string) (*AuthResult, error) {
	if !s.DevLoginEnabled() {
		return nil, apperror.Forbidden("development login is disabled")
	}
	if strings.TrimSpace(password) == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if err := s.passwords.Verify(s.dev.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, fmt.Errorf("service/auth: dev login: %w", err)
		}
		s.logger.Warn("dev login rejected")
		return nil, apperror.Unauthorized("invalid development credentials")
	}

	user := &model.User{GitHubID: DevLoginGitHubID, Login: s.dev.Login}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting dev user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	s.logger.Info("dev login", slog.String("userID", user.ID), slog.String("login", user.Login))
	return &AuthResult{User: user, Token: token}, nil
}
