package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/devtrackhq/devtrack/internal/domain"
	"github.com/devtrackhq/devtrack/internal/repository"
	"github.com/devtrackhq/devtrack/pkg/config"
	"github.com/devtrackhq/devtrack/pkg/crypto"
	jwtpkg "github.com/devtrackhq/devtrack/pkg/jwt"
)

var (
	ErrEmailTaken         = errors.New("account: email already registered")
	ErrInvalidEmail       = errors.New("account: invalid email address")
	ErrWeakPassword       = errors.New("account: password too short")
	ErrFullNameRequired   = errors.New("account: full name is required")
	ErrInvalidCredentials = errors.New("account: invalid credentials")
	ErrAccountDeactivated = errors.New("account: account deactivated")
)

// Service handles account identity, credentials and profiles.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    time.Duration `json:"expires_in"`
}

// Register creates an account. The raw credential is hashed before storage
// and never logged.
func (s Service) Register(ctx context.Context, email, fullName, password string) (*domain.User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, TokenPair{}, ErrInvalidEmail
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, TokenPair{}, ErrFullNameRequired
	}
	if len(password) < s.cfg.MinPasswordLength {
		return nil, TokenPair{}, ErrWeakPassword
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     domain.UsernameFromEmail(email),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}
	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, tokens, nil
}

// Login authenticates a user and returns tokens. The unknown-email path
// performs a throwaway hash comparison so both failure modes take bcrypt
// time.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			crypto.CompareDummy(password)
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, TokenPair{}, ErrAccountDeactivated
	}
	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, tokens, nil
}

// Authorize validates a bearer token and returns the associated user.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, *jwtpkg.Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, nil, errors.New("token required")
	}
	claims, err := jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.Active {
		return nil, nil, ErrAccountDeactivated
	}
	return user, claims, nil
}

// Profile returns the account behind an already-authenticated user id.
func (s Service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// ProfileUpdate carries mutable profile fields. Nil pointers leave the
// current value untouched.
type ProfileUpdate struct {
	FullName   *string `json:"full_name"`
	Bio        *string `json:"bio"`
	GithubLink *string `json:"github_link"`
}

// UpdateProfile mutates profile attributes of an existing account.
func (s Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			return nil, ErrFullNameRequired
		}
		user.FullName = name
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.GithubLink != nil {
		link := strings.TrimSpace(*update.GithubLink)
		if link != "" && !strings.HasPrefix(link, "https://") {
			return nil, fmt.Errorf("account: github link must use https")
		}
		user.GithubLink = link
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", "user_id", user.ID)
	return user, nil
}

// Deactivate soft-deactivates the account; the row is kept.
func (s Service) Deactivate(ctx context.Context, userID string) error {
	if err := s.users.DeactivateUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("account deactivated", "user_id", userID)
	return nil
}

func (s Service) issueTokens(userID string) (TokenPair, error) {
	access, err := jwtpkg.GenerateToken(userID, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := jwtpkg.GenerateToken(userID, s.cfg.JWTSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.cfg.AccessTokenTTL}, nil
}
