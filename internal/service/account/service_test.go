package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/devtrackhq/devtrack/internal/domain"
	"github.com/devtrackhq/devtrack/internal/repository"
	"github.com/devtrackhq/devtrack/pkg/config"
	"github.com/devtrackhq/devtrack/pkg/crypto"
)

type stubUserRepository struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

func (s *stubUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if _, ok := s.byEmail[user.Email]; ok {
		return repository.ErrConflict
	}
	copied := *user
	s.byEmail[user.Email] = &copied
	s.byID[user.ID] = &copied
	return nil
}

func (s *stubUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := s.byEmail[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := s.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	existing, ok := s.byID[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	*existing = *user
	return nil
}

func (s *stubUserRepository) DeactivateUser(ctx context.Context, id string) error {
	existing, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Active = false
	return nil
}

func testConfig() config.APIConfig {
	return config.APIConfig{
		JWTSecret:         "test-secret",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   24 * time.Hour,
		MinPasswordLength: 8,
	}
}

func testService(repo repository.UserRepository) Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, log, testConfig())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := testService(newStubUserRepository())
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "dev@example.com", "First Dev", "longenough"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, _, err := svc.Register(ctx, "DEV@example.com", "Second Dev", "longenough"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := testService(newStubUserRepository())
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "not-an-email", "Dev", "longenough"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "dev@example.com", "  ", "longenough"); !errors.Is(err, ErrFullNameRequired) {
		t.Fatalf("expected ErrFullNameRequired, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "dev@example.com", "Dev", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterNeverStoresRawPassword(t *testing.T) {
	repo := newStubUserRepository()
	svc := testService(repo)

	user, tokens, err := svc.Register(context.Background(), "dev@example.com", "Dev", "longenough")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", tokens)
	}
	stored := repo.byID[user.ID]
	if string(stored.PasswordHash) == "longenough" {
		t.Fatal("password stored in clear text")
	}
	if err := crypto.ComparePassword(stored.PasswordHash, "longenough"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestLoginFailureModesAreIndistinguishable(t *testing.T) {
	svc := testService(newStubUserRepository())
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "dev@example.com", "Dev", "longenough"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, unknownErr := svc.Login(ctx, "missing@example.com", "whatever1")
	_, _, wrongErr := svc.Login(ctx, "dev@example.com", "wrongpassword")
	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both paths, got %v / %v", unknownErr, wrongErr)
	}
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	svc := testService(newStubUserRepository())
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "dev@example.com", "Dev", "longenough")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.Deactivate(ctx, user.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if _, _, err := svc.Login(ctx, "dev@example.com", "longenough"); !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
	if _, _, err := svc.Authorize(ctx, mustToken(t, svc, user.ID)); !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated on authorize, got %v", err)
	}
}

func TestUpdateProfilePartialFields(t *testing.T) {
	svc := testService(newStubUserRepository())
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "dev@example.com", "Original Name", "longenough")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	bio := "builds deployment tooling"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Bio: &bio})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Bio != bio {
		t.Fatalf("bio not updated: %q", updated.Bio)
	}
	if updated.FullName != "Original Name" {
		t.Fatalf("full name changed without being set: %q", updated.FullName)
	}

	badLink := "http://insecure.example.com"
	if _, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{GithubLink: &badLink}); err == nil {
		t.Fatal("expected error for non-https github link")
	}

	empty := "  "
	if _, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{FullName: &empty}); !errors.Is(err, ErrFullNameRequired) {
		t.Fatalf("expected ErrFullNameRequired, got %v", err)
	}
}

func mustToken(t *testing.T, svc Service, userID string) string {
	t.Helper()
	tokens, err := svc.issueTokens(userID)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return tokens.AccessToken
}
