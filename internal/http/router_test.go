package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/devtrackhq/devtrack/internal/domain"
	"github.com/devtrackhq/devtrack/internal/repository"
	"github.com/devtrackhq/devtrack/internal/service/account"
	"github.com/devtrackhq/devtrack/internal/service/collab"
	"github.com/devtrackhq/devtrack/internal/service/health"
	"github.com/devtrackhq/devtrack/internal/service/project"
	"github.com/devtrackhq/devtrack/internal/ws"
	"github.com/devtrackhq/devtrack/pkg/config"
)

// memoryRepository backs router tests without a database.
type memoryRepository struct {
	mu            sync.Mutex
	usersByEmail  map[string]*domain.User
	usersByID     map[string]*domain.User
	projects      map[string]*domain.Project
	collaborators map[string]map[string]*domain.Collaborator
	deployments   map[string][]domain.DeploymentRecord
	invitations   map[string]*domain.Invitation
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		usersByEmail:  make(map[string]*domain.User),
		usersByID:     make(map[string]*domain.User),
		projects:      make(map[string]*domain.Project),
		collaborators: make(map[string]map[string]*domain.Collaborator),
		deployments:   make(map[string][]domain.DeploymentRecord),
		invitations:   make(map[string]*domain.Invitation),
	}
}

func (m *memoryRepository) CreateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByEmail[user.Email]; ok {
		return repository.ErrConflict
	}
	copied := *user
	m.usersByEmail[user.Email] = &copied
	m.usersByID[user.ID] = &copied
	return nil
}

func (m *memoryRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.usersByEmail[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memoryRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.usersByID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memoryRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.usersByID[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	*existing = *user
	return nil
}

func (m *memoryRepository) DeactivateUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.usersByID[id]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Active = false
	return nil
}

func (m *memoryRepository) CreateProject(ctx context.Context, proj *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.projects {
		if existing.OwnerID == proj.OwnerID && existing.Name == proj.Name {
			return repository.ErrConflict
		}
	}
	copied := *proj
	m.projects[proj.ID] = &copied
	return nil
}

func (m *memoryRepository) GetProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Postgres rejects malformed uuids before the row lookup runs.
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, repository.ErrInvalidArgument
	}
	if proj, ok := m.projects[projectID]; ok {
		copied := *proj
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memoryRepository) ListProjectsByMember(ctx context.Context, accountID string, filter domain.ProjectFilter) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Project
	for _, proj := range m.projects {
		member := proj.OwnerID == accountID
		if members, ok := m.collaborators[proj.ID]; ok {
			if _, ok := members[accountID]; ok {
				member = true
			}
		}
		if !member {
			continue
		}
		if proj.IsArchived() && !filter.IncludeArchived && filter.Status != domain.ProjectStatusArchived {
			continue
		}
		if filter.Status != "" && proj.Status != filter.Status {
			continue
		}
		out = append(out, *proj)
	}
	return out, nil
}

func (m *memoryRepository) TransitionProjectStatus(ctx context.Context, projectID, newStatus string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	proj, ok := m.projects[projectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if proj.IsArchived() {
		return nil, repository.ErrConflict
	}
	proj.Status = newStatus
	proj.UpdatedAt = time.Now().UTC()
	copied := *proj
	return &copied, nil
}

func (m *memoryRepository) GetCollaborator(ctx context.Context, projectID, userID string) (*domain.Collaborator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if members, ok := m.collaborators[projectID]; ok {
		if member, ok := members[userID]; ok {
			copied := *member
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryRepository) ListCollaborators(ctx context.Context, projectID string) ([]domain.Collaborator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Collaborator
	for _, member := range m.collaborators[projectID] {
		out = append(out, *member)
	}
	return out, nil
}

func (m *memoryRepository) UpsertCollaborator(ctx context.Context, collaborator *domain.Collaborator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members, ok := m.collaborators[collaborator.ProjectID]
	if !ok {
		members = make(map[string]*domain.Collaborator)
		m.collaborators[collaborator.ProjectID] = members
	}
	copied := *collaborator
	members[collaborator.UserID] = &copied
	return nil
}

func (m *memoryRepository) RemoveCollaborator(ctx context.Context, projectID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collaborators[projectID], userID)
	return nil
}

func (m *memoryRepository) AppendDeployment(ctx context.Context, record *domain.DeploymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deployments[record.ProjectID] = append(m.deployments[record.ProjectID], *record)
	return nil
}

func (m *memoryRepository) ListDeploymentsByProject(ctx context.Context, projectID string, limit int) ([]domain.DeploymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.deployments[projectID]
	out := make([]domain.DeploymentRecord, 0, len(records))
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

func (m *memoryRepository) CreateInvitation(ctx context.Context, invitation *domain.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.invitations {
		if existing.ProjectID != invitation.ProjectID || existing.Status != domain.InvitationStatusPending {
			continue
		}
		sameInvitee := existing.InviteeID != nil && invitation.InviteeID != nil && *existing.InviteeID == *invitation.InviteeID
		sameEmail := existing.Email != "" && existing.Email == invitation.Email
		if sameInvitee || sameEmail {
			return repository.ErrConflict
		}
	}
	copied := *invitation
	m.invitations[invitation.Token] = &copied
	return nil
}

func (m *memoryRepository) GetInvitationByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.invitations[token]; ok {
		copied := *inv
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memoryRepository) ListInvitationsByProject(ctx context.Context, projectID string) ([]domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Invitation
	for _, inv := range m.invitations {
		if inv.ProjectID == projectID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *memoryRepository) ListInvitationsForUser(ctx context.Context, userID, email string) ([]domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Invitation
	for _, inv := range m.invitations {
		if (inv.InviteeID != nil && *inv.InviteeID == userID) || (inv.Email != "" && inv.Email == email) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *memoryRepository) AcceptInvitation(ctx context.Context, token, userID string, now time.Time) (*domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invitations[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if inv.Terminal() {
		copied := *inv
		return &copied, repository.ErrConflict
	}
	if inv.Expired(now) {
		inv.Status = domain.InvitationStatusExpired
		copied := *inv
		return &copied, repository.ErrConflict
	}
	inv.Status = domain.InvitationStatusAccepted
	inv.InviteeID = &userID
	inv.AcceptedAt = &now
	members, ok := m.collaborators[inv.ProjectID]
	if !ok {
		members = make(map[string]*domain.Collaborator)
		m.collaborators[inv.ProjectID] = members
	}
	members[userID] = &domain.Collaborator{ProjectID: inv.ProjectID, UserID: userID, Role: inv.Role, CreatedAt: now}
	copied := *inv
	return &copied, nil
}

func (m *memoryRepository) DeclineInvitation(ctx context.Context, token string, now time.Time) (*domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invitations[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if inv.Terminal() {
		copied := *inv
		return &copied, repository.ErrConflict
	}
	if inv.Expired(now) {
		inv.Status = domain.InvitationStatusExpired
		copied := *inv
		return &copied, repository.ErrConflict
	}
	inv.Status = domain.InvitationStatusDeclined
	copied := *inv
	return &copied, nil
}

type routerFixture struct {
	router *Router
	repo   *memoryRepository
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	repo := newMemoryRepository()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.APIConfig{
		JWTSecret:         "router-test-secret",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   24 * time.Hour,
		MinPasswordLength: 8,
		InvitationTTL:     720 * time.Hour,
	}
	accountSvc := account.New(repo, log, cfg)
	projectSvc := project.New(repo, repo, repo, ws.NewHub(), log)
	collabSvc := collab.New(repo, repo, repo, repo, log, cfg)
	healthSvc := health.New(log, 100*time.Millisecond,
		health.Probe{Name: "database", Required: true, Check: func(ctx context.Context) error { return nil }},
	)
	router := NewRouter(log, accountSvc, projectSvc, collabSvc, healthSvc, NewMemoryRateLimiter())
	t.Cleanup(router.Close)
	return &routerFixture{router: router, repo: repo}
}

func (f *routerFixture) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) registerUser(t *testing.T, email string) (userID, token string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":     email,
		"full_name": "Test User",
		"password":  "longenough",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	var response struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return response.User.ID, response.Tokens.AccessToken
}

func TestRegisterAndLoginFlow(t *testing.T) {
	f := newRouterFixture(t)

	_, _ = f.registerUser(t, "dev@example.com")

	rec := f.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":     "dev@example.com",
		"full_name": "Second",
		"password":  "longenough",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register returned %d, want 409", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "dev@example.com",
		"password": "wrongpassword",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login returned %d, want 401", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "dev@example.com",
		"password": "longenough",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProfileRoundTrip(t *testing.T) {
	f := newRouterFixture(t)
	userID, token := f.registerUser(t, "dev@example.com")

	rec := f.do(t, http.MethodGet, "/auth/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile returned %d: %s", rec.Code, rec.Body.String())
	}
	var profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Bio   string `json:"bio"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.ID != userID || profile.Email != "dev@example.com" {
		t.Fatalf("profile identifies %q/%q, want %q/dev@example.com", profile.ID, profile.Email, userID)
	}

	rec = f.do(t, http.MethodPut, "/auth/profile", token, map[string]string{"bio": "building trackers"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/auth/profile", token, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode updated profile: %v", err)
	}
	if profile.Bio != "building trackers" {
		t.Fatalf("bio %q after update, want %q", profile.Bio, "building trackers")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/projects", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list returned %d, want 401", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/projects", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token returned %d, want 401", rec.Code)
	}
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	f := newRouterFixture(t)
	_, token := f.registerUser(t, "owner@example.com")

	rec := f.do(t, http.MethodPost, "/projects", token, map[string]string{
		"name":            "tracker",
		"github_username": "octocat",
		"repo_url":        "https://github.com/octocat/tracker",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode project: %v", err)
	}
	if created.Status != domain.ProjectStatusPlanned {
		t.Fatalf("new project status %q, want planned", created.Status)
	}

	rec = f.do(t, http.MethodPatch, "/projects/"+created.ID+"/status", token, map[string]string{"status": "launching"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid status returned %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPatch, "/projects/"+created.ID+"/status", token, map[string]string{"status": domain.ProjectStatusArchived})
	if rec.Code != http.StatusOK {
		t.Fatalf("archive returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPatch, "/projects/"+created.ID+"/status", token, map[string]string{"status": domain.ProjectStatusActive})
	if rec.Code != http.StatusConflict {
		t.Fatalf("transition out of archived returned %d, want 409", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/projects/"+created.ID+"/deployments", token, map[string]string{
		"outcome": domain.DeploymentOutcomeSucceeded,
		"message": "ship it",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("deployment on archived project returned %d, want 409", rec.Code)
	}
}

func TestMalformedProjectIDReturnsBadRequest(t *testing.T) {
	f := newRouterFixture(t)
	_, token := f.registerUser(t, "owner@example.com")

	rec := f.do(t, http.MethodGet, "/projects/not-a-uuid", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed project id returned %d, want 400", rec.Code)
	}
}

func TestDeploymentHistoryOverHTTP(t *testing.T) {
	f := newRouterFixture(t)
	_, token := f.registerUser(t, "owner@example.com")

	rec := f.do(t, http.MethodPost, "/projects", token, map[string]string{"name": "tracker"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project returned %d", rec.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode project: %v", err)
	}

	for i, outcome := range []string{domain.DeploymentOutcomeInProgress, domain.DeploymentOutcomeSucceeded} {
		rec = f.do(t, http.MethodPost, "/projects/"+created.ID+"/deployments", token, map[string]string{
			"outcome": outcome,
			"message": fmt.Sprintf("deploy %d", i),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("record deployment returned %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec = f.do(t, http.MethodGet, "/projects/"+created.ID+"/deployments", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list deployments returned %d", rec.Code)
	}
	var records []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode deployments: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 deployment records, got %d", len(records))
	}
	if records[0]["outcome"] != domain.DeploymentOutcomeSucceeded {
		t.Fatalf("expected newest record first, got %v", records[0]["outcome"])
	}
}

func TestInvitationFlowOverHTTP(t *testing.T) {
	f := newRouterFixture(t)
	_, ownerToken := f.registerUser(t, "owner@example.com")
	friendID, friendToken := f.registerUser(t, "friend@example.com")

	rec := f.do(t, http.MethodPost, "/projects", ownerToken, map[string]string{"name": "tracker"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project returned %d", rec.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode project: %v", err)
	}

	rec = f.do(t, http.MethodPost, "/collaboration/projects/"+created.ID+"/invitations", friendToken, map[string]string{"invitee_id": friendID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("invite by non-member returned %d, want 403", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/collaboration/projects/"+created.ID+"/invitations", ownerToken, map[string]string{"invitee_id": friendID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("invite returned %d: %s", rec.Code, rec.Body.String())
	}
	var invitation struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &invitation); err != nil {
		t.Fatalf("decode invitation: %v", err)
	}

	rec = f.do(t, http.MethodGet, "/collaboration/my-invitations", friendToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("my-invitations returned %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/collaboration/invitations/"+invitation.Token+"/accept", friendToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/collaboration/invitations/"+invitation.Token+"/decline", friendToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("decline after accept returned %d, want 409", rec.Code)
	}

	// accepted collaborator now has contributor access
	rec = f.do(t, http.MethodPatch, "/projects/"+created.ID+"/status", friendToken, map[string]string{"status": domain.ProjectStatusActive})
	if rec.Code != http.StatusOK {
		t.Fatalf("collaborator transition returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListProjectsReflectsStatusTransition(t *testing.T) {
	f := newRouterFixture(t)
	_, token := f.registerUser(t, "owner@example.com")

	rec := f.do(t, http.MethodPost, "/projects", token, map[string]string{"name": "demo"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project returned %d", rec.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode project: %v", err)
	}

	rec = f.do(t, http.MethodPatch, "/projects/"+created.ID+"/status", token, map[string]string{"status": domain.ProjectStatusActive})
	if rec.Code != http.StatusOK {
		t.Fatalf("transition returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/projects?status=active", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	var projects []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &projects); err != nil {
		t.Fatalf("decode projects: %v", err)
	}
	found := false
	for _, p := range projects {
		if p["id"] == created.ID && p["status"] == domain.ProjectStatusActive {
			found = true
		}
	}
	if !found {
		t.Fatalf("active project missing from listing: %v", projects)
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/system/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d: %s", rec.Code, rec.Body.String())
	}
	var report health.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Status != health.StatusOK {
		t.Fatalf("expected ok, got %q", report.Status)
	}
}

func TestHealthEndpointReportsOutage(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMemoryRepository()
	cfg := config.APIConfig{JWTSecret: "s", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour, MinPasswordLength: 8}
	healthSvc := health.New(log, 50*time.Millisecond,
		health.Probe{Name: "database", Required: true, Check: func(ctx context.Context) error { return context.DeadlineExceeded }},
	)
	router := NewRouter(log, account.New(repo, log, cfg), project.New(repo, repo, repo, nil, log), collab.New(repo, repo, repo, repo, log, cfg), healthSvc, NewMemoryRateLimiter())
	t.Cleanup(router.Close)

	req := httptest.NewRequest(http.MethodGet, "/system/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("outage health returned %d, want 503", rec.Code)
	}
}

func TestRegisterRateLimited(t *testing.T) {
	f := newRouterFixture(t)

	var last int
	for i := 0; i < rateLimitRegister+1; i++ {
		rec := f.do(t, http.MethodPost, "/auth/register", "", map[string]string{
			"email":     fmt.Sprintf("user%d@example.com", i),
			"full_name": "User",
			"password":  "longenough",
		})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exceeding limit, got %d", last)
	}
}
