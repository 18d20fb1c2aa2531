package project

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/devtrackhq/devtrack/internal/domain"
	"github.com/devtrackhq/devtrack/internal/repository"
	"github.com/devtrackhq/devtrack/internal/ws"
)

var (
	ErrNameRequired      = errors.New("project: name is required")
	ErrNameTaken         = errors.New("project: name already used by this account")
	ErrInvalidGithubUser = errors.New("project: invalid github username format")
	ErrInvalidDomainName = errors.New("project: invalid domain name format")
	ErrInvalidDatabase   = errors.New("project: database name must start with a letter and contain only letters, numbers, and underscores")
	ErrRepoOwnerMismatch = errors.New("project: repository URL must belong to the declared github username")
	ErrInvalidStatus     = errors.New("project: unknown status")
	ErrProjectArchived   = errors.New("project: project is archived")
	ErrInvalidOutcome    = errors.New("project: unknown deployment outcome")
	ErrNotAuthorized     = errors.New("project: insufficient permission")
	ErrMissingProjectID  = errors.New("project: project id required")
)

var (
	githubUsernameRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]){0,38}$`)
	domainNameRe     = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
	databaseNameRe   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	deploymentLimit = 100
)

// CreateInput encapsulates project creation attributes.
type CreateInput struct {
	Name           string `json:"name"`
	GithubUsername string `json:"github_username"`
	RepoURL        string `json:"repo_url"`
	DatabaseName   string `json:"database_name"`
	DomainName     string `json:"domain_name"`
	Details        string `json:"details"`
}

// Service orchestrates project tracking and deployment history.
type Service struct {
	projects    repository.ProjectRepository
	members     repository.CollaboratorRepository
	deployments repository.DeploymentRepository
	hub         *ws.Hub
	logger      *slog.Logger
}

// New returns a project service.
func New(projects repository.ProjectRepository, members repository.CollaboratorRepository, deployments repository.DeploymentRepository, hub *ws.Hub, logger *slog.Logger) Service {
	return Service{projects: projects, members: members, deployments: deployments, hub: hub, logger: logger}
}

// Create registers a project for the owner. New projects start planned.
func (s Service) Create(ctx context.Context, ownerID string, input CreateInput) (*domain.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	githubUser := strings.TrimSpace(input.GithubUsername)
	if githubUser != "" && !githubUsernameRe.MatchString(githubUser) {
		return nil, ErrInvalidGithubUser
	}
	repoURL := strings.TrimSpace(input.RepoURL)
	if repoURL != "" && githubUser != "" {
		if !strings.HasPrefix(repoURL, "https://github.com/"+githubUser+"/") {
			return nil, ErrRepoOwnerMismatch
		}
	}
	if dn := strings.TrimSpace(input.DomainName); dn != "" && !domainNameRe.MatchString(dn) {
		return nil, ErrInvalidDomainName
	}
	if db := strings.TrimSpace(input.DatabaseName); db != "" && !databaseNameRe.MatchString(db) {
		return nil, ErrInvalidDatabase
	}
	now := time.Now().UTC()
	project := &domain.Project{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Name:           name,
		GithubUsername: githubUser,
		RepoURL:        repoURL,
		DatabaseName:   strings.TrimSpace(input.DatabaseName),
		DomainName:     strings.TrimSpace(input.DomainName),
		Details:        input.Details,
		Status:         domain.ProjectStatusPlanned,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	s.logger.Info("project created", "project_id", project.ID, "owner_id", ownerID)
	return project, nil
}

// List returns projects the account owns or collaborates on. The result is
// a finite page; repeating the call with the same filter restarts the
// listing.
func (s Service) List(ctx context.Context, accountID string, filter domain.ProjectFilter) ([]domain.Project, error) {
	if filter.Status != "" && !domain.ValidProjectStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.projects.ListProjectsByMember(ctx, accountID, filter)
}

// Get returns project details when the actor has at least viewer access.
func (s Service) Get(ctx context.Context, actorID, projectID string) (*domain.Project, error) {
	project, role, err := s.resolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, ErrNotAuthorized
	}
	return project, nil
}

// UpdateStatus transitions a project. The actor needs write access; the
// repository re-reads current state under a row lock so concurrent
// transitions cannot be lost. Archived is terminal.
func (s Service) UpdateStatus(ctx context.Context, projectID, newStatus, actorID string) (*domain.Project, error) {
	if !domain.ValidProjectStatus(newStatus) {
		return nil, ErrInvalidStatus
	}
	_, role, err := s.resolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !domain.RoleCanWrite(role) {
		return nil, ErrNotAuthorized
	}
	project, err := s.projects.TransitionProjectStatus(ctx, projectID, newStatus)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrProjectArchived
		}
		return nil, err
	}
	s.logger.Info("project status updated", "project_id", projectID, "status", newStatus, "actor_id", actorID)
	return project, nil
}

// RecordDeployment appends a deployment record and broadcasts it to stream
// subscribers. History is append-only: nothing here or in the repository
// ever rewrites a prior record.
func (s Service) RecordDeployment(ctx context.Context, projectID, actorID, outcome, message string) (*domain.DeploymentRecord, error) {
	if !domain.ValidDeploymentOutcome(outcome) {
		return nil, ErrInvalidOutcome
	}
	project, role, err := s.resolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !domain.RoleCanWrite(role) {
		return nil, ErrNotAuthorized
	}
	if project.IsArchived() {
		return nil, ErrProjectArchived
	}
	record := &domain.DeploymentRecord{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Outcome:     outcome,
		Message:     strings.TrimSpace(message),
		TriggeredBy: actorID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.deployments.AppendDeployment(ctx, record); err != nil {
		return nil, err
	}
	s.broadcast(*record)
	s.logger.Info("deployment recorded", "project_id", projectID, "outcome", outcome, "actor_id", actorID)
	return record, nil
}

// ListDeployments returns deployment history, newest first.
func (s Service) ListDeployments(ctx context.Context, actorID, projectID string, limit int) ([]domain.DeploymentRecord, error) {
	_, role, err := s.resolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, ErrNotAuthorized
	}
	if limit <= 0 || limit > deploymentLimit {
		limit = deploymentLimit
	}
	return s.deployments.ListDeploymentsByProject(ctx, projectID, limit)
}

// Hub exposes the deployment stream hub for websocket handlers.
func (s Service) Hub() *ws.Hub {
	return s.hub
}

// resolveRole loads the project and determines the actor's effective role.
// An empty role means no access.
func (s Service) resolveRole(ctx context.Context, actorID, projectID string) (*domain.Project, string, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, "", ErrMissingProjectID
	}
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	if project.OwnerID == actorID {
		return project, domain.RoleOwner, nil
	}
	member, err := s.members.GetCollaborator(ctx, projectID, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return project, "", nil
		}
		return nil, "", err
	}
	return project, member.Role, nil
}

// MarshalRecord formats a deployment record for streaming payloads.
func MarshalRecord(record domain.DeploymentRecord) ([]byte, error) {
	payload := map[string]any{
		"id":           record.ID,
		"project_id":   record.ProjectID,
		"outcome":      record.Outcome,
		"message":      record.Message,
		"triggered_by": record.TriggeredBy,
		"created_at":   record.CreatedAt.Format(time.RFC3339Nano),
	}
	return json.Marshal(payload)
}

func (s Service) broadcast(record domain.DeploymentRecord) {
	if s.hub == nil {
		return
	}
	data, err := MarshalRecord(record)
	if err != nil {
		s.logger.Warn("failed to marshal deployment payload", "error", err)
		return
	}
	s.hub.Broadcast(record.ProjectID, data)
}
