package repository

import (
	"context"
	"time"

	"github.com/devtrackhq/devtrack/internal/domain"
)

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeactivateUser(ctx context.Context, id string) error
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *domain.Project) error
	GetProjectByID(ctx context.Context, projectID string) (*domain.Project, error)
	// ListProjectsByMember returns projects the account owns or collaborates
	// on, newest first, restricted by filter.
	ListProjectsByMember(ctx context.Context, accountID string, filter domain.ProjectFilter) ([]domain.Project, error)
	// TransitionProjectStatus re-reads the current status under a row lock
	// before writing. Archived projects reject every transition with
	// ErrConflict.
	TransitionProjectStatus(ctx context.Context, projectID, newStatus string) (*domain.Project, error)
}

// CollaboratorRepository manages project membership.
type CollaboratorRepository interface {
	GetCollaborator(ctx context.Context, projectID, userID string) (*domain.Collaborator, error)
	ListCollaborators(ctx context.Context, projectID string) ([]domain.Collaborator, error)
	UpsertCollaborator(ctx context.Context, collaborator *domain.Collaborator) error
	RemoveCollaborator(ctx context.Context, projectID, userID string) error
}

// DeploymentRepository stores the append-only deployment history.
type DeploymentRepository interface {
	AppendDeployment(ctx context.Context, record *domain.DeploymentRecord) error
	ListDeploymentsByProject(ctx context.Context, projectID string, limit int) ([]domain.DeploymentRecord, error)
}

// InvitationRepository manages the invitation lifecycle. Transition methods
// run in a transaction that re-reads state under a row lock so concurrent
// requests cannot move an invitation out of a terminal state.
type InvitationRepository interface {
	CreateInvitation(ctx context.Context, invitation *domain.Invitation) error
	GetInvitationByToken(ctx context.Context, token string) (*domain.Invitation, error)
	ListInvitationsByProject(ctx context.Context, projectID string) ([]domain.Invitation, error)
	ListInvitationsForUser(ctx context.Context, userID, email string) ([]domain.Invitation, error)
	// AcceptInvitation marks the invitation accepted and inserts the
	// collaborator row in the same transaction. Non-pending invitations
	// return ErrConflict; pending-but-expired invitations are flipped to
	// expired and also return ErrConflict, with the updated row.
	AcceptInvitation(ctx context.Context, token, userID string, now time.Time) (*domain.Invitation, error)
	// DeclineInvitation marks the invitation declined under the same rules.
	DeclineInvitation(ctx context.Context, token string, now time.Time) (*domain.Invitation, error)
}
