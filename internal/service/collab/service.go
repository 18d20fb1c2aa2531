package collab

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/devtrackhq/devtrack/internal/domain"
	"github.com/devtrackhq/devtrack/internal/repository"
	"github.com/devtrackhq/devtrack/pkg/config"
)

var (
	ErrNotAuthorized      = errors.New("collab: insufficient permission")
	ErrInviteeRequired    = errors.New("collab: either invitee account or email must be provided, not both")
	ErrInvalidEmail       = errors.New("collab: invalid invitee email")
	ErrInvalidRole        = errors.New("collab: unknown collaborator role")
	ErrOwnerInvited       = errors.New("collab: project owner cannot be invited")
	ErrAlreadyMember      = errors.New("collab: user is already a collaborator")
	ErrAlreadyInvited     = errors.New("collab: a pending invitation already exists")
	ErrNotInvitee         = errors.New("collab: invitation addressed to another account")
	ErrInvitationExpired  = errors.New("collab: invitation expired")
	ErrInvitationTerminal = errors.New("collab: invitation already resolved")
	ErrOwnerNotMember     = errors.New("collab: project owner is not a collaborator")
)

// InviteInput identifies the invitation recipient. Exactly one of InviteeID
// and Email is set.
type InviteInput struct {
	InviteeID string `json:"invitee_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Service manages the invitation lifecycle and collaborator roster.
type Service struct {
	invitations repository.InvitationRepository
	members     repository.CollaboratorRepository
	projects    repository.ProjectRepository
	users       repository.UserRepository
	logger      *slog.Logger
	cfg         config.APIConfig
}

// New constructs a Service.
func New(invitations repository.InvitationRepository, members repository.CollaboratorRepository, projects repository.ProjectRepository, users repository.UserRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{invitations: invitations, members: members, projects: projects, users: users, logger: logger, cfg: cfg}
}

// Invite creates a pending invitation. The inviter needs invite rights
// (owner or admin collaborator) on the project.
func (s Service) Invite(ctx context.Context, projectID, inviterID string, input InviteInput) (*domain.Invitation, error) {
	project, role, err := s.resolveRole(ctx, inviterID, projectID)
	if err != nil {
		return nil, err
	}
	if !domain.RoleCanManage(role) {
		return nil, ErrNotAuthorized
	}

	inviteeID := strings.TrimSpace(input.InviteeID)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if (inviteeID == "") == (email == "") {
		return nil, ErrInviteeRequired
	}
	invRole := strings.TrimSpace(input.Role)
	if invRole == "" {
		invRole = domain.RoleContributor
	}
	if !domain.ValidCollaboratorRole(invRole) {
		return nil, ErrInvalidRole
	}

	invitation := &domain.Invitation{
		Token:     uuid.NewString(),
		ProjectID: projectID,
		InviterID: inviterID,
		Role:      invRole,
		Status:    domain.InvitationStatusPending,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(s.cfg.InvitationTTL),
	}

	if inviteeID != "" {
		invitee, err := s.users.GetUserByID(ctx, inviteeID)
		if err != nil {
			return nil, err
		}
		if invitee.ID == project.OwnerID {
			return nil, ErrOwnerInvited
		}
		if _, err := s.members.GetCollaborator(ctx, projectID, invitee.ID); err == nil {
			return nil, ErrAlreadyMember
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		invitation.InviteeID = &invitee.ID
	} else {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrInvalidEmail
		}
		owner, err := s.users.GetUserByID(ctx, project.OwnerID)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(owner.Email, email) {
			return nil, ErrOwnerInvited
		}
		invitation.Email = email
	}

	if err := s.invitations.CreateInvitation(ctx, invitation); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyInvited
		}
		return nil, err
	}
	s.logger.Info("invitation created", "project_id", projectID, "inviter_id", inviterID, "token", invitation.Token)
	return invitation, nil
}

// Accept transitions a pending invitation to accepted and adds the caller
// as a collaborator. Only the invited party may accept; terminal and
// expired invitations reject the transition.
func (s Service) Accept(ctx context.Context, token, userID string) (*domain.Invitation, error) {
	if err := s.checkInvitee(ctx, token, userID); err != nil {
		return nil, err
	}
	inv, err := s.invitations.AcceptInvitation(ctx, token, userID, time.Now().UTC())
	if err != nil {
		return nil, s.transitionError(inv, err)
	}
	s.logger.Info("invitation accepted", "token", token, "user_id", userID, "project_id", inv.ProjectID)
	return inv, nil
}

// Decline transitions a pending invitation to declined.
func (s Service) Decline(ctx context.Context, token, userID string) (*domain.Invitation, error) {
	if err := s.checkInvitee(ctx, token, userID); err != nil {
		return nil, err
	}
	inv, err := s.invitations.DeclineInvitation(ctx, token, time.Now().UTC())
	if err != nil {
		return nil, s.transitionError(inv, err)
	}
	s.logger.Info("invitation declined", "token", token, "user_id", userID)
	return inv, nil
}

// ListProjectInvitations returns invitations on a project; the caller needs
// manage rights.
func (s Service) ListProjectInvitations(ctx context.Context, projectID, actorID string) ([]domain.Invitation, error) {
	_, role, err := s.resolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !domain.RoleCanManage(role) {
		return nil, ErrNotAuthorized
	}
	return s.invitations.ListInvitationsByProject(ctx, projectID)
}

// ListMyInvitations returns invitations addressed to the account.
func (s Service) ListMyInvitations(ctx context.Context, userID string) ([]domain.Invitation, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.invitations.ListInvitationsForUser(ctx, user.ID, user.Email)
}

// ListCollaborators returns the roster; any member or the owner may view.
func (s Service) ListCollaborators(ctx context.Context, projectID, actorID string) ([]domain.Collaborator, error) {
	_, role, err := s.resolveRole(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, ErrNotAuthorized
	}
	return s.members.ListCollaborators(ctx, projectID)
}

// UpdateCollaboratorRole re-roles an existing collaborator; manage rights
// required. The owner is not a collaborator row and cannot be re-roled.
func (s Service) UpdateCollaboratorRole(ctx context.Context, projectID, actorID, userID, newRole string) error {
	project, role, err := s.resolveRole(ctx, actorID, projectID)
	if err != nil {
		return err
	}
	if !domain.RoleCanManage(role) {
		return ErrNotAuthorized
	}
	if !domain.ValidCollaboratorRole(newRole) {
		return ErrInvalidRole
	}
	if userID == project.OwnerID {
		return ErrOwnerNotMember
	}
	member, err := s.members.GetCollaborator(ctx, projectID, userID)
	if err != nil {
		return err
	}
	member.Role = newRole
	if err := s.members.UpsertCollaborator(ctx, member); err != nil {
		return err
	}
	s.logger.Info("collaborator role updated", "project_id", projectID, "user_id", userID, "role", newRole)
	return nil
}

// RemoveCollaborator drops a member from the project; manage rights
// required, or a collaborator may remove themselves.
func (s Service) RemoveCollaborator(ctx context.Context, projectID, actorID, userID string) error {
	_, role, err := s.resolveRole(ctx, actorID, projectID)
	if err != nil {
		return err
	}
	if actorID != userID && !domain.RoleCanManage(role) {
		return ErrNotAuthorized
	}
	if err := s.members.RemoveCollaborator(ctx, projectID, userID); err != nil {
		return err
	}
	s.logger.Info("collaborator removed", "project_id", projectID, "user_id", userID, "actor_id", actorID)
	return nil
}

// checkInvitee verifies the caller is the invitation's addressee. Email
// invitations match against the caller's registered email.
func (s Service) checkInvitee(ctx context.Context, token, userID string) error {
	inv, err := s.invitations.GetInvitationByToken(ctx, token)
	if err != nil {
		return err
	}
	if inv.InviteeID != nil {
		if *inv.InviteeID != userID {
			return ErrNotInvitee
		}
		return nil
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(user.Email, inv.Email) {
		return ErrNotInvitee
	}
	return nil
}

// transitionError folds a repository conflict into the reason the
// transition was rejected.
func (s Service) transitionError(inv *domain.Invitation, err error) error {
	if errors.Is(err, repository.ErrConflict) && inv != nil {
		if inv.Status == domain.InvitationStatusExpired {
			return ErrInvitationExpired
		}
		return ErrInvitationTerminal
	}
	return err
}

func (s Service) resolveRole(ctx context.Context, actorID, projectID string) (*domain.Project, string, error) {
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
