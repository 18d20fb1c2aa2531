package domain

import "time"

// Collaborator roles, lowest to highest privilege.
const (
	RoleViewer      = "viewer"
	RoleContributor = "contributor"
	RoleAdmin       = "admin"
	// RoleOwner is not stored; it is resolved from Project.OwnerID.
	RoleOwner = "owner"
)

// ValidCollaboratorRole reports whether role is assignable to a collaborator.
func ValidCollaboratorRole(role string) bool {
	switch role {
	case RoleViewer, RoleContributor, RoleAdmin:
		return true
	}
	return false
}

// RoleCanWrite reports whether the role may mutate project state.
func RoleCanWrite(role string) bool {
	switch role {
	case RoleContributor, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// RoleCanManage reports whether the role may manage collaborators and invitations.
func RoleCanManage(role string) bool {
	return role == RoleAdmin || role == RoleOwner
}

// Collaborator links an account to a project with a role.
type Collaborator struct {
	ProjectID string
	UserID    string
	Role      string
	AddedBy   *string
	CreatedAt time.Time
}
