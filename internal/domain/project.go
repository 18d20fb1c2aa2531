package domain

import "time"

// Project status lifecycle. Archived is terminal.
const (
	ProjectStatusPlanned  = "planned"
	ProjectStatusActive   = "active"
	ProjectStatusDeployed = "deployed"
	ProjectStatusArchived = "archived"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusActive, ProjectStatusDeployed, ProjectStatusArchived:
		return true
	}
	return false
}

// Project describes a tracked unit of work owned by exactly one account.
type Project struct {
	ID             string
	OwnerID        string
	Name           string
	GithubUsername string
	RepoURL        string
	DatabaseName   string
	DomainName     string
	Details        string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsArchived reports whether the project reached its terminal status.
func (p Project) IsArchived() bool {
	return p.Status == ProjectStatusArchived
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Status          string
	IncludeArchived bool
	Limit           int
	Offset          int
}
