package domain

import "time"

// Deployment outcomes.
const (
	DeploymentOutcomeInProgress = "in_progress"
	DeploymentOutcomeSucceeded  = "succeeded"
	DeploymentOutcomeFailed     = "failed"
)

// ValidDeploymentOutcome reports whether s is a known outcome.
func ValidDeploymentOutcome(s string) bool {
	switch s {
	case DeploymentOutcomeInProgress, DeploymentOutcomeSucceeded, DeploymentOutcomeFailed:
		return true
	}
	return false
}

// DeploymentRecord is an append-only log entry for a single deployment
// action. Records are inserted once and never mutated.
type DeploymentRecord struct {
	ID          string
	ProjectID   string
	Outcome     string
	Message     string
	TriggeredBy string
	CreatedAt   time.Time
}
