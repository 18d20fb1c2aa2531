package domain

import "time"

// InvitationStatus enumerates invitation lifecycle states. Accepted,
// declined and expired are terminal.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusDeclined = "declined"
	InvitationStatusExpired  = "expired"
)

// Invitation is a pending offer of collaboration on a project. Exactly one
// of InviteeID and Email is set at creation; Email covers not-yet-registered
// recipients and gains an InviteeID on acceptance.
type Invitation struct {
	Token      string
	ProjectID  string
	InviterID  string
	InviteeID  *string
	Email      string
	Role       string
	Status     string
	CreatedAt  time.Time
	AcceptedAt *time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the invitation TTL elapsed relative to now.
func (i Invitation) Expired(now time.Time) bool {
	if i.ExpiresAt.IsZero() {
		return false
	}
	return now.UTC().After(i.ExpiresAt.UTC())
}

// Terminal reports whether the invitation reached a final state.
func (i Invitation) Terminal() bool {
	switch i.Status {
	case InvitationStatusAccepted, InvitationStatusDeclined, InvitationStatusExpired:
		return true
	}
	return false
}
