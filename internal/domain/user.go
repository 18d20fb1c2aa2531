package domain

import (
	"strings"
	"time"
)

// User represents a registered account. Accounts are never deleted; Active
// flips to false on deactivation.
type User struct {
	ID           string
	Email        string
	Username     string
	FullName     string
	PasswordHash []byte
	Bio          string
	GithubLink   string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UsernameFromEmail derives a default username from the email local part.
func UsernameFromEmail(email string) string {
	if idx := strings.IndexRune(email, '@'); idx > 0 {
		return email[:idx]
	}
	return email
}
