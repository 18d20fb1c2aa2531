package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devtrackhq/devtrack/internal/domain"
	"github.com/devtrackhq/devtrack/internal/repository"
)

const invitationColumns = `token, project_id, inviter_id, invitee_id, email, role, status, created_at, accepted_at, expires_at`

// invitationReadColumns presents a pending row past its expiry as expired.
// Transitions persist the flip; plain reads only report it.
const invitationReadColumns = `token, project_id, inviter_id, invitee_id, email, role,
	CASE WHEN status = 'pending' AND expires_at <= NOW() THEN 'expired' ELSE status END AS status,
	created_at, accepted_at, expires_at`

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := row.Scan(&inv.Token, &inv.ProjectID, &inv.InviterID, &inv.InviteeID, &inv.Email, &inv.Role, &inv.Status, &inv.CreatedAt, &inv.AcceptedAt, &inv.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return &inv, nil
}

// CreateInvitation inserts a pending invitation. A duplicate pending
// invitation for the same project and recipient trips the partial unique
// index and surfaces as ErrConflict.
func (r *Repository) CreateInvitation(ctx context.Context, invitation *domain.Invitation) error {
	const query = `INSERT INTO invitations (token, project_id, inviter_id, invitee_id, email, role, status, created_at, accepted_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query, invitation.Token, invitation.ProjectID, invitation.InviterID,
		invitation.InviteeID, invitation.Email, invitation.Role, invitation.Status,
		invitation.CreatedAt, invitation.AcceptedAt, invitation.ExpiresAt)
	return mapPgError(err)
}

// GetInvitationByToken loads a single invitation.
func (r *Repository) GetInvitationByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationReadColumns + ` FROM invitations WHERE token = $1`
	return scanInvitation(r.pool.QueryRow(ctx, query, token))
}

// ListInvitationsByProject returns invitations for a project, newest first.
func (r *Repository) ListInvitationsByProject(ctx context.Context, projectID string) ([]domain.Invitation, error) {
	query := `SELECT ` + invitationReadColumns + ` FROM invitations WHERE project_id = $1 ORDER BY created_at DESC`
	return r.listInvitations(ctx, query, projectID)
}

// ListInvitationsForUser returns invitations addressed to the account,
// either directly or via its email.
func (r *Repository) ListInvitationsForUser(ctx context.Context, userID, email string) ([]domain.Invitation, error) {
	query := `SELECT ` + invitationReadColumns + ` FROM invitations
		WHERE invitee_id = $1 OR email = $2 ORDER BY created_at DESC`
	return r.listInvitations(ctx, query, userID, email)
}

func (r *Repository) listInvitations(ctx context.Context, query string, args ...any) ([]domain.Invitation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := make([]domain.Invitation, 0)
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(&inv.Token, &inv.ProjectID, &inv.InviterID, &inv.InviteeID, &inv.Email, &inv.Role, &inv.Status, &inv.CreatedAt, &inv.AcceptedAt, &inv.ExpiresAt); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// AcceptInvitation locks the row, verifies it is still pending and
// unexpired, marks it accepted and inserts the collaborator in the same
// transaction. A non-pending row returns ErrConflict together with the
// current state so callers can report why.
func (r *Repository) AcceptInvitation(ctx context.Context, token, userID string, now time.Time) (*domain.Invitation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	inv, err := r.lockInvitation(ctx, tx, token, now)
	if err != nil {
		return inv, err
	}

	acceptedAt := now.UTC()
	const update = `UPDATE invitations SET status = $2, invitee_id = $3, accepted_at = $4 WHERE token = $1`
	if _, err := tx.Exec(ctx, update, token, domain.InvitationStatusAccepted, userID, acceptedAt); err != nil {
		return nil, mapPgError(err)
	}
	const insert = `INSERT INTO collaborators (project_id, user_id, role, added_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id, user_id) DO NOTHING`
	if _, err := tx.Exec(ctx, insert, inv.ProjectID, userID, inv.Role, inv.InviterID, acceptedAt); err != nil {
		return nil, mapPgError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	inv.Status = domain.InvitationStatusAccepted
	inv.InviteeID = &userID
	inv.AcceptedAt = &acceptedAt
	return inv, nil
}

// DeclineInvitation locks the row and marks a pending invitation declined.
func (r *Repository) DeclineInvitation(ctx context.Context, token string, now time.Time) (*domain.Invitation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	inv, err := r.lockInvitation(ctx, tx, token, now)
	if err != nil {
		return inv, err
	}

	const update = `UPDATE invitations SET status = $2 WHERE token = $1`
	if _, err := tx.Exec(ctx, update, token, domain.InvitationStatusDeclined); err != nil {
		return nil, mapPgError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	inv.Status = domain.InvitationStatusDeclined
	return inv, nil
}

// lockInvitation selects the row FOR UPDATE and enforces terminal-state and
// expiry rules. An expired pending row is written to expired before the
// conflict is reported; that write commits even though the caller's
// transition does not.
func (r *Repository) lockInvitation(ctx context.Context, tx pgx.Tx, token string, now time.Time) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1 FOR UPDATE`
	inv, err := scanInvitation(tx.QueryRow(ctx, query, token))
	if err != nil {
		return nil, err
	}
	if inv.Terminal() {
		return inv, repository.ErrConflict
	}
	if inv.Expired(now) {
		const expire = `UPDATE invitations SET status = $2 WHERE token = $1`
		if _, err := tx.Exec(ctx, expire, token, domain.InvitationStatusExpired); err != nil {
			return nil, mapPgError(err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		inv.Status = domain.InvitationStatusExpired
		return inv, repository.ErrConflict
	}
	return inv, nil
}
