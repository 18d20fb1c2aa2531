package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devtrackhq/devtrack/internal/domain"
	"github.com/devtrackhq/devtrack/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository         = (*Repository)(nil)
	_ repository.ProjectRepository      = (*Repository)(nil)
	_ repository.CollaboratorRepository = (*Repository)(nil)
	_ repository.DeploymentRepository   = (*Repository)(nil)
	_ repository.InvitationRepository   = (*Repository)(nil)
)

// mapPgError translates constraint violations to sentinel errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return repository.ErrConflict
		case "23503":
			return repository.ErrNotFound
		case "23514", "22P02":
			return repository.ErrInvalidArgument
		}
	}
	return err
}

// CreateUser inserts an account.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (id, email, username, full_name, password_hash, bio, github_link, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.Username, user.FullName, user.PasswordHash,
		user.Bio, user.GithubLink, user.Active, user.CreatedAt, user.UpdatedAt)
	return mapPgError(err)
}

// GetUserByEmail fetches an account by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, email, username, full_name, password_hash, bio, github_link, active, created_at, updated_at
		FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetUserByID retrieves an account by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, email, username, full_name, password_hash, bio, github_link, active, created_at, updated_at
		FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.PasswordHash, &u.Bio, &u.GithubLink, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return &u, nil
}

// UpdateUser persists mutable profile fields.
func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	const query = `UPDATE users SET full_name = $2, bio = $3, github_link = $4, updated_at = $5 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, user.ID, user.FullName, user.Bio, user.GithubLink, user.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateUser soft-deactivates an account. Rows are never deleted.
func (r *Repository) DeactivateUser(ctx context.Context, id string) error {
	const query = `UPDATE users SET active = FALSE, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateProject inserts a project.
func (r *Repository) CreateProject(ctx context.Context, project *domain.Project) error {
	const query = `INSERT INTO projects (id, owner_id, name, github_username, repo_url, database_name, domain_name, details, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, query, project.ID, project.OwnerID, project.Name, project.GithubUsername,
		project.RepoURL, project.DatabaseName, project.DomainName, project.Details, project.Status,
		project.CreatedAt, project.UpdatedAt)
	return mapPgError(err)
}

const projectColumns = `id, owner_id, name, github_username, repo_url, database_name, domain_name, details, status, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.GithubUsername, &p.RepoURL, &p.DatabaseName, &p.DomainName, &p.Details, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return &p, nil
}

// GetProjectByID fetches project details.
func (r *Repository) GetProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.pool.QueryRow(ctx, query, projectID))
}

// ListProjectsByMember returns projects the account owns or collaborates on.
func (r *Repository) ListProjectsByMember(ctx context.Context, accountID string, filter domain.ProjectFilter) ([]domain.Project, error) {
	query := `SELECT DISTINCT p.id, p.owner_id, p.name, p.github_username, p.repo_url, p.database_name, p.domain_name, p.details, p.status, p.created_at, p.updated_at
		FROM projects p
		LEFT JOIN collaborators c ON c.project_id = p.id
		WHERE (p.owner_id = $1 OR c.user_id = $1)`
	args := []any{accountID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND p.status = $%d", len(args))
	} else if !filter.IncludeArchived {
		args = append(args, domain.ProjectStatusArchived)
		query += fmt.Sprintf(" AND p.status <> $%d", len(args))
	}
	query += " ORDER BY p.created_at DESC"
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.GithubUsername, &p.RepoURL, &p.DatabaseName, &p.DomainName, &p.Details, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// TransitionProjectStatus re-reads the current row under FOR UPDATE before
// writing, so a concurrent transition cannot be lost or resurrect an
// archived project.
func (r *Repository) TransitionProjectStatus(ctx context.Context, projectID, newStatus string) (*domain.Project, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 FOR UPDATE`
	project, err := scanProject(tx.QueryRow(ctx, query, projectID))
	if err != nil {
		return nil, err
	}
	if project.IsArchived() {
		return project, repository.ErrConflict
	}
	const update = `UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	if err := tx.QueryRow(ctx, update, projectID, newStatus).Scan(&project.UpdatedAt); err != nil {
		return nil, mapPgError(err)
	}
	project.Status = newStatus
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return project, nil
}

// GetCollaborator returns a membership row.
func (r *Repository) GetCollaborator(ctx context.Context, projectID, userID string) (*domain.Collaborator, error) {
	const query = `SELECT project_id, user_id, role, added_by, created_at FROM collaborators
		WHERE project_id = $1 AND user_id = $2`
	row := r.pool.QueryRow(ctx, query, projectID, userID)
	var c domain.Collaborator
	if err := row.Scan(&c.ProjectID, &c.UserID, &c.Role, &c.AddedBy, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return &c, nil
}

// ListCollaborators returns project membership ordered by join time.
func (r *Repository) ListCollaborators(ctx context.Context, projectID string) ([]domain.Collaborator, error) {
	const query = `SELECT project_id, user_id, role, added_by, created_at FROM collaborators
		WHERE project_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collaborators := make([]domain.Collaborator, 0)
	for rows.Next() {
		var c domain.Collaborator
		if err := rows.Scan(&c.ProjectID, &c.UserID, &c.Role, &c.AddedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		collaborators = append(collaborators, c)
	}
	return collaborators, rows.Err()
}

// UpsertCollaborator adds or re-roles a member.
func (r *Repository) UpsertCollaborator(ctx context.Context, collaborator *domain.Collaborator) error {
	const query = `INSERT INTO collaborators (project_id, user_id, role, added_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role = EXCLUDED.role`
	_, err := r.pool.Exec(ctx, query, collaborator.ProjectID, collaborator.UserID, collaborator.Role, collaborator.AddedBy, collaborator.CreatedAt)
	return mapPgError(err)
}

// RemoveCollaborator deletes a membership row.
func (r *Repository) RemoveCollaborator(ctx context.Context, projectID, userID string) error {
	const query = `DELETE FROM collaborators WHERE project_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, projectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AppendDeployment inserts a deployment record. There is no update path.
func (r *Repository) AppendDeployment(ctx context.Context, record *domain.DeploymentRecord) error {
	const query = `INSERT INTO deployment_records (id, project_id, outcome, message, triggered_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, record.ID, record.ProjectID, record.Outcome, record.Message, record.TriggeredBy, record.CreatedAt)
	return mapPgError(err)
}

// ListDeploymentsByProject returns deployment history, newest first.
func (r *Repository) ListDeploymentsByProject(ctx context.Context, projectID string, limit int) ([]domain.DeploymentRecord, error) {
	const query = `SELECT id, project_id, outcome, message, triggered_by, created_at FROM deployment_records
		WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.DeploymentRecord, 0)
	for rows.Next() {
		var d domain.DeploymentRecord
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Outcome, &d.Message, &d.TriggeredBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, d)
	}
	return records, rows.Err()
}
