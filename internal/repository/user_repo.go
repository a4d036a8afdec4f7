package repository

import (
	"context"
	"errors"
	"fmt"

	"account_service/internal/model"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by mutations that matched no row
var ErrNotFound = errors.New("record not found")

// UserRepository defines operations for user data
type UserRepository interface {
	// CreateWithBootstrapRole inserts user as ADMIN when no admin exists, USER otherwise,
	// deciding atomically. The assigned role is written back to user.Role.
	CreateWithBootstrapRole(ctx context.Context, user *model.User) error
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindAnyByRole(ctx context.Context, role model.Role) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, username, password_hash, role, created_at, updated_at`

// CreateWithBootstrapRole inserts a user whose role depends on whether an admin exists.
// Two concurrent bootstraps both see no admin; the partial unique index on admin rows
// rejects the second, which is then stored as a plain user.
func (r *userRepository) CreateWithBootstrapRole(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (email, username, password_hash, role, created_at, updated_at)
            SELECT $1, $2, $3,
                   CASE WHEN EXISTS (SELECT 1 FROM users WHERE role = 'ADMIN') THEN 'USER' ELSE 'ADMIN' END,
                   $4, $4
            RETURNING id, role`
	var role string
	err := r.db.QueryRow(ctx, sql, user.Email, user.Username, user.PasswordHash, user.CreatedAt).Scan(&user.ID, &role)
	if err == nil {
		user.Role = model.Role(role)
		user.UpdatedAt = user.CreatedAt
		return nil
	}

	constraint, ok := uniqueViolation(err)
	switch {
	case ok && constraint == constraintSingleAdmin:
		user.Role = model.RoleUser
		return r.Create(ctx, user)
	case ok:
		return ErrEmailTaken
	default:
		return fmt.Errorf("failed to create user: %w", err)
	}
}

// Create inserts a new user into the database with the role already set on user
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (email, username, password_hash, role, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`
	err := r.db.QueryRow(ctx, sql, user.Email, user.Username, user.PasswordHash, string(user.Role), user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.UpdatedAt = user.CreatedAt
	return nil
}

// FindByEmail retrieves a user by exact email match
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindAnyByRole returns one user holding role, or nil if there is none
func (r *userRepository) FindAnyByRole(ctx context.Context, role model.Role) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY id LIMIT 1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, string(role)))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by role: %w", err)
	}
	return user, nil
}

// ListAll returns every user ordered by ID
func (r *userRepository) ListAll(ctx context.Context) ([]model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		u.Role = model.Role(role)
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Update persists email, username and password hash of an existing user
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	sql := `UPDATE users SET email = $1, username = $2, password_hash = $3, updated_at = NOW()
            WHERE id = $4 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql, user.Email, user.Username, user.PasswordHash, user.ID).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if _, ok := uniqueViolation(err); ok {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes a user; their session row goes with it (ON DELETE CASCADE)
func (r *userRepository) Delete(ctx context.Context, id int) error {
	sql := `DELETE FROM users WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanUser returns nil, nil when the row is absent. Not found is not an error
// for finders; the service layer decides what it means.
func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = model.Role(role)
	return u, nil
}
