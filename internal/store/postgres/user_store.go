package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/travel-buddies/travel-buddies-backend/internal/store"
	"github.com/travel-buddies/travel-buddies-backend/types"
)

// Ensure UserStore implements store.UserStore.
var _ store.UserStore = (*UserStore)(nil)

// UserStore implements store.UserStore on PostgreSQL.
type UserStore struct {
	db DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, email, hashed_password, full_name, bio, rating, role, is_verified, created_at`

func scanUser(row pgx.Row) (*types.User, error) {
	user := &types.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.FullName,
		&user.Bio,
		&user.Rating,
		&user.Role,
		&user.IsVerified,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new user and returns the generated id.
func (s *UserStore) CreateUser(ctx context.Context, user *types.User) (string, error) {
	query := `
		INSERT INTO users (username, email, hashed_password, full_name, bio, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	row := s.db.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.FullName,
		user.Bio,
		user.Role,
	)

	err := row.Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return "", store.ErrDuplicate
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}
	return user.ID, nil
}

// GetUserByID retrieves a user by id.
func (s *UserStore) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRow(ctx, query, id))
}

// GetUserByEmail retrieves a user by email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRow(ctx, query, email))
}

// GetUserByUsername retrieves a user by username.
func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(s.db.QueryRow(ctx, query, username))
}

// UpdateUser applies a partial profile update. Nil fields keep their
// current value.
func (s *UserStore) UpdateUser(ctx context.Context, id string, update types.UserUpdateRequest) error {
	query := `
		UPDATE users
		SET full_name = COALESCE($1, full_name),
			bio = COALESCE($2, bio),
			hashed_password = COALESCE($3, hashed_password)
		WHERE id = $4`

	cmdTag, err := s.db.Exec(ctx, query, update.FullName, update.Bio, update.Password, id)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListUsers returns users ordered by creation time, optionally filtered
// by role.
func (s *UserStore) ListUsers(ctx context.Context, role string, skip, limit int) ([]types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += fmt.Sprintf(` ORDER BY created_at ASC OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, skip, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// SetVerified marks a user as verified.
func (s *UserStore) SetVerified(ctx context.Context, id string) error {
	cmdTag, err := s.db.Exec(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error verifying user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
