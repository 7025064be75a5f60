package repository

import (
	"context"
	"errors"
	"fmt"

	"astro_consult/internal/model"

	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error)
	FindByRole(ctx context.Context, role string, limit int64) ([]model.User, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a Postgres-backed UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, rate_per_min, bio, skills, rating, avatar_url, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u  model.User
		id string
	)
	err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.RatePerMin, &u.Bio,
		&u.Skills, &u.Rating, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if u.ID, err = parseStoredID(id); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (` + userColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, sql, user.ID.Hex(), user.Name, user.Email, user.PasswordHash, user.Role,
		user.RatePerMin, user.Bio, user.Skills, user.Rating, user.AvatarURL, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by email, nil when absent
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // not found is not an error for this contract, service layer handles it
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by ID, nil when absent
func (r *userRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.Hex()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByRole lists at most limit users with the given role
func (r *userRepository) FindByRole(ctx context.Context, role string, limit int64) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 LIMIT $2`, role, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
