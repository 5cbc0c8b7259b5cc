package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/gridfire/api/internal/model"
	"github.com/freeeve/gridfire/api/internal/repository"
)

// UserRepo handles user account database operations.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user with the default rating.
func (r *UserRepo) Create(ctx context.Context, handle, passwordHash string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (handle, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, handle, password_hash, elo, created_at, updated_at`,
		handle, passwordHash,
	).Scan(&u.ID, &u.Handle, &u.PasswordHash, &u.Elo, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// FindByHandle looks up a user by their unique handle.
func (r *UserRepo) FindByHandle(ctx context.Context, handle string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, handle, password_hash, elo, created_at, updated_at
		 FROM users WHERE handle = $1`,
		handle,
	).Scan(&u.ID, &u.Handle, &u.PasswordHash, &u.Elo, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by handle: %w", err)
	}
	return &u, nil
}

// FindByID looks up a user by their UUID.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, handle, password_hash, elo, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Handle, &u.PasswordHash, &u.Elo, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

// AdjustElo applies a rating delta atomically and returns the new rating.
// Ratings never drop below zero.
func (r *UserRepo) AdjustElo(ctx context.Context, id string, delta int) (int, error) {
	var elo int
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET elo = GREATEST(elo + $1, 0), updated_at = now()
		 WHERE id = $2
		 RETURNING elo`,
		delta, id,
	).Scan(&elo)
	if err == sql.ErrNoRows {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjust elo: %w", err)
	}
	return elo, nil
}
