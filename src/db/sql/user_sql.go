package db

import (
	"context"
	"fmt"

	"fingenius-server/src/models"

	"github.com/google/uuid"
)

const userColumns = `id, username, email, password_hash, role, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, LOWER($3), $4)
		RETURNING ` + userColumns
	created, err := scanUser(s.pool.QueryRow(ctx, query, uuid.New(), u.Username, u.Email, u.PasswordHash))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, email))
}

// UpdateUser keeps columns whose patch value is empty, via NULLIF.
func (s *PostgresStore) UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	query := `
		UPDATE users
		SET username = COALESCE(NULLIF($1, ''), username),
		    email = COALESCE(NULLIF(LOWER($2), ''), email),
		    password_hash = COALESCE($3, password_hash),
		    updated_at = NOW()
		WHERE id = $4
		RETURNING ` + userColumns
	var hash []byte
	if len(patch.PasswordHash) > 0 {
		hash = patch.PasswordHash
	}
	updated, err := scanUser(s.pool.QueryRow(ctx, query, patch.Username, patch.Email, hash, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}
