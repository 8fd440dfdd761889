package db

import (
	"context"
	"fmt"
	"time"

	"fingenius-server/src/db"
	"fingenius-server/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, user_id, type, category, amount, date, description, created_at, updated_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Category, &t.Amount, &t.Date, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (s *PostgresStore) CreateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (id, user_id, type, category, amount, date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + transactionColumns
	created, err := scanTransaction(s.pool.QueryRow(ctx, query,
		uuid.New(), t.UserID, t.Type, t.Category, t.Amount, t.Date, t.Description))
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE user_id = $1
		ORDER BY date DESC, created_at ASC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (s *PostgresStore) ListTransactionsBetween(ctx context.Context, userID uuid.UUID, typ string, from, to time.Time) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND type = $2 AND date >= $3 AND date < $4
		ORDER BY date DESC, created_at ASC
	`
	rows, err := s.pool.Query(ctx, query, userID, typ, from, to)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (s *PostgresStore) ListTransactionsSince(ctx context.Context, userID uuid.UUID, typ string, from time.Time) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND type = $2 AND date >= $3
		ORDER BY date DESC, created_at ASC
	`
	rows, err := s.pool.Query(ctx, query, userID, typ, from)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (s *PostgresStore) RecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE user_id = $1
		ORDER BY date DESC, created_at ASC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// lockTransaction fetches the row with FOR UPDATE so the ownership check
// and the following write see the same record.
func lockTransaction(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	t, err := scanTransaction(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr(err)
	}
	if t.UserID != userID {
		return nil, db.ErrNotOwner
	}
	return t, nil
}

func (s *PostgresStore) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := lockTransaction(ctx, tx, userID, id)
	if err != nil {
		return nil, err
	}
	t.Apply(patch)

	query := `
		UPDATE transactions
		SET type = $1, category = $2, amount = $3, date = $4, description = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + transactionColumns
	updated, err := scanTransaction(tx.QueryRow(ctx, query, t.Type, t.Category, t.Amount, t.Date, t.Description, id))
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PostgresStore) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := lockTransaction(ctx, tx, userID, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return tx.Commit(ctx)
}
