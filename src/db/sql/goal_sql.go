package db

import (
	"context"

	"fingenius-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *PostgresStore) GetGoal(ctx context.Context, userID uuid.UUID) (*models.Goal, error) {
	query := `
		SELECT id, user_id, monthly_budget, created_at, updated_at
		FROM goals WHERE user_id = $1
	`
	var g models.Goal
	err := s.pool.QueryRow(ctx, query, userID).
		Scan(&g.ID, &g.UserID, &g.MonthlyBudget, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

// UpsertGoal relies on the unique user_id constraint so concurrent calls
// still leave exactly one goal per user.
func (s *PostgresStore) UpsertGoal(ctx context.Context, userID uuid.UUID, monthlyBudget decimal.Decimal) (*models.Goal, error) {
	query := `
		INSERT INTO goals (id, user_id, monthly_budget)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET monthly_budget = EXCLUDED.monthly_budget, updated_at = NOW()
		RETURNING id, user_id, monthly_budget, created_at, updated_at
	`
	var g models.Goal
	err := s.pool.QueryRow(ctx, query, uuid.New(), userID, monthlyBudget).
		Scan(&g.ID, &g.UserID, &g.MonthlyBudget, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
