package db

import (
	"context"
	"errors"
	"time"

	"fingenius-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNotOwner  = errors.New("not owner")
	ErrDuplicate = errors.New("duplicate")
)

// TransactionStore persists transactions. Update and Delete check ownership
// against the same record they modify.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	// ListTransactionsBetween returns the owner's transactions of type typ
	// with from <= date < to, most recent first.
	ListTransactionsBetween(ctx context.Context, userID uuid.UUID, typ string, from, to time.Time) ([]models.Transaction, error)
	// ListTransactionsSince is ListTransactionsBetween without an upper
	// bound, so future-dated entries are included.
	ListTransactionsSince(ctx context.Context, userID uuid.UUID, typ string, from time.Time) ([]models.Transaction, error)
	RecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
}

type GoalStore interface {
	// GetGoal returns ErrNotFound when the user has not set a goal yet.
	GetGoal(ctx context.Context, userID uuid.UUID) (*models.Goal, error)
	UpsertGoal(ctx context.Context, userID uuid.UUID, monthlyBudget decimal.Decimal) (*models.Goal, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error)
}

type Store interface {
	TransactionStore
	GoalStore
	UserStore
	Close()
}
