// Package memory is a process-local Store used for development and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"fingenius-server/src/db"
	"fingenius-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu           sync.Mutex
	transactions []models.Transaction
	goals        map[uuid.UUID]models.Goal
	users        map[uuid.UUID]models.User
	now          func() time.Time
}

var _ db.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		goals: make(map[uuid.UUID]models.Goal),
		users: make(map[uuid.UUID]models.User),
		now:   time.Now,
	}
}

func (s *Store) Close() {}

func (s *Store) CreateTransaction(_ context.Context, t *models.Transaction) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *t
	created.ID = uuid.New()
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.transactions = append(s.transactions, created)
	return &created, nil
}

func (s *Store) ListTransactions(_ context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	return s.filter(func(t models.Transaction) bool { return t.UserID == userID }), nil
}

func (s *Store) ListTransactionsBetween(_ context.Context, userID uuid.UUID, typ string, from, to time.Time) ([]models.Transaction, error) {
	return s.filter(func(t models.Transaction) bool {
		return t.UserID == userID && t.Type == typ && !t.Date.Before(from) && t.Date.Before(to)
	}), nil
}

func (s *Store) ListTransactionsSince(_ context.Context, userID uuid.UUID, typ string, from time.Time) ([]models.Transaction, error) {
	return s.filter(func(t models.Transaction) bool {
		return t.UserID == userID && t.Type == typ && !t.Date.Before(from)
	}), nil
}

func (s *Store) RecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	txns, _ := s.ListTransactions(ctx, userID)
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

func (s *Store) filter(keep func(models.Transaction) bool) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Transaction{}
	for _, t := range s.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	models.SortByDateDesc(out)
	return out
}

// find must be called with mu held.
func (s *Store) find(userID, id uuid.UUID) (int, error) {
	for i, t := range s.transactions {
		if t.ID != id {
			continue
		}
		if t.UserID != userID {
			return -1, db.ErrNotOwner
		}
		return i, nil
	}
	return -1, db.ErrNotFound
}

func (s *Store) UpdateTransaction(_ context.Context, userID, id uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.find(userID, id)
	if err != nil {
		return nil, err
	}
	t := s.transactions[i]
	t.Apply(patch)
	t.UpdatedAt = s.now()
	s.transactions[i] = t
	return &t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.find(userID, id)
	if err != nil {
		return err
	}
	s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
	return nil
}

func (s *Store) GetGoal(_ context.Context, userID uuid.UUID) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &g, nil
}

func (s *Store) UpsertGoal(_ context.Context, userID uuid.UUID, monthlyBudget decimal.Decimal) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	g, ok := s.goals[userID]
	if !ok {
		g = models.Goal{ID: uuid.New(), UserID: userID, CreatedAt: now}
	}
	g.MonthlyBudget = monthlyBudget
	g.UpdatedAt = now
	s.goals[userID] = g
	return &g, nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return nil, db.ErrDuplicate
		}
	}
	created := *u
	created.ID = uuid.New()
	if created.Role == "" {
		created.Role = "user"
	}
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.users[created.ID] = created
	return &created, nil
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	for otherID, other := range s.users {
		if otherID == id {
			continue
		}
		if (patch.Email != "" && strings.EqualFold(other.Email, patch.Email)) ||
			(patch.Username != "" && other.Username == patch.Username) {
			return nil, db.ErrDuplicate
		}
	}
	u.Apply(patch)
	u.UpdatedAt = s.now()
	s.users[id] = u
	return &u, nil
}
