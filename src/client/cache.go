package client

import (
	"context"
	"slices"
	"sync"

	"fingenius-server/src/models"
	"fingenius-server/src/stats"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Backend is the subset of the API the cache needs. *Client satisfies it.
type Backend interface {
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	GetGoal(ctx context.Context) (*models.Goal, error)
	CreateTransaction(ctx context.Context, in TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id uuid.UUID, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	SetGoal(ctx context.Context, monthlyBudget decimal.Decimal) (*models.Goal, error)
}

// Snapshot is a copy of the cache state. Callers may keep and modify it.
type Snapshot struct {
	Transactions []models.Transaction
	Stats        models.Stats
	ByCategory   []models.CategoryTotal
	Goal         *models.Goal
	Loading      bool
}

// Cache is the session's working copy of transactions, stats and goal.
// Its methods are the only write path. Local state changes only after the
// server has accepted the corresponding call.
type Cache struct {
	backend Backend

	mu           sync.RWMutex
	transactions []models.Transaction
	stats        models.Stats
	goal         *models.Goal
	loading      bool
	// generation identifies the latest Load; older loads discard their results.
	generation uint64
}

func NewCache(backend Backend) *Cache {
	return &Cache{backend: backend}
}

// Load fetches transactions and goal concurrently and replaces the cached
// state only if both succeed. A Load superseded by a later one changes
// nothing when it completes.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.loading = true
	c.mu.Unlock()

	var (
		txns []models.Transaction
		goal *models.Goal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = c.backend.ListTransactions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		goal, err = c.backend.GetGoal(gctx)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		log.Debug().Uint64("generation", gen).Msg("discarding stale load")
		return err
	}
	c.loading = false
	if err != nil {
		log.Error().Err(err).Msg("failed to load data")
		return err
	}
	c.transactions = txns
	c.goal = goal
	c.refresh()
	return nil
}

// AddTransaction merges a record the server has already created.
func (c *Cache) AddTransaction(t models.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactions = append(c.transactions, t)
	c.refresh()
}

func (c *Cache) Create(ctx context.Context, in TransactionInput) (*models.Transaction, error) {
	t, err := c.backend.CreateTransaction(ctx, in)
	if err != nil {
		return nil, err
	}
	c.AddTransaction(*t)
	return t, nil
}

// UpdateTransaction replaces the cached record with the same id by a record
// the server has already updated.
func (c *Cache) UpdateTransaction(t models.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.transactions {
		if c.transactions[i].ID == t.ID {
			c.transactions[i] = t
			break
		}
	}
	c.refresh()
}

func (c *Cache) Update(ctx context.Context, id uuid.UUID, in TransactionInput) (*models.Transaction, error) {
	t, err := c.backend.UpdateTransaction(ctx, id, in)
	if err != nil {
		return nil, err
	}
	c.UpdateTransaction(*t)
	return t, nil
}

// Remove deletes on the server first. On failure the cache is untouched.
func (c *Cache) Remove(ctx context.Context, id uuid.UUID) error {
	if err := c.backend.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactions = slices.DeleteFunc(c.transactions, func(t models.Transaction) bool {
		return t.ID == id
	})
	c.refresh()
	return nil
}

func (c *Cache) SetGoal(ctx context.Context, monthlyBudget decimal.Decimal) (*models.Goal, error) {
	g, err := c.backend.SetGoal(ctx, monthlyBudget)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.goal = g
	c.mu.Unlock()
	return g, nil
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Transactions: slices.Clone(c.transactions),
		Stats:        c.stats,
		ByCategory:   stats.ByCategory(c.transactions),
		Loading:      c.loading,
	}
	if c.goal != nil {
		g := *c.goal
		s.Goal = &g
	}
	return s
}

// refresh re-sorts and recomputes stats from scratch. Must be called with mu held.
func (c *Cache) refresh() {
	models.SortByDateDesc(c.transactions)
	c.stats = stats.Compute(c.transactions)
}
