// Package insights produces AI-written commentary on a user's recent
// transactions through a pluggable text-generation backend.
package insights

import (
	"context"
	"errors"
	"net/http"

	"fingenius-server/src/apperr"
	"fingenius-server/src/db"
	"fingenius-server/src/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	NoTransactionsMessage = "No transactions found. Add some transactions to get AI insights."
	busyMessage           = "AI service is busy, please try again later"
)

// Generator writes financial commentary for a window of transactions. The
// question may be empty.
//
//go:generate mockgen -destination=mocks/mock_generator.go -source=insights.go Generator
type Generator interface {
	Generate(ctx context.Context, window []models.Transaction, question string) (string, error)
}

// UpstreamError is returned by generators when the backend rejects or fails
// a request. Overloaded marks rate limiting or temporary unavailability.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Overloaded bool
	Err        error
}

func (e *UpstreamError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// OverloadedStatus reports whether an upstream HTTP status means "try later".
func OverloadedStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

type Service struct {
	store     db.TransactionStore
	generator Generator
	cache     *db.InsightCache
	window    int
}

func NewService(store db.TransactionStore, generator Generator, cache *db.InsightCache, window int) *Service {
	return &Service{store: store, generator: generator, cache: cache, window: window}
}

// Insights returns commentary on the user's most recent transactions.
// Generator failures are not retried.
func (s *Service) Insights(ctx context.Context, userID uuid.UUID, question string) (string, error) {
	if cached, ok := s.cache.Get(userID, question); ok {
		return cached, nil
	}

	gen := s.cache.Generation(userID)
	window, err := s.store.RecentTransactions(ctx, userID, s.window)
	if err != nil {
		return "", apperr.Internal("failed to load transactions", err)
	}
	if len(window) == 0 {
		return NoTransactionsMessage, nil
	}

	text, err := s.generator.Generate(ctx, window, question)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("insight generation failed")
		return "", toAppError(err)
	}
	if text == "" {
		text = "Could not generate insights at this time."
	} else if !s.cache.SetIfCurrent(userID, question, text, gen) {
		log.Debug().Str("user_id", userID.String()).Msg("transactions changed during generation, not caching")
	}
	return text, nil
}

// Disabled is the generator used when no backend is configured.
type Disabled struct{}

var errNotConfigured = errors.New("AI service is not configured")

func (Disabled) Generate(context.Context, []models.Transaction, string) (string, error) {
	return "", &UpstreamError{Provider: "none", Err: errNotConfigured}
}

// Forget drops cached insights for a user whose transactions changed.
func (s *Service) Forget(userID uuid.UUID) {
	if s == nil {
		return
	}
	s.cache.Invalidate(userID)
}

func toAppError(err error) error {
	var up *UpstreamError
	if errors.As(err, &up) {
		if up.Overloaded {
			return apperr.Upstream(http.StatusServiceUnavailable, busyMessage, err)
		}
		return apperr.Upstream(http.StatusInternalServerError, "AI Service Error: "+up.Err.Error(), err)
	}
	return apperr.Upstream(http.StatusInternalServerError,
		"Failed to communicate with AI service due to an internal server error.", err)
}
