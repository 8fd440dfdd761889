package handlers

import (
	"errors"
	"net/http"

	"fingenius-server/src/apperr"
	"fingenius-server/src/db"
	"fingenius-server/src/middleware"
	"fingenius-server/src/util"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GetGoal responds with the caller's goal, or null when none is set.
func GetGoal(store db.GoalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		goal, err := store.GetGoal(r.Context(), userID)
		if errors.Is(err, db.ErrNotFound) {
			util.WriteJSON(w, http.StatusOK, nil)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get goal")
			util.WriteError(w, storeError(err, "Goal not found"))
			return
		}
		util.WriteJSON(w, http.StatusOK, goal)
	}
}

func SetGoal(store db.GoalStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req struct {
			MonthlyBudget *decimal.Decimal `json:"monthlyBudget"`
		}
		if err := decodeBody(r, &req); err != nil {
			util.WriteError(w, err)
			return
		}
		if req.MonthlyBudget == nil {
			util.WriteError(w, apperr.Validation("Please provide a monthlyBudget"))
			return
		}
		if req.MonthlyBudget.IsNegative() {
			util.WriteError(w, apperr.Validation("Monthly budget cannot be negative"))
			return
		}

		goal, err := store.UpsertGoal(r.Context(), userID, *req.MonthlyBudget)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to set goal")
			util.WriteError(w, storeError(err, "Goal not found"))
			return
		}

		log.Info().Str("user_id", userID.String()).Str("monthly_budget", goal.MonthlyBudget.String()).Msg("goal set")
		util.WriteJSON(w, http.StatusOK, goal)
	}
}
