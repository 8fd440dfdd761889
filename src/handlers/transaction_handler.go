package handlers

import (
	"net/http"

	"fingenius-server/src/apperr"
	"fingenius-server/src/db"
	"fingenius-server/src/insights"
	"fingenius-server/src/middleware"
	"fingenius-server/src/models"
	"fingenius-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type transactionRequest struct {
	Type        string           `json:"type"`
	Category    string           `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
}

func CreateTransaction(store db.TransactionStore, insightSvc *insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req transactionRequest
		if err := decodeBody(r, &req); err != nil {
			util.WriteError(w, err)
			return
		}

		if req.Type == "" || req.Category == "" || req.Amount == nil || req.Amount.IsZero() || req.Date == "" {
			util.WriteError(w, apperr.Validation("Please provide all required fields"))
			return
		}
		if !models.ValidType(req.Type) {
			util.WriteError(w, apperr.Validation("Type must be income or expense"))
			return
		}
		if !req.Amount.IsPositive() {
			util.WriteError(w, apperr.Validation("Amount must be greater than zero"))
			return
		}
		date, err := util.ParseDate(req.Date)
		if err != nil {
			util.WriteError(w, err)
			return
		}

		created, err := store.CreateTransaction(r.Context(), &models.Transaction{
			UserID:      userID,
			Type:        req.Type,
			Category:    req.Category,
			Amount:      *req.Amount,
			Date:        date,
			Description: req.Description,
		})
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to create transaction")
			util.WriteError(w, storeError(err, "Transaction not found"))
			return
		}
		insightSvc.Forget(userID)

		log.Info().Str("user_id", userID.String()).Str("transaction_id", created.ID.String()).Msg("transaction created")
		util.WriteJSON(w, http.StatusCreated, created)
	}
}

func GetTransactions(store db.TransactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		txns, err := store.ListTransactions(r.Context(), userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list transactions")
			util.WriteError(w, storeError(err, "Transaction not found"))
			return
		}
		util.WriteJSON(w, http.StatusOK, txns)
	}
}

// UpdateTransaction applies a partial update. Empty or zero fields keep the
// stored value.
func UpdateTransaction(store db.TransactionStore, insightSvc *insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		id, err := util.ParseID(chi.URLParam(r, "id"), "transaction")
		if err != nil {
			util.WriteError(w, err)
			return
		}

		var req transactionRequest
		if err := decodeBody(r, &req); err != nil {
			util.WriteError(w, err)
			return
		}

		patch, err := req.patch()
		if err != nil {
			util.WriteError(w, err)
			return
		}

		updated, err := store.UpdateTransaction(r.Context(), userID, id, patch)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("failed to update transaction")
			util.WriteError(w, storeError(err, "Transaction not found"))
			return
		}
		insightSvc.Forget(userID)

		util.WriteJSON(w, http.StatusOK, updated)
	}
}

func DeleteTransaction(store db.TransactionStore, insightSvc *insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		id, err := util.ParseID(chi.URLParam(r, "id"), "transaction")
		if err != nil {
			util.WriteError(w, err)
			return
		}

		if err := store.DeleteTransaction(r.Context(), userID, id); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("failed to delete transaction")
			util.WriteError(w, storeError(err, "Transaction not found"))
			return
		}
		insightSvc.Forget(userID)

		log.Info().Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("transaction removed")
		util.WriteMessage(w, http.StatusOK, "Transaction removed")
	}
}

func (req transactionRequest) patch() (models.TransactionPatch, error) {
	var p models.TransactionPatch
	if req.Type != "" {
		if !models.ValidType(req.Type) {
			return p, apperr.Validation("Type must be income or expense")
		}
		p.Type = &req.Type
	}
	if req.Category != "" {
		p.Category = &req.Category
	}
	if req.Amount != nil && !req.Amount.IsZero() {
		if !req.Amount.IsPositive() {
			return p, apperr.Validation("Amount must be greater than zero")
		}
		p.Amount = req.Amount
	}
	if req.Date != "" {
		date, err := util.ParseDate(req.Date)
		if err != nil {
			return p, err
		}
		p.Date = &date
	}
	if req.Description != "" {
		p.Description = &req.Description
	}
	return p, nil
}
