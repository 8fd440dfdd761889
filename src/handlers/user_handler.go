package handlers

import (
	"errors"
	"net/http"
	"strings"

	"fingenius-server/src/apperr"
	"fingenius-server/src/db"
	"fingenius-server/src/middleware"
	"fingenius-server/src/models"
	"fingenius-server/src/util"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func GetProfile(users db.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		user, err := users.GetUserByID(r.Context(), userID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to get profile")
			util.WriteError(w, storeError(err, "User not found"))
			return
		}
		util.WriteJSON(w, http.StatusOK, user)
	}
}

// UpdateProfile changes the caller's username, email or password. Empty
// fields keep their current value. The response carries a fresh token.
func UpdateProfile(users db.UserStore, auth *middleware.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req models.RegisterRequest
		if err := decodeBody(r, &req); err != nil {
			util.WriteError(w, err)
			return
		}

		patch := models.UserPatch{
			Username: strings.TrimSpace(req.Username),
			Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		}
		if patch.Email != "" && !util.ValidateEmail(patch.Email) {
			util.WriteError(w, apperr.Validation("Please include a valid email"))
			return
		}
		if req.Password != "" {
			if !util.ValidatePassword(req.Password) {
				util.WriteError(w, apperr.Validation("Password must be 6 or more characters"))
				return
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to hash password")
				util.WriteError(w, apperr.Internal("internal server error", err))
				return
			}
			patch.PasswordHash = hashed
		}

		updated, err := users.UpdateUser(r.Context(), userID, patch)
		if errors.Is(err, db.ErrDuplicate) {
			util.WriteError(w, apperr.Validation("User already exists"))
			return
		}
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to update profile")
			util.WriteError(w, storeError(err, "User not found"))
			return
		}

		token, err := auth.IssueToken(updated.ID, updated.Username)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to issue token")
			util.WriteError(w, apperr.Internal("Error generating token", err))
			return
		}

		log.Info().Str("user_id", userID.String()).Msg("profile updated")
		util.WriteJSON(w, http.StatusOK, map[string]string{
			"id":       updated.ID.String(),
			"username": updated.Username,
			"email":    updated.Email,
			"token":    token,
		})
	}
}
