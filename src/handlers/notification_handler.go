package handlers

import (
	"net/http"

	"fingenius-server/src/apperr"
	"fingenius-server/src/middleware"
	"fingenius-server/src/notify"
	"fingenius-server/src/util"

	"github.com/rs/zerolog/log"
)

func GetNotifications(deriver *notify.Deriver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		notifications, err := deriver.Notifications(r.Context(), userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to derive notifications")
			util.WriteError(w, apperr.Internal("Failed to load notifications", err))
			return
		}
		util.WriteJSON(w, http.StatusOK, notifications)
	}
}
