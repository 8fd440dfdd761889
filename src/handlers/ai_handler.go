package handlers

import (
	"net/http"

	"fingenius-server/src/insights"
	"fingenius-server/src/middleware"
	"fingenius-server/src/util"
)

// GetInsights accepts an optional ?question= to steer the commentary.
func GetInsights(svc *insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		text, err := svc.Insights(r.Context(), userID, r.URL.Query().Get("question"))
		if err != nil {
			util.WriteError(w, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, map[string]string{"insights": text})
	}
}
