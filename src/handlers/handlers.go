package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fingenius-server/src/apperr"
	"fingenius-server/src/db"
)

const invalidBody = "Invalid request body"

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation(invalidBody)
	}
	return nil
}

// storeError translates store sentinels into caller-facing errors.
func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, db.ErrNotOwner):
		return apperr.Authorization("User not authorized")
	default:
		return apperr.Internal("internal server error", err)
	}
}
