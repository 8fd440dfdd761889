package util

import (
	"encoding/json"
	"net/http"

	"fingenius-server/src/apperr"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes err as {"message": ...} with the status of its kind.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperr.StatusCode(err), map[string]string{"message": apperr.Message(err)})
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}
