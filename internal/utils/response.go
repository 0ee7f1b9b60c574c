package utils

import (
	"encoding/json"
	"net/http"

	"jobmate/interview/internal/models"
)

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a failure Resp with the given message.
func WriteError(w http.ResponseWriter, statusCode int, info string) {
	WriteJSON(w, statusCode, models.Resp{OK: false, Info: info})
}
