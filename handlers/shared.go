package handlers

import (
	"encoding/json"
	"net/http"

	"streakpick-go/logging"
)

// writeJSON serializes a response body with the standard headers
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Errorf("Failed to encode response: %v", err)
	}
}

// writeError serializes an error response as {"error": "..."}
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
