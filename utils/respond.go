package utils

import (
	"encoding/json"
	"net/http"
)

// OK writes a {success:true, ...} JSON response with the given extra fields.
func OK(w http.ResponseWriter, extra map[string]any) {
	payload := map[string]any{"success": true}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSON(w, http.StatusOK, payload)
}

// Fail writes a {success:false, message, error?} JSON response.
func Fail(w http.ResponseWriter, status int, message string, err error) {
	payload := map[string]any{
		"success": false,
		"message": message,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
