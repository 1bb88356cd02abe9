// Package api implements the protected and public HTTP handlers from
// spec §6's surface table: client listing, command relay, mount control
// delegation, and the out-of-core landing/connect-html stubs (SPEC_FULL
// §C). Response shaping follows the teacher's internal/api Respond*
// naming convention, adapted from fiber's c.JSON to plain net/http.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSON writes body as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes the {"error": "<human string>"} shape spec §6
// specifies for every api/* error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
