package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snowcode-jp/ljc-server/internal/hub"
	"github.com/snowcode-jp/ljc-server/internal/validate"
)

// Relay implements POST /api/relay/{client-id} (spec §6): forwards an
// arbitrary JSON command to the named endpoint and returns its response
// verbatim, translating Hub's typed errors to the status codes spec §6's
// taxonomy assigns them.
func Relay(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := chi.URLParam(r, "clientID")
		if !validate.IsUUID(clientID) {
			WriteError(w, http.StatusBadRequest, "client id must be a UUID")
			return
		}

		var command map[string]any
		if err := json.NewDecoder(r.Body).Decode(&command); err != nil {
			WriteError(w, http.StatusBadRequest, "malformed JSON body")
			return
		}

		response, err := h.Send(r.Context(), clientID, command)
		if err != nil {
			WriteError(w, statusForRelayError(err), err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, response)
	}
}

func statusForRelayError(err error) int {
	switch {
	case errors.Is(err, hub.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, hub.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, hub.ErrBadGateway):
		return http.StatusBadGateway
	case errors.Is(err, hub.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, hub.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, hub.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, hub.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
