package mountctl

import (
	"encoding/json"
	"net/http"

	"github.com/snowcode-jp/ljc-server/internal/api"
	"github.com/snowcode-jp/ljc-server/internal/config"
	"github.com/snowcode-jp/ljc-server/internal/hub"
	"github.com/snowcode-jp/ljc-server/internal/validate"
)

// Handlers wires the three mount-control endpoints (spec §4.G) to a Hub
// (to check the endpoint exists) and a Config (for the allowed base and
// the plaintext/TLS ports the mounted URL targets).
type Handlers struct {
	Hub     *hub.Hub
	Config  *config.Config
	Mounter *Mounter
}

// NewHandlers builds Handlers with a real Mounter.
func NewHandlers(h *hub.Hub, cfg *config.Config) *Handlers {
	return &Handlers{Hub: h, Config: cfg, Mounter: NewMounter()}
}

type mountRequest struct {
	ClientID  string `json:"client_id"`
	MountPath string `json:"mount_path"`
}

// Mount implements POST /api/mount (spec §4.G, §6).
func (h *Handlers) Mount(w http.ResponseWriter, r *http.Request) {
	var req mountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	if !validate.IsUUID(req.ClientID) {
		api.WriteError(w, http.StatusBadRequest, "client_id must be a UUID")
		return
	}

	if _, err := ValidateMountPath(h.Config.AllowedMountBase, req.MountPath); err != nil {
		api.WriteError(w, http.StatusForbidden, err.Error())
		return
	}

	if _, ok := h.Hub.Get(req.ClientID); !ok {
		api.WriteError(w, http.StatusNotFound, "no such connected endpoint")
		return
	}

	expandedBase, err := config.ExpandTilde(h.Config.AllowedMountBase)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	mountPoint := mountPointFor(expandedBase, req.ClientID)

	actualMountPoint, webdavURL, err := h.Mounter.Mount(r.Context(), h.Config.Port, h.Config.TLSPort(), req.ClientID, mountPoint)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"mount_point": actualMountPoint,
		"webdav_url":  webdavURL,
	})
}

type unmountRequest struct {
	MountPath string `json:"mount_path"`
}

// Unmount implements POST /api/unmount (spec §4.G, §6).
func (h *Handlers) Unmount(w http.ResponseWriter, r *http.Request) {
	var req unmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	validated, err := ValidateUnmountPath(h.Config.AllowedMountBase, req.MountPath)
	if err != nil {
		api.WriteError(w, http.StatusForbidden, err.Error())
		return
	}

	if err := Unmount(r.Context(), validated); err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"mount_path": validated,
	})
}

// Mounts implements GET /api/mounts (spec §4.G, §6).
func (h *Handlers) Mounts(w http.ResponseWriter, r *http.Request) {
	entries, err := List(r.Context(), h.Config.Port, h.Config.TLSPort())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, entries)
}
