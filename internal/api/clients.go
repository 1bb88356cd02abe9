package api

import (
	"net/http"
	"time"

	"github.com/snowcode-jp/ljc-server/internal/hub"
)

type clientView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	FolderName  string    `json:"folder_name"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Clients implements GET /api/clients (spec §6).
func Clients(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoints := h.List()
		views := make([]clientView, 0, len(endpoints))
		for _, ep := range endpoints {
			views = append(views, clientView{
				ID:          ep.ID,
				Name:        ep.Name,
				FolderName:  ep.FolderName,
				ConnectedAt: ep.ConnectedAt,
			})
		}
		WriteJSON(w, http.StatusOK, views)
	}
}
