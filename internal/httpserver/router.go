package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snowcode-jp/ljc-server/internal/api"
	"github.com/snowcode-jp/ljc-server/internal/hub"
	"github.com/snowcode-jp/ljc-server/internal/mountctl"
	"github.com/snowcode-jp/ljc-server/internal/webdavhttp"
	"github.com/snowcode-jp/ljc-server/internal/wsrelay"
)

// NewRouter builds the single router both the plaintext and TLS listeners
// serve (spec §4.F: "Two listeners bound to the same address... Both
// serve the same router").
func NewRouter(h *hub.Hub, mounts *mountctl.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Get("/", api.Landing)
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := wsrelay.Upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		wsrelay.Handle(req.Context(), h, conn, h.Token())
	})
	r.Get("/api/connect-html", api.ConnectHTML)

	r.Group(func(r chi.Router) {
		r.Use(apiCORS())
		r.Use(func(next http.Handler) http.Handler {
			return bearerAuth(h.Token(), next)
		})

		r.Get("/api/clients", api.Clients(h))
		r.Post("/api/relay/{clientID}", api.Relay(h))
		r.Post("/api/mount", mounts.Mount)
		r.Post("/api/unmount", mounts.Unmount)
		r.Get("/api/mounts", mounts.Mounts)
	})

	dav := webdavhttp.New(h)
	r.Handle("/webdav/{clientID}", dav)
	r.Handle("/webdav/{clientID}/*", dav)

	return r
}
