package httpserver

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/snowcode-jp/ljc-server/internal/api"
)

// bearerAuth wraps next with the bearer-token check spec §4.F requires on
// every protected route: extract "Authorization: Bearer <token>", compare
// in constant time against the process token, 401 on mismatch. Grounded on
// the same subtle.ConstantTimeCompare discipline wsrelay.register uses for
// the socket registration frame's token.
func bearerAuth(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, prefix) {
			api.WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		presented := strings.TrimPrefix(header, prefix)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			api.WriteError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// apiCORS is the CORS policy spec §4.F restricts to /api/* routes: GET,
// POST, OPTIONS; Content-Type and Authorization headers; origins limited
// to the two loopback forms the bundled desktop UI runs from on port
// 17100. The /webdav/ subtree never passes through this — it is mounted
// separately so the host's file browser gets a raw DAV OPTIONS reply.
func apiCORS() func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:17100", "http://127.0.0.1:17100"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler
}
