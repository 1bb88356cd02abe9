package api

import (
	"fmt"
	"net/http"
)

const landingPageHTML = `<!DOCTYPE html>
<html>
<head><title>LJC Relay</title></head>
<body>
<h1>LJC Relay</h1>
<p>This host is running the LAN file-sharing relay. Connect a client over
the socket at <code>/ws</code>, or download a ready-made connect page at
<code>/api/connect-html?ip=&amp;port=</code>.</p>
</body>
</html>
`

// Landing implements GET / (spec §6): a static, unauthenticated page. It
// deliberately does not reproduce the original browser-side directory
// picker — that logic is out of scope (SPEC_FULL §C).
func Landing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(landingPageHTML))
}

// ConnectHTML implements GET /api/connect-html?ip=&port= (spec §6): a
// downloadable HTML attachment pre-filled with the host's IP/port, so a
// remote client can open it and find this relay's socket address without
// having to be told it out of band.
func ConnectHTML(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	port := r.URL.Query().Get("port")

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Connect to LJC Relay</title></head>
<body>
<h1>Connect to LJC Relay</h1>
<p>Socket address: <code>ws://%s:%s/ws</code></p>
</body>
</html>
`, ip, port)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="connect.html"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
