// Package webdavhttp wires the WebDAV adapter (internal/webdavfs) into
// the HTTP front door: per-client-id prefix stripping, the OPTIONS
// short-circuit, the COPY NotImplemented stub, the 500→404 downgrade, and
// the DAV/WWW-Authenticate header discipline (spec §4.E, §4.F), grounded
// on the teacher's internal/webdav/server.go wrapping of golang.org/x/net
// /webdav.Handler and on original_source/server/src/webdav_bridge.rs's
// webdav_handler for the exact ordering of checks.
package webdavhttp

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/webdav"

	"github.com/snowcode-jp/ljc-server/internal/hub"
	"github.com/snowcode-jp/ljc-server/internal/validate"
	"github.com/snowcode-jp/ljc-server/internal/webdavfs"
)

// davAllow is the verb list advertised on OPTIONS, matching spec §8's
// end-to-end scenario 3 ("Allow containing PROPFIND") and the Rust
// prototype's full list.
const davAllow = "OPTIONS, GET, HEAD, POST, PUT, DELETE, MKCOL, COPY, MOVE, PROPFIND, PROPPATCH, LOCK, UNLOCK"

// Handler serves everything under /webdav/{clientID}/... (spec §4.F
// fallback route).
type Handler struct {
	hub     *hub.Hub
	handler *webdav.Handler
}

// New builds the WebDAV HTTP bridge. A single golang.org/x/net/webdav
// .Handler serves every connected client; per-request dispatch happens
// through the endpoint id stashed in the request context by ServeHTTP.
func New(h *hub.Hub) *Handler {
	return &Handler{
		hub: h,
		handler: &webdav.Handler{
			FileSystem: webdavfs.New(h),
			LockSystem: webdav.NewMemLS(),
			Logger: func(r *http.Request, err error) {
				if slot := lastErrFrom(r.Context()); slot != nil {
					*slot = err
				}
			},
		},
	}
}

type lastErrKey struct{}

// withLastErr attaches a slot the DAV library's Logger callback fills in
// with the request's terminal error, if any. webdav.Handler.ServeHTTP
// calls WriteHeader before invoking Logger, so statusRewriter can't read
// this at WriteHeader time — it defers a literal 500 until finish.
func withLastErr(ctx context.Context, slot *error) context.Context {
	return context.WithValue(ctx, lastErrKey{}, slot)
}

func lastErrFrom(ctx context.Context) *error {
	slot, _ := ctx.Value(lastErrKey{}).(*error)
	return slot
}

// ServeHTTP implements the ordering the original webdav_handler uses:
// validate the client id, short-circuit OPTIONS and COPY before touching
// the endpoint table, then require the endpoint to be connected.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")

	if !validate.IsUUID(clientID) {
		http.NotFound(w, r)
		return
	}

	rw := &statusRewriter{ResponseWriter: w}

	// OPTIONS short-circuit must happen before the endpoint-existence
	// check (spec §4.F) so the host's file browser can probe capabilities
	// even when nothing has ever connected (spec §8).
	if r.Method == http.MethodOptions {
		rw.Header().Set("DAV", "1, 2")
		rw.Header().Set("Allow", davAllow)
		rw.Header().Set("MS-Author-Via", "DAV")
		rw.Header().Set("Content-Length", "0")
		rw.WriteHeader(http.StatusOK)
		return
	}

	// Copy across the virtual filesystem is an explicit Non-goal (spec §1,
	// §4.E table: "copy — always NotImplemented").
	if r.Method == "COPY" {
		rw.WriteHeader(http.StatusNotImplemented)
		return
	}

	if _, ok := h.hub.Get(clientID); !ok {
		http.NotFound(w, r)
		return
	}

	// Forwarded requests never carry the bearer token — the host's file
	// browser doesn't send one, and passing one through would only
	// trigger a credential prompt (spec §4.E header discipline).
	r.Header.Del("Authorization")

	r.URL.Path = stripClientPrefix(r.URL.Path, clientID)
	// MOVE's Destination names a path under the same prefix; strip it too
	// so Rename receives two paths rooted the same way.
	if dest := r.Header.Get("Destination"); dest != "" {
		if u, err := url.Parse(dest); err == nil {
			u.Path = stripClientPrefix(u.Path, clientID)
			u.RawPath = ""
			r.Header.Set("Destination", u.String())
		}
	}
	ctx := webdavfs.WithEndpointID(r.Context(), clientID)
	var lastErr error
	ctx = withLastErr(ctx, &lastErr)
	r = r.WithContext(ctx)

	h.handler.ServeHTTP(rw, r)
	rw.finish(lastErr)
}

// stripClientPrefix removes "/webdav/{clientID}" from a request path,
// leaving a rooted path the adapter layer can hand straight to the DAV
// library (spec §4.E: "The prefix /webdav/{client-id} is stripped by the
// adapter layer before the verb reaches the filesystem interface").
func stripClientPrefix(path, clientID string) string {
	prefix := "/webdav/" + clientID
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		return "/"
	}
	return rest
}

// statusRewriter downgrades 500→404 when the path was plausibly missing
// (spec §4.E: "If the DAV library returns 500... the adapter layer
// rewrites the status to 404... because the host's file browser issues
// many probing verbs for hidden metadata files"), and attaches the DAV
// header discipline to every response, success or failure.
//
// webdav.Handler writes the status before it calls Logger with the
// request's error, so a literal 500 can't be judged at WriteHeader time —
// it's held back (body included, since the DAV library's only caller of
// WriteHeader(500) is its own "status != 0" bridge, which always follows
// with a short StatusText body) until finish reports what Logger saw.
type statusRewriter struct {
	http.ResponseWriter
	wroteHeader bool
	pending500  bool
}

func (s *statusRewriter) WriteHeader(status int) {
	if s.wroteHeader || s.pending500 {
		return
	}

	s.Header().Del("WWW-Authenticate")
	s.Header().Set("DAV", "1, 2")

	if status == http.StatusInternalServerError {
		s.pending500 = true
		return
	}
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRewriter) Write(b []byte) (int, error) {
	if s.pending500 {
		// Discard the DAV library's "Internal Server Error" body; finish
		// will write the resolved status's own text instead.
		return len(b), nil
	}
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

// finish resolves a deferred 500 once the request's terminal error (from
// webdav.Handler's Logger) is known. A 500 is downgraded to 404 only when
// that error looks like a missing path; anything else (or no captured
// error at all) surfaces as the literal 500.
func (s *statusRewriter) finish(err error) {
	if !s.pending500 {
		return
	}
	s.pending500 = false
	s.wroteHeader = true

	status := http.StatusInternalServerError
	if os.IsNotExist(err) {
		status = http.StatusNotFound
	}
	s.ResponseWriter.WriteHeader(status)
	s.ResponseWriter.Write([]byte(http.StatusText(status)))
}
