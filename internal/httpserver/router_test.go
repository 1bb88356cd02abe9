package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snowcode-jp/ljc-server/internal/config"
	"github.com/snowcode-jp/ljc-server/internal/hub"
	"github.com/snowcode-jp/ljc-server/internal/mountctl"
)

func newTestRouter() (http.Handler, *hub.Hub) {
	h := hub.New()
	mounts := mountctl.NewHandlers(h, &config.Config{Port: 17200, AllowedMountBase: "~/Public/mount"})
	return NewRouter(h, mounts), h
}

func TestRouter_LandingPageIsPublic(t *testing.T) {
	r, _ := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ProtectedRouteRejectsMissingToken(t *testing.T) {
	r, _ := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ProtectedRouteAcceptsValidToken(t *testing.T) {
	r, h := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set("Authorization", "Bearer "+h.Token())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestRouter_ProtectedRouteRejectsWrongToken(t *testing.T) {
	r, _ := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_WebdavOptionsShortCircuitsWithoutAuth(t *testing.T) {
	r, _ := newTestRouter()
	req := httptest.NewRequest(http.MethodOptions, "/webdav/3fa85f64-5717-4562-b3fc-2c963f66afa6/file.txt", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1, 2", rec.Header().Get("DAV"))
}

func TestRouter_ConnectHTMLIsPublic(t *testing.T) {
	r, _ := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/connect-html?ip=10.0.0.5&port=17200", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "10.0.0.5")
}
