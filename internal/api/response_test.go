package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 201, map[string]string{"ok": "true"})
	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":"true"}`, rec.Body.String())
}

func TestWriteError_UsesErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 404, "no such endpoint")
	assert.Equal(t, 404, rec.Code)
	assert.JSONEq(t, `{"error":"no such endpoint"}`, rec.Body.String())
}
