package httpserver

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	obsctx "github.com/fairyhunter13/smart-resume-matcher/internal/observability"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = obsctx.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, seen, 26)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "bad id\n")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, seen, 26)
}

func TestAccessLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, accessLevel(http.StatusOK))
	assert.Equal(t, slog.LevelWarn, accessLevel(http.StatusNotFound))
	assert.Equal(t, slog.LevelError, accessLevel(http.StatusBadGateway))
}

func TestRecoverer_WritesEnvelope(t *testing.T) {
	h := Recoverer()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", errorCode(t, rec))
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestAllowedMIMEFor(t *testing.T) {
	assert.True(t, allowedMIMEFor("text/plain; charset=utf-8", "a.txt"))
	assert.True(t, allowedMIMEFor("text/html; charset=utf-8", "a.TXT"))
	assert.True(t, allowedMIMEFor("application/pdf", "a.pdf"))
	assert.True(t, allowedMIMEFor(mimeDOCX, "a.docx"))
	assert.False(t, allowedMIMEFor("text/plain", "a.pdf"))
	assert.False(t, allowedMIMEFor("application/pdf", "a.exe"))
	assert.True(t, allowedExt("CV.PDF"))
	assert.False(t, allowedExt("cv.doc"))
}
