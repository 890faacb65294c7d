package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Middleware rejects these requests before any handler runs, so the server
// can be built without backing services.
func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	return NewServer(nil, nil, nil, nil, nil, nil, nil, nil, nil)
}

func doRequest(srv *Server, method, path, userID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestIdentityHeadersRequired(t *testing.T) {
	srv := newTestServer()

	w := doRequest(srv, http.MethodGet, "/api/v1/bulletins", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(srv, http.MethodGet, "/api/v1/bulletins", "u1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(srv, http.MethodGet, "/api/v1/bulletins", "", "PRODUCER")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentityRejectsUnknownRole(t *testing.T) {
	srv := newTestServer()

	w := doRequest(srv, http.MethodGet, "/api/v1/bulletins", "u1", "SUPERUSER")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMutationsNeedProducerRole(t *testing.T) {
	srv := newTestServer()

	for _, role := range []string{"REPORTER", "EDITOR"} {
		w := doRequest(srv, http.MethodPost, "/api/v1/bulletins", "u1", role)
		assert.Equal(t, http.StatusForbidden, w.Code, "role %s", role)

		w = doRequest(srv, http.MethodDelete, "/api/v1/bulletins/b1/rows/r1", "u1", role)
		assert.Equal(t, http.StatusForbidden, w.Code, "role %s", role)
	}
}

func TestSegmentEditingNeedsEditorRole(t *testing.T) {
	srv := newTestServer()

	w := doRequest(srv, http.MethodDelete, "/api/v1/bulletins/b1/rows/r1/segments/s1", "u1", "REPORTER")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuditRestrictedToAdmins(t *testing.T) {
	srv := newTestServer()

	w := doRequest(srv, http.MethodGet, "/api/v1/audit", "u1", "PRODUCER")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(srv, http.MethodGet, "/api/v1/trash", "u1", "EDITOR")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
