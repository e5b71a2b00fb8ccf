package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct {
	v   string
	err error
}

func (p pinger) Version() (string, error) { return p.v, p.err }

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	r := mux.NewRouter()
	RegisterRoutes(r)
	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/readyz").Code)
}

func TestReadyz(t *testing.T) {
	r := mux.NewRouter()
	RegisterRoutesWithDeps(r, nil, pinger{v: "0.31.2"})
	rec := get(r, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "ok 0.31.2", out["nipap"])

	r = mux.NewRouter()
	RegisterRoutesWithDeps(r, nil, pinger{err: errors.New("down")})
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/readyz").Code)
}
