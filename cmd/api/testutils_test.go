package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carowners/api/internal/data"
)

func newTestApplication(t *testing.T) *applicationDependencies {
	t.Helper()

	var cfg serverConfig
	cfg.environment = "testing"
	cfg.store = storeMemory
	cfg.pageSize = 10

	return &applicationDependencies{
		config:  cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		models:  data.NewMemoryModels(),
		metrics: newHTTPMetrics(),
	}
}

// do sends one request through the full middleware and routing stack.
func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}

func createOwner(t *testing.T, h http.Handler, name, surname, phone string) data.Owner {
	t.Helper()

	body := `{"name": "` + name + `", "surname": "` + surname + `", "phone": "` + phone + `"}`
	rr := do(t, h, http.MethodPost, "/owners/", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[data.Owner](t, rr)
}
