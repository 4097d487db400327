package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-crud/pkg/application"
)

func TestNotFound(t *testing.T) {
	h := NotFound(application.New(&application.ApplicationOptions{}))

	t.Run("html", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Contains(t, w.Body.String(), "Page not found")
	})

	t.Run("json", func(t *testing.T) {
		w := httptest.NewRecorder()
		w.Header().Set("X-Request-Id", "req-1")
		r := httptest.NewRequest(http.MethodGet, "/nope", nil)
		r.Header.Set("Accept", "application/json")
		h.ServeHTTP(w, r)
		require.Equal(t, http.StatusNotFound, w.Code)

		var body struct {
			Code string            `json:"code"`
			Meta map[string]string `json:"meta"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.Equal(t, "NOT_FOUND", body.Code)
		require.Equal(t, "/nope", body.Meta["path"])
		require.Equal(t, "req-1", body.Meta["request_id"])
	})
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/members", nil)
	r.Header.Set("Accept", "application/json")
	MethodNotAllowed().ServeHTTP(w, r)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Contains(t, w.Body.String(), "METHOD_NOT_ALLOWED")
}
