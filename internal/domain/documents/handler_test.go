package documents

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(src Source) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewService(src))
	return r
}

func TestHandlers(t *testing.T) {
	h := newTestRouter(&fakeSource{files: map[string][]byte{
		"b.txt": []byte(sheet),
		"a.txt": []byte("solo testo"),
	}})

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var items []DocumentInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		require.Len(t, items, 2)
		assert.Equal(t, "a.txt", items[0].Name)
	})

	t.Run("parse", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/b.txt/parse?raw=true", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var res Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "b.txt", res.Name)
		assert.Equal(t, sheet, res.Document.Raw)
		assert.Len(t, res.Document.Pets, 1)
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/zzz.txt/parse", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad name", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/a.exe/parse", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/documents/parse?name=up.txt", bytes.NewBufferString(sheet))
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var res Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "up.txt", res.Name)
		assert.Len(t, res.Document.Owners, 1)
	})

	t.Run("empty upload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/documents/parse", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
