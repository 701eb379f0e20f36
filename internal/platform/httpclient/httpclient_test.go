package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_PostAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/records", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "abc", r.Header.Get("X-Request-ID"))

		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Fido", in["name"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"visitsCreated":2}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/")
	require.NoError(t, err)

	var out struct {
		VisitsCreated int `json:"visitsCreated"`
	}
	err = c.DoJSON(context.Background(), http.MethodPost, "records", map[string]string{"X-Request-ID": "abc"},
		map[string]any{"name": "Fido"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, out.VisitsCreated)
}

func TestDoJSON_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid json", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	err = c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Contains(t, err.Error(), "invalid json")
}

func TestDoJSON_RetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithRetries(2, time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, c.DoJSON(context.Background(), http.MethodGet, "/", nil, nil, nil))
	assert.EqualValues(t, 3, calls.Load())
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)

	c, err := New("")
	require.NoError(t, err)
	assert.Error(t, c.DoJSON(context.Background(), http.MethodGet, "/relative", nil, nil, nil))
}
