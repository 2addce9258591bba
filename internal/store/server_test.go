package store

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Store, *httptest.Server) {
	t.Helper()
	st := New()
	srv := httptest.NewServer(NewServer(st, zap.NewNop()).Routes())
	t.Cleanup(srv.Close)
	return st, srv
}

func TestGetObject(t *testing.T) {
	st, srv := newTestServer(t)
	st.Put("Post", "p1", map[string]any{
		"title": "hello",
		"body":  "world",
	})

	t.Run("full read", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/classes/Post/p1")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var doc Document
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
		assert.Equal(t, "hello", doc.Fields["title"])
		assert.Nil(t, doc.Keys)
	})

	t.Run("selective read reports populated keys", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/classes/Post/p1?keys=title,missing")
		require.NoError(t, err)
		defer resp.Body.Close()

		var doc Document
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
		assert.Equal(t, map[string]any{"title": "hello"}, doc.Fields)
		assert.Equal(t, []string{"title"}, doc.Keys)
	})

	t.Run("missing object is 404", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/classes/Post/nope")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPutAndCreate(t *testing.T) {
	st, srv := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"title": "hello"})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/classes/Post/p1", bytes.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/v1/classes/Post", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created["id"])

	assert.Len(t, st.List("Post"), 2)
	assert.Equal(t, map[string]int{"Post": 2}, st.Counts())
}
