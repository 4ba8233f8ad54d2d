package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/booklog/internal/github"
)

func TestGetFileContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/alice/notes/contents/books.json", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(github.FileContent{
			SHA:      "abc",
			Encoding: "base64",
			Content:  base64.StdEncoding.EncodeToString([]byte(`[]`)),
		})
	}))
	defer srv.Close()

	c := github.New("tok", srv.URL)
	data, sha, err := c.GetFileContent(context.Background(), "alice", "notes", "books.json", "")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Equal(t, "abc", sha)
}

func TestGetFileContent_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, _, err := github.New("", srv.URL).GetFileContent(context.Background(), "a", "b", "c.json", "")
	assert.ErrorIs(t, err, github.ErrNotFound)
}

func TestPutFileContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body map[string]string
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		if body["sha"] != "old" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		got, _ := base64.StdEncoding.DecodeString(body["content"])
		assert.Equal(t, `[{"id":"1"}]`, string(got))
		assert.Equal(t, "main", body["branch"])
		_, _ = w.Write([]byte(`{"content":{"sha":"new"}}`))
	}))
	defer srv.Close()

	c := github.New("tok", srv.URL)
	ctx := context.Background()

	sha, err := c.PutFileContent(ctx, "a", "b", "books.json", "main", "update", []byte(`[{"id":"1"}]`), "old")
	require.NoError(t, err)
	assert.Equal(t, "new", sha)

	_, err = c.PutFileContent(ctx, "a", "b", "books.json", "main", "update", []byte(`[]`), "stale")
	assert.ErrorIs(t, err, github.ErrConflict)
}
