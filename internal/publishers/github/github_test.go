package github

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hy2ctl/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_UpdatesExistingFile(t *testing.T) {
	var put fileRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/me/subs/contents/hy2.txt", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "main", r.URL.Query().Get("ref"))
			json.NewEncoder(w).Encode(fileResponse{Sha: "abc"})
		case http.MethodPut:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&put))
			w.WriteHeader(http.StatusCreated)
		}
	}))
	defer srv.Close()

	profiles := []profile.Profile{profile.New().WithName("A").WithServer("a.example.com:443").WithAuth("pw")}
	err := (&Publisher{}).Publish(profiles, map[string]interface{}{
		"token":   "tok",
		"owner":   "me",
		"repo":    "subs",
		"path":    "/hy2.txt",
		"branch":  "main",
		"api_url": srv.URL + "/",
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", put.Sha)
	assert.Equal(t, "main", put.Branch)
	content, err := base64.StdEncoding.DecodeString(put.Content)
	require.NoError(t, err)
	assert.Equal(t, "hysteria2://pw@a.example.com:443/#A", string(content))
}

func TestPublish_CreatesAndReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("sha mismatch"))
	}))
	defer srv.Close()

	err := (&Publisher{}).Publish(nil, map[string]interface{}{
		"token": "tok", "owner": "me", "repo": "subs", "path": "x", "api_url": srv.URL,
	})
	assert.ErrorContains(t, err, "status 422: sha mismatch")
}

func TestPublish_RequiresParams(t *testing.T) {
	err := (&Publisher{}).Publish(nil, map[string]interface{}{"token": "tok"})
	assert.ErrorContains(t, err, "requires token, owner, repo, and path")
}
