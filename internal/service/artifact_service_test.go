package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ArtifactServiceInterface = (*ArtifactService)(nil)

func TestEnsureDownloadsMissingArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("2 3\nhello 1 2 3\nworld 4 5 6\n"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "artifacts", "vectors.txt")
	require.NoError(t, NewArtifactService().Ensure(context.Background(), path, srv.URL+"/vectors.txt"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2 3\nhello 1 2 3\nworld 4 5 6\n", string(data))

	_, err = os.Stat(path + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureKeepsExistingArtifact(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	require.NoError(t, NewArtifactService().Ensure(context.Background(), path, srv.URL))
	assert.Zero(t, calls)
}

func TestEnsureWithoutURL(t *testing.T) {
	err := NewArtifactService().Ensure(context.Background(), filepath.Join(t.TempDir(), "missing.bin"), "")
	assert.Error(t, err)
}

func TestEnsureHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "vectors.bin")
	err := NewArtifactService().Ensure(context.Background(), path, srv.URL)
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
