package services

import (
	"os"
	"testing"
	"time"

	"staffhub-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ArtifactStore {
	t.Helper()
	store, err := NewArtifactStore(t.TempDir(), "http://localhost:8090")
	require.NoError(t, err)
	return store
}

func TestArtifactSaveAndPath(t *testing.T) {
	store := newTestStore(t)
	artifact := &models.Artifact{FileName: "hired-abc.pdf", Data: []byte("%PDF")}

	path, err := store.Save(artifact)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)

	resolved, err := store.Path("hired-abc.pdf")
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
}

func TestArtifactPathRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Path("../../etc/passwd")
	assert.Error(t, err)

	_, err = store.Path("..")
	assert.Error(t, err)
}

func TestArtifactPathMissingFile(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Path("nope.pdf")
	assert.Error(t, err)
}

func TestArtifactDownloadURL(t *testing.T) {
	store := newTestStore(t)
	url := store.DownloadURL("hired-abc.pdf")
	assert.Equal(t, "http://localhost:8090/api/artifacts/download/hired-abc.pdf", url)
}

func TestArtifactSweepRemovesOnlyExpired(t *testing.T) {
	store := newTestStore(t)

	oldPath, err := store.Save(&models.Artifact{FileName: "old.csv", Data: []byte("a,b")})
	require.NoError(t, err)
	freshPath, err := store.Save(&models.Artifact{FileName: "fresh.csv", Data: []byte("c,d")})
	require.NoError(t, err)

	stale := time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	removed, err := store.Sweep(time.Now().Add(-7 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshPath)
	assert.NoError(t, err)
}

func TestArtifactDeleteAfter(t *testing.T) {
	store := newTestStore(t)
	path, err := store.Save(&models.Artifact{FileName: "gone-soon.json", Data: []byte("{}")})
	require.NoError(t, err)

	store.DeleteAfter(path, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)
}
