package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abc-audio/internal/domain"
)

func newRepo(t *testing.T) *FileRepository {
	t.Helper()
	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "abc", "preferences.json"))
	require.NoError(t, err)
	return repo
}

func TestFileRepository_RequiresPath(t *testing.T) {
	_, err := NewFileRepository("")
	assert.Error(t, err)
}

func TestFileRepository_MissingFileIsDefaults(t *testing.T) {
	repo := newRepo(t)
	prefs, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), prefs)
}

func TestFileRepository_SaveLoad(t *testing.T) {
	repo := newRepo(t)
	want := domain.Preferences{MusicEnabled: false, SfxEnabled: true, VoiceEnabled: false}
	require.NoError(t, repo.Save(want))

	got, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = os.Stat(repo.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")
}

func TestFileRepository_MissingKeysDefaultToEnabled(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, os.WriteFile(repo.Path(), []byte(`{"sfx": false}`), 0o644))

	got, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{MusicEnabled: true, SfxEnabled: false, VoiceEnabled: true}, got)
}

func TestFileRepository_CorruptFile(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, os.WriteFile(repo.Path(), []byte(`{bgm`), 0o644))
	_, err := repo.Load()
	assert.Error(t, err)
}

func TestFileRepository_WatchReportsExternalEdits(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Save(domain.DefaultPreferences()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seen []domain.Preferences
	)
	require.NoError(t, repo.Watch(ctx, func(p domain.Preferences) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, p)
	}))

	// our own save is not an external edit
	require.NoError(t, repo.Save(domain.DefaultPreferences()))

	edited := []byte(`{"bgm": false, "sfx": true, "voice": true}`)
	require.NoError(t, os.WriteFile(repo.Path(), edited, 0o644))

	want := domain.Preferences{MusicEnabled: false, SfxEnabled: true, VoiceEnabled: true}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == want
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, p := range seen {
		assert.Equal(t, want, p)
	}
}
