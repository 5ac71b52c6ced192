package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
)

// FileRepository implements domain.PreferencesRepository using a JSON file.
// This is a secondary adapter.
type FileRepository struct {
	path string
	mu   sync.Mutex
	last []byte // bytes of the most recent Save, to ignore our own writes in Watch
}

// NewFileRepository creates a new file-based preferences repository.
func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preferences dir: %w", err)
	}

	return &FileRepository{path: path}, nil
}

// Path returns the file location.
func (f *FileRepository) Path() string { return f.path }

// persistedData represents the JSON structure on disk.
// Missing keys mean enabled.
type persistedData struct {
	Bgm   *bool `json:"bgm"`
	Sfx   *bool `json:"sfx"`
	Voice *bool `json:"voice"`
}

// Load reads the preferences from disk. A missing file yields the defaults.
func (f *FileRepository) Load() (domain.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileRepository) load() (domain.Preferences, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultPreferences(), nil
		}
		return domain.Preferences{}, fmt.Errorf("read preferences: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (domain.Preferences, error) {
	var persisted persistedData
	if err := json.Unmarshal(data, &persisted); err != nil {
		return domain.Preferences{}, fmt.Errorf("unmarshal preferences: %w", err)
	}
	return domain.Preferences{
		MusicEnabled: flag(persisted.Bgm),
		SfxEnabled:   flag(persisted.Sfx),
		VoiceEnabled: flag(persisted.Voice),
	}, nil
}

func flag(b *bool) bool { return b == nil || *b }

// Save persists the preferences to disk.
func (f *FileRepository) Save(prefs domain.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	persisted := persistedData{
		Bgm:   &prefs.MusicEnabled,
		Sfx:   &prefs.SfxEnabled,
		Voice: &prefs.VoiceEnabled,
	}
	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	// Atomic write
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename tmp: %w", err)
	}
	f.last = data
	return nil
}

// Watch calls onChange whenever another process rewrites the file, until ctx is done.
// Writes made through this repository are not reported.
func (f *FileRepository) Watch(ctx context.Context, onChange func(domain.Preferences)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: the atomic rename replaces the file inode.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(f.path), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(f.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				prefs, changed, err := f.reload()
				if err != nil {
					logging.Warnf("reload preferences: %v", err)
					continue
				}
				if changed {
					logging.Infof("preferences changed on disk: %+v", prefs)
					onChange(prefs)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warnf("watch preferences: %v", err)
			}
		}
	}()
	return nil
}

// reload reads the file and reports whether it differs from our own last write.
func (f *FileRepository) reload() (domain.Preferences, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Preferences{}, false, nil
		}
		return domain.Preferences{}, false, fmt.Errorf("read preferences: %w", err)
	}
	if f.last != nil && bytes.Equal(data, f.last) {
		return domain.Preferences{}, false, nil
	}
	prefs, err := decode(data)
	if err != nil {
		return domain.Preferences{}, false, err
	}
	f.last = data
	return prefs, true, nil
}
