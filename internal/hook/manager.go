package hook

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// ErrHookNotFound is returned when a requested hook cannot be found.
var ErrHookNotFound = errors.New("hook not found")

// Manager manages hook discovery and access.
type Manager struct {
	dir    string
	hooks  map[string]*Hook
	logger zerolog.Logger
	mu     sync.RWMutex
}

// NewManager creates a new hook Manager over dir.
func NewManager(dir string, logger zerolog.Logger) *Manager {
	return &Manager{
		dir:    dir,
		hooks:  make(map[string]*Hook),
		logger: logger,
	}
}

// Discover scans the hooks directory for hook.json manifests. A missing
// directory yields no hooks; unreadable manifests are logged and skipped.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hooks = make(map[string]*Hook)

	info, err := os.Stat(m.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		hookPath := filepath.Join(m.dir, entry.Name())
		manifestPath := filepath.Join(hookPath, ManifestFile)

		data, err := os.ReadFile(manifestPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			m.logger.Warn().Err(err).Str("path", manifestPath).Msg("skipping unreadable manifest")
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			m.logger.Warn().Err(err).Str("path", manifestPath).Msg("skipping invalid manifest")
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			m.logger.Warn().Str("path", manifestPath).Msg("skipping manifest without name or executable")
			continue
		}

		m.hooks[manifest.Name] = &Hook{
			Manifest:   manifest,
			Path:       hookPath,
			Executable: filepath.Join(hookPath, manifest.Executable),
		}
	}

	m.logger.Info().Int("hooks", len(m.hooks)).Str("dir", m.dir).Msg("hooks discovered")
	return nil
}

// Get returns a hook by name.
func (m *Manager) Get(name string) (*Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.hooks[name]
	if !ok {
		return nil, ErrHookNotFound
	}

	return h, nil
}

// List returns every discovered hook sorted by name.
func (m *Manager) List() []*Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hooks := make([]*Hook, 0, len(m.hooks))
	for _, h := range m.hooks {
		hooks = append(hooks, h)
	}
	sort.Slice(hooks, func(i, j int) bool {
		return hooks[i].Manifest.Name < hooks[j].Manifest.Name
	})

	return hooks
}

// Dir returns the hooks directory path.
func (m *Manager) Dir() string {
	return m.dir
}
