package config

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/wordsearch-translate/game/group"
	"github.com/wricardo/wordsearch-translate/game/service"
)

var (
	ErrSourceNotFound = errors.New("puzzle source not found")
	ErrInvalidSource  = errors.New("invalid puzzle source")
)

// DefaultSourceName is the bundled source used when nothing else is configured
const DefaultSourceName = "main"

const (
	sourceExt     = ".txt"
	originBundled = "bundled"
	originDir     = "directory"
)

//go:embed bundled/*.txt
var bundledFS embed.FS

// Manager is the catalog of named puzzle sources. Sources are read from an
// optional directory first and from the bundled set second, and cached until
// they change on disk.
type Manager struct {
	sourceDir   string
	defaultName string
	blobs       map[string][]byte
	mu          sync.RWMutex
}

// NewManager creates a catalog. sourceDir may be empty to serve only the bundled sources.
func NewManager(sourceDir string) (*Manager, error) {
	if sourceDir != "" {
		info, err := os.Stat(sourceDir)
		if err != nil {
			return nil, fmt.Errorf("source directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source directory is not a directory: %s", sourceDir)
		}
	}

	m := &Manager{
		sourceDir:   sourceDir,
		defaultName: DefaultSourceName,
		blobs:       make(map[string][]byte),
	}

	if _, err := m.LoadBlob(m.defaultName); err != nil {
		return nil, fmt.Errorf("failed to load default source: %w", err)
	}

	return m, nil
}

// NormalizeName strips the file extension and rejects path-like names
func NormalizeName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), sourceExt)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: bad name %q", ErrInvalidSource, name)
	}
	return name, nil
}

// LoadBlob returns the raw contents of a named source
func (m *Manager) LoadBlob(name string) ([]byte, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if blob, exists := m.blobs[name]; exists {
		m.mu.RUnlock()
		return blob, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if blob, exists := m.blobs[name]; exists {
		return blob, nil
	}

	blob, _, err := m.read(name)
	if err != nil {
		return nil, err
	}

	m.blobs[name] = blob
	return blob, nil
}

// read loads name from the directory, then from the bundled set
func (m *Manager) read(name string) ([]byte, string, error) {
	filename := name + sourceExt

	if m.sourceDir != "" {
		blob, err := os.ReadFile(filepath.Join(m.sourceDir, filename))
		if err == nil {
			return blob, originDir, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("failed to read source file: %w", err)
		}
	}

	blob, err := bundledFS.ReadFile("bundled/" + filename)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	return blob, originBundled, nil
}

// ListSources describes every source in the catalog, sorted by name.
// Sources that yield no valid puzzle are listed with their stats.
func (m *Manager) ListSources() ([]*service.SourceInfo, error) {
	origins := make(map[string]string)

	entries, err := fs.ReadDir(bundledFS, "bundled")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled sources: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), sourceExt) {
			origins[strings.TrimSuffix(entry.Name(), sourceExt)] = originBundled
		}
	}

	if m.sourceDir != "" {
		entries, err := os.ReadDir(m.sourceDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read source directory: %w", err)
		}
		for _, entry := range entries {
			if isSourceFile(entry.Name()) && !entry.IsDir() {
				origins[strings.TrimSuffix(entry.Name(), sourceExt)] = originDir
			}
		}
	}

	names := make([]string, 0, len(origins))
	for name := range origins {
		names = append(names, name)
	}
	slices.Sort(names)

	defaultName := m.DefaultName()
	sources := make([]*service.SourceInfo, 0, len(names))
	for _, name := range names {
		blob, err := m.LoadBlob(name)
		if err != nil {
			log.Warn().Err(err).Str("source", name).Msg("skipping unreadable source")
			continue
		}

		puzzles, stats, _ := group.Scan(name, blob)
		sources = append(sources, &service.SourceInfo{
			Name:     name,
			Filename: name + sourceExt,
			Origin:   origins[name],
			Default:  name == defaultName,
			Puzzles:  len(puzzles),
			Stats:    stats,
		})
	}

	return sources, nil
}

// DefaultName returns the name of the default source
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

// GetDefault returns the blob of the default source
func (m *Manager) GetDefault() ([]byte, error) {
	return m.LoadBlob(m.DefaultName())
}

// SetDefault sets the default source by name
func (m *Manager) SetDefault(name string) error {
	if _, err := m.LoadBlob(name); err != nil {
		return err
	}
	name, _ = NormalizeName(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = name
	return nil
}

// RefreshCache drops every cached blob
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.blobs)
}

// Invalidate drops one cached blob
func (m *Manager) Invalidate(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, name)
}

// SaveSource validates blob and writes it to the source directory. A blob
// with no valid puzzle is rejected with the *group.GroupError from scanning.
func (m *Manager) SaveSource(name string, blob []byte) (*service.SourceInfo, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if m.sourceDir == "" {
		return nil, fmt.Errorf("%w: no source directory configured", ErrInvalidSource)
	}

	puzzles, stats, err := group.Scan(name, blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	path := filepath.Join(m.sourceDir, name+sourceExt)
	if err := os.WriteFile(path, blob, 0644); err != nil {
		return nil, fmt.Errorf("failed to write source file: %w", err)
	}

	m.mu.Lock()
	m.blobs[name] = blob
	defaultName := m.defaultName
	m.mu.Unlock()

	log.Info().Str("source", name).Int("puzzles", len(puzzles)).Msg("puzzle source saved")

	return &service.SourceInfo{
		Name:     name,
		Filename: name + sourceExt,
		Origin:   originDir,
		Default:  name == defaultName,
		Puzzles:  len(puzzles),
		Stats:    stats,
	}, nil
}

// Watch invalidates cached sources when their files change. It blocks until
// ctx is done. Without a source directory it returns immediately.
func (m *Manager) Watch(ctx context.Context) error {
	if m.sourceDir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(m.sourceDir); err != nil {
		return fmt.Errorf("watch %s: %w", m.sourceDir, err)
	}

	log.Info().Str("dir", m.sourceDir).Msg("watching puzzle sources")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			m.handleFsEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("source watcher error")
		}
	}
}

// handleFsEvent drops the cache entry for a changed source file and reports
// the source name, or "" when the event is ignored.
func (m *Manager) handleFsEvent(event fsnotify.Event) string {
	base := filepath.Base(event.Name)
	if !isSourceFile(base) {
		return ""
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return ""
	}

	name := strings.TrimSuffix(base, sourceExt)
	m.Invalidate(name)
	log.Debug().Str("source", name).Str("op", event.Op.String()).Msg("puzzle source changed")
	return name
}

func isSourceFile(base string) bool {
	return strings.HasSuffix(base, sourceExt) && !strings.HasPrefix(base, ".")
}
