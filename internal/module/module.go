// Package module resolves and loads imported shader-source files from a
// fixed search path, caching source text so a module imported from several
// places is only read from disk once.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Loader finds an import path on disk and returns its source text. The
// compiler calls Load once per distinct import path encountered while
// walking a program's ImportStmts, regardless of how many files import it.
type Loader interface {
	Load(name string) (source, path string, err error)
}

// FileLoader resolves "foo/bar" style import paths against a fixed list of
// search directories, trying a direct "<dir>/name.shade" file and a
// "<dir>/name/index.shade" package file in each, in order.
type FileLoader struct {
	searchPath []string

	mu    sync.RWMutex
	cache map[string]cachedModule
}

type cachedModule struct {
	source string
	path   string
}

const sourceExt = ".shade"

func NewFileLoader(searchPath ...string) *FileLoader {
	if len(searchPath) == 0 {
		searchPath = DefaultSearchPath()
	}
	return &FileLoader{searchPath: searchPath, cache: make(map[string]cachedModule)}
}

// DefaultSearchPath mirrors the layout scripts are normally run from: the
// current directory, a sibling "lib" directory, and an installed stdlib.
func DefaultSearchPath() []string {
	return []string{".", "./lib", standardLibPath()}
}

func standardLibPath() string {
	if dir := os.Getenv("RUSTERIA_STDLIB"); dir != "" {
		return dir
	}
	return filepath.Join(".", "stdlib")
}

func (l *FileLoader) Load(name string) (string, string, error) {
	l.mu.RLock()
	if c, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return c.source, c.path, nil
	}
	l.mu.RUnlock()

	path, err := l.resolve(name)
	if err != nil {
		return "", "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("module %q: %w", name, err)
	}

	l.mu.Lock()
	l.cache[name] = cachedModule{source: string(raw), path: path}
	l.mu.Unlock()

	return string(raw), path, nil
}

func (l *FileLoader) resolve(name string) (string, error) {
	if strings.HasSuffix(name, sourceExt) {
		if fileExists(name) {
			return name, nil
		}
		return "", fmt.Errorf("module file not found: %s", name)
	}

	parts := strings.Split(name, "/")
	for _, dir := range l.searchPath {
		if path := filepath.Join(dir, name+sourceExt); fileExists(path) {
			return path, nil
		}
		if path := filepath.Join(dir, name, "index"+sourceExt); fileExists(path) {
			return path, nil
		}
		if path := filepath.Join(dir, filepath.Join(parts...)+sourceExt); fileExists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("module not found: %s (search path: %s)", name, strings.Join(l.searchPath, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
