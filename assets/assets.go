// Package assets holds the bundled fight content: projectile templates,
// sequence configs, beat schedules, boss definitions, arenas and tengo
// scripts. A directory on disk can stand in for the bundle so content can be
// edited and hot reloaded without a rebuild.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed all:data
var dataFS embed.FS

// Bundled returns the embedded content rooted at data/.
func Bundled() fs.FS {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		panic(fmt.Sprintf("assets: embedded data missing: %v", err))
	}
	return sub
}

// Open returns dir as a filesystem when it exists on disk, otherwise the
// bundled content.
func Open(dir string) fs.FS {
	if dir == "" {
		return Bundled()
	}
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return os.DirFS(dir)
	}
	return Bundled()
}

// Read reads name from fsys after cleaning it into an fs.FS path.
func Read(fsys fs.FS, name string) ([]byte, error) {
	return fs.ReadFile(fsys, Clean(name))
}

// LoadYAML decodes the YAML document at name into a T.
func LoadYAML[T any](fsys fs.FS, name string) (T, error) {
	var zero T
	data, err := Read(fsys, name)
	if err != nil {
		return zero, fmt.Errorf("assets: load %s: %w", name, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("assets: unmarshal %s: %w", name, err)
	}
	return spec, nil
}

// Clean converts OS paths and "data/" prefixed names into the slash
// separated relative form fs.FS expects.
func Clean(name string) string {
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, "./")
	if after, ok := strings.CutPrefix(s, "data/"); ok {
		s = after
	}
	return path.Clean(s)
}

// IsContentFile reports whether a changed file should trigger a reload.
func IsContentFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".tengo", ".tmx":
		return true
	}
	return false
}
