package walker

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// IndexDirName is the reserved storage directory beneath an indexed root.
// It is always excluded from scans so the index never indexes itself.
const IndexDirName = ".scout"

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path    string
	RelPath string
	Size    int64
	ModTime time.Time
}

// maxFileSize is the largest file we'll consider (1 MB).
const maxFileSize = 1 << 20

// fixedIgnores are always excluded, regardless of any .scoutignore file:
// version-control directories, dependency and build caches, virtual
// environments, and the index's own storage directory.
var fixedIgnores = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
	"vendor",
	"__pycache__",
	".venv",
	"venv",
	".pytest_cache",
	".mypy_cache",
	".idea",
	".vscode",
	"dist",
	"build",
	IndexDirName,
}

// Walk traverses the directory tree rooted at root and sends discovered
// source files on the returned channel. It only emits files whose extension
// is in allowedExts, and skips paths matching the fixed ignore set or any
// .scoutignore patterns.
func Walk(root string, allowedExts map[string]bool) (<-chan FileInfo, <-chan error) {
	files := make(chan FileInfo, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)
		if err := walk(root, allowedExts, func(fi FileInfo) { files <- fi }); err != nil {
			errs <- err
		}
	}()

	return files, errs
}

// List returns all filtered source files under root, synchronously.
func List(root string, allowedExts map[string]bool) []FileInfo {
	var files []FileInfo
	walk(root, allowedExts, func(fi FileInfo) { files = append(files, fi) })
	return files
}

// Recent returns up to n filtered source files under root, most recently
// modified first.
func Recent(root string, allowedExts map[string]bool, n int) []FileInfo {
	files := List(root, allowedExts)
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	if len(files) > n {
		files = files[:n]
	}
	return files
}

func walk(root string, allowedExts map[string]bool, emit func(FileInfo)) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	ignores := append(loadIgnorePatterns(absRoot), fixedIgnores...)

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors, keep walking
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			rel, _ := filepath.Rel(absRoot, path)
			if matchesIgnore(d.Name(), filepath.ToSlash(rel), ignores) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !allowedExts[ext] {
			return nil
		}

		rel, _ := filepath.Rel(absRoot, path)
		relSlash := filepath.ToSlash(rel)
		if matchesIgnore(d.Name(), relSlash, ignores) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxFileSize || info.Size() == 0 {
			return nil
		}

		emit(FileInfo{
			Path:    path,
			RelPath: relSlash,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
}

// EnsureIgnoreFile writes a starter .scoutignore at root if none exists.
// The fixed ignore set applies regardless of its contents.
func EnsureIgnoreFile(root string) error {
	path := filepath.Join(root, ".scoutignore")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	content := "# Patterns excluded from indexing, one per line.\n" +
		"# Names, path substrings, and doublestar globs (e.g. **/*_pb.py) are supported.\n"
	return os.WriteFile(path, []byte(content), 0o644)
}

// loadIgnorePatterns reads extra patterns from .scoutignore at the root.
// Missing file means no extra patterns; the fixed set always applies.
func loadIgnorePatterns(root string) []string {
	f, err := os.Open(filepath.Join(root, ".scoutignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// matchesIgnore checks a path component name and slash-separated relative
// path against the ignore patterns. Fixed patterns match as path substrings
// or exact names; .scoutignore patterns additionally support doublestar globs.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		if name == p {
			return true
		}
		if strings.Contains(relPath, p) {
			return true
		}
		if matched, _ := doublestar.Match(p, relPath); matched {
			return true
		}
		if matched, _ := doublestar.Match(p, name); matched {
			return true
		}
	}
	return false
}
