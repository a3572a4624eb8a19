package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrIsDirectory = errors.New("path is a directory")
)

// CheckReadable confirms path names a regular file that can be opened.
// A missing file wraps fs.ErrNotExist.
func CheckReadable(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, fs.ErrNotExist)
		}
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	return f.Close()
}

// PrepareOutputPath creates the parent directory of path and rejects a path
// that is itself a directory. An empty path means stdout.
func PrepareOutputPath(path string) error {
	if path == "" {
		return nil
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Ext returns the lower-cased extension of name, including the dot
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsDocx reports whether name carries the .docx extension
func IsDocx(name string) bool {
	return Ext(name) == ".docx"
}

// FormatFileSize renders size in binary units, e.g. "1.5 MB"
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
