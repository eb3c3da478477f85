package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/me/ligflow/pkg/model"
)

// EnsureDir makes sure the directory at path exists and returns its absolute,
// symlink-resolved form. Creation is recursive and idempotent. When clear is
// true, existing contents are removed and the directory is recreated empty.
//
// If path names a regular file, EnsureDir resolves to the file's parent
// directory instead of failing. This coercion is long-standing behavior that
// callers rely on when handed a file inside the directory they mean; do not
// remove it without revisiting every call site.
func EnsureDir(path string, clear bool) (string, error) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		path = filepath.Dir(path)
	}
	if clear {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := os.RemoveAll(path); err != nil {
				return "", fmt.Errorf("clear directory %s: %w", path, err)
			}
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve directory %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve directory %s: %w", abs, err)
	}
	return resolved, nil
}

// CheckDir verifies that path is an existing directory and returns a
// LayoutError describing what was found otherwise.
func CheckDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &model.LayoutError{Path: path, Msg: "not an existing directory: it does not exist"}
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return &model.LayoutError{Path: path, Msg: "not an existing directory: it is a file"}
	}
	return nil
}

// CheckFile verifies that path is an existing regular file.
func CheckFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &model.LayoutError{Path: path, Msg: "not an existing file: it does not exist"}
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return &model.LayoutError{Path: path, Msg: "not an existing file: it is a directory"}
	}
	return nil
}
