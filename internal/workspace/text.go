package workspace

import (
	"fmt"
	"os"
	"strings"
)

// Replacement is one literal before/after substitution.
type Replacement struct {
	Before string
	After  string
}

// ReplaceInPlace applies the replacements to the file at path, in order.
// Substitutions are literal, not patterns. The operation is idempotent for
// replacement tables whose outputs never match their inputs.
func ReplaceInPlace(path string, replacements []Replacement) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	text := string(data)
	for _, r := range replacements {
		text = strings.ReplaceAll(text, r.Before, r.After)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RemoveIfExists deletes the file at path if it exists. Missing files are not
// an error; external tools do not always leave their backup files behind.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
