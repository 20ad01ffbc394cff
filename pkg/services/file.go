package services

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("invalid path")

// SafeJoin joins root, sub and target, returning "" when target tries to
// escape with "..".
func SafeJoin(root, sub, target string) string {
	cleanTarget := filepath.Clean("/" + filepath.ToSlash(target))
	if strings.Contains(target, "..") {
		return ""
	}
	return filepath.Join(root, sub, cleanTarget)
}

// contentPath resolves a page path relative to the content directory.
func contentPath(repo, contentDir, page string) (string, error) {
	if strings.TrimSpace(page) == "" {
		return "", ErrInvalidPath
	}
	full := SafeJoin(repo, contentDir, page)
	if full == "" {
		return "", ErrInvalidPath
	}
	return full, nil
}
