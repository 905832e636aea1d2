package util

import (
	"errors"
	"strings"
)

// SanitizeFileName removes path separators, quotes and line breaks, and
// rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	for _, bad := range []string{"/", "\\", `"`, "\n", "\r"} {
		s = strings.ReplaceAll(s, bad, "_")
	}
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
