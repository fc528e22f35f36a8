package record

import (
	"errors"
	"strings"
)

var (
	ErrEmptyName     = errors.New("name is required")
	ErrDirectoryPath = errors.New(`directory names cannot contain '/' or '\'`)
)

func ValidateName(kind Kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	// A backslash would split the directory in two once it is part of a Path.
	if kind == KindDirectory && strings.ContainsAny(name, "/"+PathSeparator) {
		return ErrDirectoryPath
	}
	return nil
}

// SanitizeDirectoryName replaces path separators with spaces; the inventory
// browser cannot display directories whose name contains one.
func SanitizeDirectoryName(name string) string {
	return strings.ReplaceAll(name, "/", " ")
}
