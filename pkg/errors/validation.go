package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a source path received from an untrusted caller
// (the HTTP API). It prevents path traversal and keeps paths relative to the
// server's source root.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// functionNameRegex matches the names the Go front end emits: plain
// identifiers, package-qualified names and method expressions such as
// "(*Server).Handle".
var functionNameRegex = regexp.MustCompile(`^(\(\*?[\pL_][\pL\pN_]*\)\.)?[\pL_][\pL\pN_.$#]*$`)

// ValidateFunctionName validates a function name used to select a sub-graph.
func ValidateFunctionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "function name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "function name too long (max 256 characters)")
	}
	if !functionNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid function name: %q", name)
	}
	return nil
}
