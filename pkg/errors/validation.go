package errors

import (
	"slices"
	"strings"
	"unicode"
)

// ValidateSelector validates a page or artboard selector taken from user
// input (CLI flag or HTTP query). Selectors match a name or an object id.
func ValidateSelector(kind, value string) error {
	if value == "" {
		return New(ErrCodeInvalidInput, "%s selector cannot be empty", kind)
	}

	if len(value) > 256 {
		return New(ErrCodeInvalidInput, "%s selector too long (max 256 characters)", kind)
	}

	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s selector contains invalid control characters", kind)
		}
	}

	return nil
}

// ValidateFormat checks that format is one of the supported output formats.
func ValidateFormat(format string, supported ...string) error {
	if slices.Contains(supported, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(supported, ", "))
}

// ValidatePath validates a file path inside a document archive.
// It prevents path traversal when entries are extracted.
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
