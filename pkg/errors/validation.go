package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// outputExtensions is the set of file extensions the renderer can produce.
var outputExtensions = map[string]bool{
	".svg":  true,
	".json": true,
	".dot":  true,
	".png":  true,
	".pdf":  true,
	".txt":  true,
}

// recordExtensions is the set of file extensions record files can use.
var recordExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
}

// ValidateOutputPath validates a path the rendered diagram will be written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
//   - Extension, when present, must be a known output format
func ValidateOutputPath(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" && !outputExtensions[ext] {
		return New(ErrCodeInvalidPath, "unsupported output extension %q", ext)
	}
	return nil
}

// ValidateRecordPath validates a path a record file will be written to. It
// applies the same hygiene rules as [ValidateOutputPath] but requires a
// record file extension (.json, .yaml, .yml or .toml).
func ValidateRecordPath(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(path)); !recordExtensions[ext] {
		return New(ErrCodeInvalidPath, "unsupported record file extension %q (want .json, .yaml, .yml or .toml)", ext)
	}
	return nil
}

func validatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}
	return nil
}

// identifierRegex matches plain SQL identifiers, optionally schema-qualified.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateIdentifier validates a table or column name that is interpolated
// into a SQL statement. Only letters, digits and underscores are accepted,
// with at most one schema qualifier.
func ValidateIdentifier(name string) error {
	if name == "" {
		return New(ErrCodeInvalidSource, "identifier cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidSource, "identifier too long (max 128 characters)")
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidSource, "invalid identifier: %q", name)
	}
	return nil
}
