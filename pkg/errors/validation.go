package errors

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxNameLength bounds article names and identifier fields.
const maxNameLength = 256

// ValidateArticleName validates an article name read from the library manifest.
// Article names become file names (<name>.esx) and node ids, so they are
// checked for safety:
//   - No empty names
//   - Only letters, digits, '_', '.' and '-'
//   - No traversal sequences
//   - No "--" or trailing '-', which GraphML comments cannot carry
//   - Maximum length of 256 characters
func ValidateArticleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidManifest, "article name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidManifest, "article name too long (max %d characters): %q", maxNameLength, name)
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidManifest, "article name contains invalid characters: %q", name)
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidManifest, "article name cannot contain path components: %q", name)
	}
	if strings.Contains(name, "--") || strings.HasSuffix(name, "-") {
		return New(ErrCodeInvalidManifest, "article name cannot contain \"--\" or end in '-': %q", name)
	}
	return nil
}

// identifierRegex matches text that can appear unquoted inside a node id in
// both output formats.
var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidateIdentifier validates a source-local identifier (an article name or
// xmlid taken from a CSV row) before it is used to build a node id.
func ValidateIdentifier(field, value string) error {
	if value == "" {
		return New(ErrCodeInvalidRecord, "%s cannot be empty", field)
	}
	if len(value) > maxNameLength {
		return New(ErrCodeInvalidRecord, "%s too long (max %d characters)", field, maxNameLength)
	}
	if !identifierRegex.MatchString(value) {
		return New(ErrCodeInvalidRecord, "%s contains invalid characters: %q", field, value)
	}
	return nil
}

// ValidateText validates free text that becomes a label, attribute name or
// attribute value in the output graph. Both output formats carry valid UTF-8
// without control characters other than tab and line breaks.
func ValidateText(field, value string) error {
	if !IsText(value) {
		return New(ErrCodeInvalidRecord, "%s contains invalid characters: %q", field, value)
	}
	return nil
}

// IsText reports whether ValidateText accepts s.
func IsText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !isTextRune(r) {
			return false
		}
	}
	return true
}

func isTextRune(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r < 0x20, r == 0x7F, r == 0xFFFE, r == 0xFFFF:
		return false
	}
	return true
}

// IsIdentifier reports whether ValidateIdentifier accepts s.
func IsIdentifier(s string) bool {
	return s != "" && len(s) <= maxNameLength && identifierRegex.MatchString(s)
}

// xmlIDRegex matches ESX element identifiers such as "x307".
var xmlIDRegex = regexp.MustCompile(`^x[0-9]+$`)

// ValidateXMLID reports whether id has the ESX element identifier form.
func ValidateXMLID(id string) error {
	if !xmlIDRegex.MatchString(id) {
		return New(ErrCodeInvalidRecord, "xmlid %q is not in format x letter then number (e.g. \"x307\")", id)
	}
	return nil
}

// ValidatePath validates a local input path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters: %q", path)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !IsURL(rawURL) {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// IsURL reports whether s looks like an http(s) URL rather than a local path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
