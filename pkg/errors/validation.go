package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateID validates a row, group, or column identifier.
// It rejects identifiers that could break serialization, URLs, or SVG
// attribute values.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "identifier too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "identifier contains invalid control characters")
		}
	}

	return nil
}

// ValidateField validates a metadata field name referenced by a column
// or effect definition. Field names index into row metadata maps, so the
// same safety rules as identifiers apply.
func ValidateField(name string) error {
	if name == "" {
		return New(ErrCodeMissingField, "field name cannot be empty")
	}

	if err := ValidateID(name); err != nil {
		return New(ErrCodeInvalidColumn, "invalid field name %q", name)
	}

	return nil
}

// hexColorRegex matches 3-, 4-, 6-, and 8-digit hex color values.
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// cssColorFuncRegex matches rgb()/rgba()/hsl()/hsla() functional notation.
var cssColorFuncRegex = regexp.MustCompile(`^(?:rgb|rgba|hsl|hsla)\([0-9.,%\s/]+\)$`)

// cssColorNameRegex matches simple keyword color names.
var cssColorNameRegex = regexp.MustCompile(`^[a-zA-Z]+$`)

// ValidateColor validates a color value from a theme or spec.
// Accepted forms are hex (#rgb, #rgba, #rrggbb, #rrggbbaa), functional
// notation (rgb, rgba, hsl, hsla), keyword names, and "none". Rejecting
// everything else keeps arbitrary markup out of SVG attributes.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidTheme, "color cannot be empty")
	}

	if color == "none" || color == "transparent" {
		return nil
	}

	if hexColorRegex.MatchString(color) {
		return nil
	}

	if cssColorFuncRegex.MatchString(color) {
		return nil
	}

	if cssColorNameRegex.MatchString(color) {
		return nil
	}

	return New(ErrCodeInvalidTheme, "invalid color value: %q", color)
}

// ValidateDataURI validates an image reference for embedding.
// Only data: URIs are accepted; external references would break the
// self-contained output guarantee.
func ValidateDataURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidColumn, "image reference cannot be empty")
	}

	if !strings.HasPrefix(uri, "data:") {
		return New(ErrCodeInvalidColumn, "image reference must be a data: URI (external references are not embedded)")
	}

	if strings.ContainsAny(uri, "\"'<>") {
		return New(ErrCodeInvalidColumn, "image reference contains invalid characters")
	}

	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}
