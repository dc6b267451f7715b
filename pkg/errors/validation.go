package errors

import (
	"strings"
	"unicode"
)

// ValidateBlockName validates a block or signal name for use in generated
// netlists and layout databases.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - Must start with a letter or underscore
//   - Remaining characters: letters, digits, underscore, hyphen
//   - Maximum length of 128 characters
//
// Backend exporters may impose stricter rules for their target format.
func ValidateBlockName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidBlock, "name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidBlock, "name too long (max 128 characters)")
	}

	for i, r := range name {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return New(ErrCodeInvalidBlock, "name must start with a letter or underscore: %q", name)
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return New(ErrCodeInvalidBlock, "name contains invalid character %q: %q", r, name)
		}
	}
	return nil
}

// ValidateSchemaName validates a schema tag. Schema tags are short
// lowercase identifiers such as "spice" or "sky130".
func ValidateSchemaName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidSchema, "schema cannot be empty")
	}
	if strings.ToLower(name) != name {
		return New(ErrCodeInvalidSchema, "schema must be lowercase: %q", name)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return New(ErrCodeInvalidSchema, "schema contains invalid character %q: %q", r, name)
		}
	}
	return nil
}
