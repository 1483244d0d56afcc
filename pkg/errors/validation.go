package errors

import (
	"strings"
	"unicode"
)

// MaxNodeNameLength bounds node names accepted by [ValidateNodeName].
const MaxNodeNameLength = 1024

// ValidateNodeName checks that name can be used as a graph registry key.
//
// The rules:
//   - No empty names
//   - No control characters or null bytes
//   - No ':' since it separates a node name from its output index in
//     qualified references
//   - Maximum length of [MaxNodeNameLength] bytes
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidNodeName, "node name cannot be empty")
	}

	if len(name) > MaxNodeNameLength {
		return New(ErrCodeInvalidNodeName, "node name too long (max %d characters)", MaxNodeNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeName, "node name %q contains invalid control characters", name)
		}
	}

	if strings.Contains(name, ":") {
		return New(ErrCodeInvalidNodeName, "node name %q must not contain ':'", name)
	}

	return nil
}
