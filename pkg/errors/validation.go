package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// ValidateArtifactName validates an output artifact filename for safety.
// Artifacts are always written inside the output directory, so the name
// must be a plain basename.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 255 characters
//   - No control characters or null bytes
//   - No path separators
//   - No hidden files (names starting with '.')
func ValidateArtifactName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "artifact name cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidPath, "artifact name too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "artifact name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "artifact name cannot contain path separators")
	}

	// Staged temp files are hidden; a hidden artifact could collide with one.
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "artifact name cannot be a hidden file")
	}

	return nil
}

// ValidateOutputDir validates the directory artifacts are written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputDir(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
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

	return nil
}

// ParseHex parses a hexadecimal value of at most bits bits.
// An optional 0x prefix and '_' digit separators are accepted.
func ParseHex(s string, bits int) (uint64, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, New(ErrCodeInvalidInput, "empty hex value")
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	raw = strings.ReplaceAll(raw, "_", "")

	v, err := strconv.ParseUint(raw, 16, bits)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidInput, err, "invalid %d-bit hex value %q", bits, s)
	}
	return v, nil
}
