package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxPackageNameLength bounds user-supplied package names.
const maxPackageNameLength = 256

// brewNameRegex matches formula names ("openssl@3", "gcc"), cask tokens
// ("visual-studio-code") and fully qualified tap names
// ("homebrew/cask-fonts/font-fira-code").
var brewNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9@+._/-]*$`)

// ValidatePackageName validates a package name supplied on the command line
// or in an HTTP path before it is used for lookups or output file names.
//
// The rules are conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences
//   - No leading dash (would be read as a flag by brew)
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > maxPackageNameLength {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	if !brewNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid package name: %q", name)
	}

	return nil
}

// ValidateImageFormat checks that format is one of the supported image
// formats for rendered graphs.
func ValidateImageFormat(format string) error {
	switch format {
	case "png", "svg", "jpg":
		return nil
	}
	return New(ErrCodeInvalidFormat, "invalid image format: %q (must be one of: png, svg, jpg)", format)
}
