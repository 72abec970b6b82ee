package errors

import (
	"strings"
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"formula", "wget", false},
		{"versioned formula", "openssl@3", false},
		{"plus sign", "libstdc++", false},
		{"cask token", "visual-studio-code", false},
		{"tap qualified", "homebrew/cask-fonts/font-fira-code", false},
		{"empty", "", true},
		{"traversal", "../etc/passwd", true},
		{"double slash", "a//b", true},
		{"backslash", `a\b`, true},
		{"leading dash", "--force", true},
		{"control char", "wget\n", true},
		{"space", "wget curl", true},
		{"too long", strings.Repeat("a", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("expected ErrCodeInvalidPackage, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateImageFormat(t *testing.T) {
	for _, f := range []string{"png", "svg", "jpg"} {
		if err := ValidateImageFormat(f); err != nil {
			t.Errorf("ValidateImageFormat(%q) = %v", f, err)
		}
	}
	for _, f := range []string{"", "pdf", "PNG", "gif"} {
		if err := ValidateImageFormat(f); !Is(err, ErrCodeInvalidFormat) {
			t.Errorf("ValidateImageFormat(%q) = %v, want ErrCodeInvalidFormat", f, err)
		}
	}
}
