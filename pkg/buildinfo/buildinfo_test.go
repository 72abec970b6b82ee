package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "v0.3.0", "abc1234", "2026-01-02T03:04:05Z"

	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} v0.3.0") || !strings.Contains(tmpl, "abc1234") {
		t.Errorf("Template() = %q", tmpl)
	}
}
