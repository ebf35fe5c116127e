package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	defer func() { Version = old }()

	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} v9.9.9\n") {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.Contains(tmpl, "commit: "+Commit+"\n") {
		t.Errorf("Template() = %q, missing commit", tmpl)
	}
}
