package cli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/dotprep/pkg/cache"
	"github.com/matzehuels/dotprep/pkg/config"
	"github.com/matzehuels/dotprep/pkg/errors"
)

// project lays out a site whose engine is a shell script that echoes the
// description back, so builds run without Graphviz.
type project struct {
	root     string
	content  string
	output   string
	diagrams string
	config   string
}

func newProject(t *testing.T) project {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	p := project{
		root:     root,
		content:  filepath.Join(root, "content"),
		output:   filepath.Join(root, "generated", "content"),
		diagrams: filepath.Join(root, "generated", "diagrams"),
		config:   filepath.Join(root, "diagram_config.yml"),
	}
	engine := filepath.Join(root, "fake-dot")
	write(t, engine, "#!/bin/sh\ncat\n")
	if err := os.Chmod(engine, 0755); err != nil {
		t.Fatal(err)
	}
	write(t, p.config, "processing:\n  engine: dot\n  command: \""+engine+"\"\n")
	return p
}

func (p project) args(cmd ...string) []string {
	return append(cmd,
		"--config", p.config,
		"--content", p.content,
		"--output", p.output,
		"--diagrams", p.diagrams,
	)
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&out, &logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func TestBuildCommand(t *testing.T) {
	p := newProject(t)
	write(t, filepath.Join(p.content, "index.md"), "# Home\n\n```dot\ndigraph { a -> b }\n```\n")
	write(t, filepath.Join(p.content, "about.md"), "no diagrams here\n")

	out, logs, err := execute(t, p.args("build")...)
	if err != nil {
		t.Fatalf("build error: %v\n%s", err, logs)
	}

	for _, want := range []string{
		"index.md: 1 diagram(s)",
		"Processed 1 diagram(s) in 1 file(s)",
		filepath.ToSlash(p.output) + "/",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "about.md") {
		t.Errorf("documents without diagrams should not be listed:\n%s", out)
	}

	got, err := os.ReadFile(filepath.Join(p.output, "index.md"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "# Home\n\n![Diagram](/diagrams/diagram_82682d8f229a.svg)\n"; string(got) != want {
		t.Errorf("index.md = %q, want %q", got, want)
	}
	svg, err := os.ReadFile(filepath.Join(p.diagrams, "diagram_82682d8f229a.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(svg) != "digraph { a -> b }" {
		t.Errorf("engine should echo the description, got %q", svg)
	}
}

func TestRootRunsBuild(t *testing.T) {
	p := newProject(t)
	write(t, filepath.Join(p.content, "a.md"), "```dot\ngraph { x }\n```")

	out, logs, err := execute(t, p.args()...)
	if err != nil {
		t.Fatalf("root error: %v\n%s", err, logs)
	}
	if !strings.Contains(out, "Processed 1 diagram(s) in 1 file(s)") {
		t.Errorf("root command should build:\n%s", out)
	}
}

func TestBuildTwiceUsesCache(t *testing.T) {
	p := newProject(t)
	write(t, filepath.Join(p.content, "a.md"), "```dot\ngraph { x }\n```")

	if _, _, err := execute(t, p.args("build")...); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, p.args("build")...)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Processed 0 diagram(s) in 0 file(s)", "1 diagram(s) reused from cache", "No diagrams found"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, _, err = execute(t, p.args("build", "--force")...)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Processed 1 diagram(s) in 1 file(s)") {
		t.Errorf("--force should re-render:\n%s", out)
	}
}

func TestBuildRenderFailureDoesNotFail(t *testing.T) {
	p := newProject(t)
	write(t, p.config, "processing:\n  command: \"false\"\n")
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	body := "# Doc\n```dot\ndigraph { a }\n```\n"
	write(t, filepath.Join(p.content, "a.md"), body)

	out, logs, err := execute(t, p.args("build")...)
	if err != nil {
		t.Fatalf("render failures must not fail the build: %v", err)
	}
	if !strings.Contains(logs, "failed to generate diagram") {
		t.Errorf("expected a warning in logs:\n%s", logs)
	}
	if !strings.Contains(out, "1 diagram(s) failed to render") {
		t.Errorf("expected a failure note in output:\n%s", out)
	}
	got, _ := os.ReadFile(filepath.Join(p.output, "a.md"))
	if string(got) != body {
		t.Errorf("failed block should stay in place, got %q", got)
	}
}

func TestBuildMalformedConfigFallsBack(t *testing.T) {
	p := newProject(t)
	write(t, p.config, "theme: [unclosed\n")
	write(t, filepath.Join(p.content, "a.md"), "plain\n")

	_, logs, err := execute(t, p.args("build")...)
	if err != nil {
		t.Fatalf("malformed config should fall back to defaults: %v", err)
	}
	if !strings.Contains(logs, "could not load config file") {
		t.Errorf("expected a config warning:\n%s", logs)
	}
}

func TestBuildFlagValidation(t *testing.T) {
	p := newProject(t)
	write(t, filepath.Join(p.content, "a.md"), "plain\n")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown engine", p.args("build", "--engine", "neato"), errors.ErrCodeInvalidEngine},
		{"relative url prefix", p.args("build", "--url-prefix", "img"), errors.ErrCodeInvalidInput},
		{"missing content", []string{"build", "--config", p.config, "--content", filepath.Join(p.root, "nope"), "--output", p.output, "--diagrams", p.diagrams}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildURLPrefix(t *testing.T) {
	p := newProject(t)
	write(t, filepath.Join(p.content, "a.md"), "```dot\ndigraph { a -> b }\n```")

	if _, _, err := execute(t, p.args("build", "--url-prefix", "/static/img")...); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(filepath.Join(p.output, "a.md"))
	if want := "![Diagram](/static/img/diagram_82682d8f229a.svg)"; string(got) != want {
		t.Errorf("a.md = %q, want %q", got, want)
	}
}

func TestBuildOptionsApply(t *testing.T) {
	base := config.Default()

	same := (&buildOptions{}).apply(base)
	if same.Processing != base.Processing {
		t.Error("no overrides should leave the config untouched")
	}

	cfg := (&buildOptions{force: true, noCache: true, engine: "builtin"}).apply(base)
	if !cfg.ForceRegenerate() || cfg.CacheEnabled() || cfg.Engine() != "builtin" {
		t.Errorf("overrides not applied: %+v", *cfg.Processing)
	}
	if base.ForceRegenerate() {
		t.Error("apply must not modify the original config")
	}
}

func TestCacheCommands(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "diagrams")
	store := cache.NewStore(dir, "")
	for _, desc := range []string{"digraph { a }", "digraph { b }"} {
		if err := store.Put(cache.Key(desc), []byte("<svg/>")); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := execute(t, "cache", "path", "--diagrams", dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), dir)
	}

	out, _, err = execute(t, "cache", "list", "--diagrams", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, cache.Filename(cache.Key("digraph { a }"))) || !strings.Contains(out, "Diagrams") {
		t.Errorf("cache list output:\n%s", out)
	}
	if !strings.Contains(out, dir) {
		t.Errorf("cache list should name the directory:\n%s", out)
	}

	out, _, err = execute(t, "cache", "clear", "--diagrams", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 2 cached diagram(s)") {
		t.Errorf("cache clear output:\n%s", out)
	}
	if entries, _ := store.Entries(); len(entries) != 0 {
		t.Errorf("cache should be empty, has %d entries", len(entries))
	}

	out, _, err = execute(t, "cache", "list", "--diagrams", dir)
	if err != nil || !strings.Contains(out, "Cache is empty") {
		t.Errorf("empty cache list = %q, %v", out, err)
	}
}

func TestPrintError(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&out, &errOut, LogInfo)

	base := t.TempDir()
	content := filepath.Join(base, "missing")
	cmd := c.RootCommand()
	cmd.SetArgs([]string{"build",
		"--content", content,
		"--output", filepath.Join(base, "out"),
		"--diagrams", filepath.Join(base, "diagrams"),
		"--config", filepath.Join(base, "none.yml"),
	})
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("build error = %v, want FILE_NOT_FOUND", err)
	}
	if strings.Contains(errOut.String(), "Error:") {
		t.Errorf("command errors should be left to the caller:\n%s", errOut.String())
	}

	errOut.Reset()
	c.PrintError(err)
	msg := errOut.String()
	if !strings.Contains(msg, "content directory "+content) {
		t.Errorf("PrintError() = %q, want the content path", msg)
	}
	if strings.Contains(msg, string(errors.ErrCodeFileNotFound)) {
		t.Errorf("PrintError() = %q, should not expose error codes", msg)
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagram_config.yml")

	out, _, err := execute(t, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if !strings.Contains(out, "Wrote default configuration") {
		t.Errorf("config init output:\n%s", out)
	}
	if _, _, err := execute(t, "config", "init", "--config", path); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("second init error = %v, want INVALID_PATH", err)
	}

	out, _, err = execute(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, empty, err := config.Parse([]byte(out), config.FormatYAML)
	if err != nil || empty {
		t.Fatalf("config show output does not parse: %v\n%s", err, out)
	}
	if cfg.Node == nil || cfg.Node.Shape == nil || cfg.Node.Shape.Text() != "box" {
		t.Errorf("shown config lost node.shape:\n%s", out)
	}

	out, _, err = execute(t, "config", "show", "--config", path, "--format", "toml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[node]") {
		t.Errorf("toml output:\n%s", out)
	}

	if _, _, err := execute(t, "config", "show", "--format", "json"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		512:     "512 B",
		1024:    "1.0 KB",
		1536:    "1.5 KB",
		1048576: "1.0 MB",
	}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}
