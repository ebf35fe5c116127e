package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestDebouncerCoalesces(t *testing.T) {
	got := make(chan []string, 4)
	d := NewDebouncer(30*time.Millisecond, func(paths []string) { got <- paths })

	d.Add("/c")
	d.Add("/a")
	d.Add("/b")
	d.Add("/a")

	select {
	case paths := <-got:
		if want := []string{"/a", "/b", "/c"}; !reflect.DeepEqual(paths, want) {
			t.Errorf("paths = %v, want %v", paths, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}

	select {
	case paths := <-got:
		t.Errorf("unexpected second callback with %v", paths)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerStop(t *testing.T) {
	fired := make(chan struct{}, 1)
	d := NewDebouncer(20*time.Millisecond, func([]string) { fired <- struct{}{} })
	d.Add("/x")
	d.Stop()

	select {
	case <-fired:
		t.Error("stopped debouncer should not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New(log.New(io.Discard), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestRelevant(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, "content")
	if err := os.MkdirAll(filepath.Join(content, "static", "diagrams"), 0755); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t)
	if err := w.AddTree(content); err != nil {
		t.Fatal(err)
	}
	if err := w.AddFile(filepath.Join(root, "diagram_config.yml")); err != nil {
		t.Fatal(err)
	}
	if err := w.Ignore(filepath.Join(content, "static", "diagrams")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(content, "index.md"), true},
		{filepath.Join(content, "posts", "a.md"), true},
		{filepath.Join(root, "diagram_config.yml"), true},
		{filepath.Join(root, "other.yml"), false},
		{filepath.Join(root, "generated", "content", "index.md"), false},
		{filepath.Join(content, ".git", "HEAD"), false},
		{filepath.Join(content, "node_modules", "x", "y.js"), false},
		{filepath.Join(content, "static", "diagrams", "diagram_1.svg"), false},
	}
	for _, tt := range tests {
		if got := w.Relevant(tt.path); got != tt.want {
			t.Errorf("Relevant(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestAddTreeMissing(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.AddTree(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("AddTree() on a missing directory should fail")
	}
}

func TestRunRebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t)
	if err := w.AddTree(root); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rebuilds := make(chan []string, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(ctx context.Context, changed []string) error {
			rebuilds <- changed
			return nil
		})
	}()

	target := filepath.Join(root, "index.md")
	if err := os.WriteFile(target, []byte("# hi\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-rebuilds:
		found := false
		for _, p := range changed {
			if p == target {
				found = true
			}
		}
		if !found {
			t.Errorf("changed = %v, want it to contain %s", changed, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after write")
	}

	// A directory created after start is watched too.
	sub := filepath.Join(root, "posts")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	drain(rebuilds)

	nested := filepath.Join(sub, "new.md")
	if err := os.WriteFile(nested, []byte("new\n"), 0644); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(5 * time.Second)
	for seen := false; !seen; {
		select {
		case changed := <-rebuilds:
			for _, p := range changed {
				if p == nested {
					seen = true
				}
			}
		case <-deadline:
			t.Fatal("no rebuild for file in new directory")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func drain(ch chan []string) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
