package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/matzehuels/dotprep/pkg/errors"
)

// Command renders by running an external Graphviz executable.
type Command struct {
	// Path is the executable name or path, looked up in PATH.
	Path string

	// Args are passed to the executable. NewCommand sets -Tsvg.
	Args []string
}

// NewCommand returns a Command that runs path with -Tsvg.
func NewCommand(path string) *Command {
	return &Command{Path: path, Args: []string{"-Tsvg"}}
}

// Render pipes dot through the executable and returns its stdout.
// No timeout is imposed; cancelling ctx kills the process.
func (c *Command) Render(ctx context.Context, dot string) ([]byte, error) {
	bin, err := exec.LookPath(c.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineNotFound, err,
			"%s not found. Install Graphviz:\n  macOS:  brew install graphviz\n  Linux:  apt install graphviz", c.Path)
	}

	cmd := exec.CommandContext(ctx, bin, c.Args...)
	cmd.Stdin = strings.NewReader(dot)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, &errors.RenderError{
			Engine: c.Path,
			Stderr: strings.TrimSpace(errBuf.String()),
			Err:    err,
		}
	}
	return out.Bytes(), nil
}
