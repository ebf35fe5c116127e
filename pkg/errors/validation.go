package errors

import (
	"path/filepath"
	"strings"
)

// Engine names accepted by processing.engine and --engine.
const (
	EngineDot     = "dot"
	EngineBuiltin = "builtin"
)

// ValidateEngine checks that name selects a known layout engine.
// The empty string selects the default external engine.
func ValidateEngine(name string) error {
	switch name {
	case "", EngineDot, EngineBuiltin:
		return nil
	}
	return New(ErrCodeInvalidEngine, "unknown engine %q (must be %q or %q)", name, EngineDot, EngineBuiltin)
}

// ValidateURLPrefix checks the public path images are referenced under.
// It must be absolute and must not end in a slash.
func ValidateURLPrefix(prefix string) error {
	if !strings.HasPrefix(prefix, "/") {
		return New(ErrCodeInvalidInput, "url prefix must start with '/': %q", prefix)
	}
	if len(prefix) > 1 && strings.HasSuffix(prefix, "/") {
		return New(ErrCodeInvalidInput, "url prefix must not end with '/': %q", prefix)
	}
	return nil
}

// ValidateOutputDir rejects an output directory that overlaps the content
// directory. The output tree is deleted and re-copied from content on every
// run, so it can be neither the content directory, an ancestor of it, nor a
// directory inside it.
func ValidateOutputDir(content, output string) error {
	if output == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}

	c, err := filepath.Abs(content)
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "resolve %s", content)
	}
	o, err := filepath.Abs(output)
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "resolve %s", output)
	}

	if within(o, c) || within(c, o) {
		return New(ErrCodeInvalidPath, "output directory %s overlaps content directory %s", output, content)
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
