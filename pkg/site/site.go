// Package site runs the preprocessor over a whole content tree.
//
// The output directory is rebuilt from scratch on every run: it is removed,
// recreated as a copy of the content directory, and then every markdown file
// from the original content tree is rewritten into it. The diagrams
// directory is shared across runs and acts as the image cache.
package site

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/dotprep/pkg/errors"
)

// Default locations, relative to the working directory.
const (
	DefaultContentDir  = "content"
	DefaultOutputDir   = "generated/content"
	DefaultDiagramsDir = "generated/diagrams"
)

// Options locate the trees a run reads and writes.
type Options struct {
	ContentDir  string
	OutputDir   string
	DiagramsDir string
}

// WithDefaults fills empty fields with the default locations.
func (o Options) WithDefaults() Options {
	if o.ContentDir == "" {
		o.ContentDir = DefaultContentDir
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.DiagramsDir == "" {
		o.DiagramsDir = DefaultDiagramsDir
	}
	return o
}

// Validate rejects option sets that would make the output tree overwrite
// or swallow the content tree.
func (o Options) Validate() error {
	return errors.ValidateOutputDir(o.ContentDir, o.OutputDir)
}

// DocumentProcessor rewrites one markdown document from src to dst and
// returns the number of freshly rendered diagrams.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, src, dst string) (int, error)
}

// DocumentResult is the outcome for one markdown file.
type DocumentResult struct {
	// Path is relative to the content directory, slash separated.
	Path     string
	Diagrams int
}

// Summary aggregates a run. Files counts only documents with at least one
// freshly rendered diagram.
type Summary struct {
	Files     int
	Diagrams  int
	Documents []DocumentResult
}

// Run rebuilds the output tree from the content tree and processes every
// markdown file with proc. Documents are visited in lexical path order.
func Run(ctx context.Context, opts Options, proc DocumentProcessor) (Summary, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return Summary{}, err
	}

	info, err := os.Stat(opts.ContentDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Summary{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "content directory %s", opts.ContentDir)
		}
		return Summary{}, errors.Wrap(errors.ErrCodeInternal, err, "content directory %s", opts.ContentDir)
	}
	if !info.IsDir() {
		return Summary{}, errors.New(errors.ErrCodeInvalidPath, "content path %s is not a directory", opts.ContentDir)
	}
	// Copy and scan the real directory so a linked content root is walked.
	root, err := filepath.EvalSymlinks(opts.ContentDir)
	if err != nil {
		return Summary{}, errors.Wrap(errors.ErrCodeInternal, err, "resolve %s", opts.ContentDir)
	}
	if err := errors.ValidateOutputDir(root, opts.OutputDir); err != nil {
		return Summary{}, err
	}

	if err := os.MkdirAll(opts.DiagramsDir, 0755); err != nil {
		return Summary{}, errors.Wrap(errors.ErrCodeInternal, err, "create %s", opts.DiagramsDir)
	}
	if err := os.RemoveAll(opts.OutputDir); err != nil {
		return Summary{}, errors.Wrap(errors.ErrCodeInternal, err, "remove %s", opts.OutputDir)
	}
	if err := CopyTree(root, opts.OutputDir); err != nil {
		return Summary{}, errors.Wrap(errors.ErrCodeInternal, err, "copy %s to %s", opts.ContentDir, opts.OutputDir)
	}

	docs, err := Markdown(root)
	if err != nil {
		return Summary{}, errors.Wrap(errors.ErrCodeInternal, err, "scan %s", root)
	}

	var sum Summary
	for _, rel := range docs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		dst := filepath.Join(opts.OutputDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return sum, errors.Wrap(errors.ErrCodeInternal, err, "create %s", filepath.Dir(dst))
		}
		n, err := proc.ProcessDocument(ctx, filepath.Join(opts.ContentDir, rel), dst)
		if err != nil {
			return sum, err
		}
		sum.Documents = append(sum.Documents, DocumentResult{Path: filepath.ToSlash(rel), Diagrams: n})
		if n > 0 {
			sum.Files++
			sum.Diagrams += n
		}
	}
	return sum, nil
}

// Markdown returns the paths of all *.md files under root, relative to
// root and sorted lexically. Linked files are included; linked directories
// are not descended into.
func Markdown(root string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				return nil
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		docs = append(docs, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(docs)
	return docs, nil
}
