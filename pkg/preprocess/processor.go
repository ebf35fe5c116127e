// Package preprocess replaces fenced dot blocks in markdown with references
// to rendered SVG images.
//
// Each block is keyed by the hash of its trimmed text. A block is rendered
// only when its image is missing from the cache, when regeneration is forced
// or when caching is disabled; otherwise the cached image is referenced
// as-is. Identical blocks anywhere in the tree share one image.
package preprocess

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotprep/pkg/cache"
	"github.com/matzehuels/dotprep/pkg/config"
	"github.com/matzehuels/dotprep/pkg/errors"
	"github.com/matzehuels/dotprep/pkg/observability"
	"github.com/matzehuels/dotprep/pkg/render"
	"github.com/matzehuels/dotprep/pkg/theme"
)

// Processor rewrites documents one at a time. It is not safe for
// concurrent use: cache files are written without locking.
type Processor struct {
	Config   config.Config
	Renderer render.Renderer
	Cache    *cache.Store
	Logger   *log.Logger
	Hooks    observability.Hooks
}

// NewProcessor creates a processor. A nil logger means log.Default() and
// nil hooks mean no hooks.
func NewProcessor(cfg config.Config, r render.Renderer, store *cache.Store, logger *log.Logger, hooks observability.Hooks) *Processor {
	if logger == nil {
		logger = log.Default()
	}
	if hooks == nil {
		hooks = observability.NoopHooks{}
	}
	return &Processor{
		Config:   cfg,
		Renderer: r,
		Cache:    store,
		Logger:   logger,
		Hooks:    hooks,
	}
}

// ProcessDocument reads src, replaces its diagram blocks and writes the
// result to dst, whose directory must exist. It returns the number of
// diagrams freshly rendered; cache hits and failed renders are not counted.
//
// Render failures are logged and leave the block untouched. Read and write
// failures are returned.
func (p *Processor) ProcessDocument(ctx context.Context, src, dst string) (int, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", src)
		}
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "read %s", src)
	}

	out, count, err := p.ProcessText(ctx, src, string(data))
	if err != nil {
		return 0, err
	}

	// Replace dst rather than writing through it; dst may be a link.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "replace %s", dst)
	}
	if err := os.WriteFile(dst, []byte(out), 0644); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "write %s", dst)
	}
	p.Hooks.OnDocument(ctx, src, count)
	return count, nil
}

// ProcessText returns text with every renderable diagram block replaced by
// an image reference, and the number of fresh renders. source names the
// document in warnings and hooks.
func (p *Processor) ProcessText(ctx context.Context, source, text string) (string, int, error) {
	blocks := FindBlocks(text)
	if len(blocks) == 0 {
		return text, 0, nil
	}

	count := 0
	// Back to front, so earlier offsets stay valid as later spans change.
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		description := strings.TrimSpace(b.Body)
		key := cache.Key(description)

		if p.shouldRender(key) {
			ok, err := p.renderBlock(ctx, source, key, description)
			if err != nil {
				return "", 0, err
			}
			if !ok {
				continue
			}
			count++
		} else {
			p.Hooks.OnCacheHit(ctx, source, key)
			p.Logger.Debug("using cached diagram", "file", source, "diagram", cache.Filename(key))
		}

		text = text[:b.Start] + "![Diagram](" + p.Cache.URL(key) + ")" + text[b.End:]
	}
	return text, count, nil
}

func (p *Processor) shouldRender(key string) bool {
	return !p.Cache.Has(key) || p.Config.ForceRegenerate() || !p.Config.CacheEnabled()
}

// renderBlock renders one description into the cache. ok is false when the
// engine failed; err is set only for failures that must abort the run.
func (p *Processor) renderBlock(ctx context.Context, source, key, description string) (ok bool, err error) {
	start := time.Now()
	svg, err := p.Renderer.Render(ctx, theme.Apply(description, p.Config))
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		p.Hooks.OnRender(ctx, source, key, elapsed, err)
		p.Logger.Warn("failed to generate diagram", "file", source, "err", err)
		return false, nil
	}

	if err := p.Cache.Put(key, svg); err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal, err, "write %s", p.Cache.Path(key))
	}
	p.Hooks.OnRender(ctx, source, key, elapsed, nil)
	p.Logger.Debug("rendered diagram", "file", source, "diagram", cache.Filename(key), "duration", elapsed.Round(time.Millisecond))
	return true, nil
}
