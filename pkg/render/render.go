package render

import (
	"context"

	"github.com/matzehuels/dotprep/pkg/config"
	"github.com/matzehuels/dotprep/pkg/errors"
)

// Renderer renders one themed DOT description to image bytes.
type Renderer interface {
	Render(ctx context.Context, dot string) ([]byte, error)
}

// Func adapts a plain function to [Renderer].
type Func func(ctx context.Context, dot string) ([]byte, error)

// Render calls f.
func (f Func) Render(ctx context.Context, dot string) ([]byte, error) {
	return f(ctx, dot)
}

// New returns the engine selected by cfg.
func New(cfg config.Config) (Renderer, error) {
	switch engine := cfg.Engine(); engine {
	case errors.EngineDot:
		return NewCommand(cfg.EngineCommand()), nil
	case errors.EngineBuiltin:
		return NewGraphviz(), nil
	default:
		return nil, errors.ValidateEngine(engine)
	}
}
