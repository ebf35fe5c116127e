package render

import (
	"bytes"
	"context"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dotprep/pkg/errors"
)

// Graphviz renders in-process with go-graphviz.
type Graphviz struct{}

// NewGraphviz returns the builtin engine.
func NewGraphviz() *Graphviz {
	return &Graphviz{}
}

// Render parses dot and lays it out as SVG.
func (Graphviz) Render(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, &errors.RenderError{Engine: errors.EngineBuiltin, Err: err}
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, &errors.RenderError{Engine: errors.EngineBuiltin, Err: err}
	}
	return buf.Bytes(), nil
}
