// Package render turns DOT descriptions into SVG images.
//
// Two engines implement [Renderer]:
//
//   - [Command] runs an external Graphviz program (dot by default), feeding
//     the description on stdin and reading SVG from stdout.
//   - [Graphviz] lays out the description in-process with go-graphviz, so no
//     Graphviz installation is needed.
//
// A missing executable yields an ENGINE_NOT_FOUND error and a rejected
// description yields a [errors.RenderError] carrying the engine's stderr.
// Both are per-diagram failures (see [errors.IsRenderFailure]).
//
//	r, err := render.New(cfg)
//	svg, err := r.Render(ctx, "digraph { a -> b }")
//
// [errors.RenderError]: github.com/matzehuels/dotprep/pkg/errors.RenderError
// [errors.IsRenderFailure]: github.com/matzehuels/dotprep/pkg/errors.IsRenderFailure
package render
