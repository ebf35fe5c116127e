// Package theme injects configured style attributes into DOT descriptions.
//
// The injected statements are placed after the description's own global
// attribute statements. Graphviz applies global attribute statements in
// order, so the theme overrides same-named attributes the author set earlier
// while attributes set on individual nodes and edges still win.
package theme

import (
	"strings"

	"github.com/matzehuels/dotprep/pkg/config"
)

// attrPrefixes start the statement lines the injection point moves past.
var attrPrefixes = []string{"graph [", "node [", "edge [", "rankdir", "ranksep", "nodesep"}

// Node and edge attributes that are always emitted without quotes, whatever
// type the config file gave them.
var (
	nodeUnquoted = map[string]bool{"width": true, "height": true, "penwidth": true, "fontsize": true}
	edgeUnquoted = map[string]bool{"penwidth": true, "fontsize": true, "arrowhead": true}
)

// Apply returns description with graph, node and edge attribute statements
// built from cfg. The result is not validated; a malformed description is
// reported by the renderer.
func Apply(description string, cfg config.Config) string {
	graphAttrs := GraphAttrs(cfg)
	nodeAttrs := NodeAttrs(cfg)
	edgeAttrs := EdgeAttrs(cfg)

	lines := strings.Split(strings.TrimSpace(description), "\n")
	at := injectionPoint(lines)
	if at < 0 || (len(graphAttrs) == 0 && len(nodeAttrs) == 0 && len(edgeAttrs) == 0) {
		return strings.Join(lines, "\n")
	}

	out := make([]string, 0, len(lines)+3)
	out = append(out, lines[:at+1]...)
	if len(graphAttrs) > 0 {
		out = append(out, statement("graph", graphAttrs))
	}
	if len(nodeAttrs) > 0 {
		out = append(out, statement("node", nodeAttrs))
	}
	if len(edgeAttrs) > 0 {
		out = append(out, statement("edge", edgeAttrs))
	}
	out = append(out, lines[at+1:]...)
	return strings.Join(out, "\n")
}

// injectionPoint returns the index of the line after which the theme goes:
// the last global attribute statement following the graph's opening line,
// or the opening line itself. It returns -1 if there is no opening line.
func injectionPoint(lines []string) int {
	at := -1
	for i, line := range lines {
		if at < 0 {
			if strings.Contains(line, "{") && strings.Contains(strings.ToLower(line), "graph") {
				at = i
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		for _, p := range attrPrefixes {
			if strings.HasPrefix(trimmed, p) {
				at = i
				break
			}
		}
	}
	return at
}

func statement(kind string, attrs []string) string {
	return "    " + kind + " [" + strings.Join(attrs, ", ") + "];"
}

// GraphAttrs returns the graph-level attributes in emission order.
func GraphAttrs(cfg config.Config) []string {
	var attrs []string
	if g := cfg.Graph; g != nil {
		if g.BGColor != nil {
			attrs = append(attrs, "bgcolor="+g.BGColor.Quoted())
		}
		if g.DPI != nil {
			attrs = append(attrs, "dpi="+g.DPI.Text())
		}
		for _, a := range g.Attributes {
			attrs = append(attrs, a.Name+"="+a.Value.Quoted())
		}
	}
	if f := cfg.Fonts; f != nil {
		if f.GraphFont != nil {
			attrs = append(attrs, "fontname="+f.GraphFont.Quoted())
		}
		if f.GraphFontSize != nil {
			attrs = append(attrs, "fontsize="+f.GraphFontSize.Text())
		}
	}
	return attrs
}

// attr is a named, possibly absent, attribute value.
type attr struct {
	name  string
	value *config.Value
}

// NodeAttrs returns the node-level attributes in emission order.
func NodeAttrs(cfg config.Config) []string {
	theme, fonts, node := themeOf(cfg), fontsOf(cfg), cfg.Node
	if node == nil {
		node = &config.Node{}
	}
	return format([]attr{
		{"shape", node.Shape},
		{"style", node.Style},
		{"fillcolor", theme.NodeFill},
		{"color", theme.NodeStroke},
		{"fontcolor", theme.TextColor},
		{"fontname", fonts.NodeFont},
		{"fontsize", fonts.NodeFontSize},
		{"penwidth", node.PenWidth},
		{"margin", node.Margin},
		{"width", node.Width},
		{"height", node.Height},
	}, nodeUnquoted)
}

// EdgeAttrs returns the edge-level attributes in emission order.
func EdgeAttrs(cfg config.Config) []string {
	theme, fonts, edge := themeOf(cfg), fontsOf(cfg), cfg.Edge
	if edge == nil {
		edge = &config.Edge{}
	}
	return format([]attr{
		{"color", theme.EdgeColor},
		{"fontcolor", theme.EdgeColor},
		{"fontname", fonts.EdgeFont},
		{"fontsize", fonts.EdgeFontSize},
		{"arrowhead", edge.Arrowhead},
		{"penwidth", edge.PenWidth},
		{"style", edge.Style},
	}, edgeUnquoted)
}

func format(in []attr, unquoted map[string]bool) []string {
	var out []string
	for _, a := range in {
		if a.value == nil {
			continue
		}
		if unquoted[a.name] {
			out = append(out, a.name+"="+a.value.Text())
		} else {
			out = append(out, a.name+"="+a.value.Quoted())
		}
	}
	return out
}

func themeOf(cfg config.Config) *config.Theme {
	if cfg.Theme == nil {
		return &config.Theme{}
	}
	return cfg.Theme
}

func fontsOf(cfg config.Config) *config.Fonts {
	if cfg.Fonts == nil {
		return &config.Fonts{}
	}
	return cfg.Fonts
}
