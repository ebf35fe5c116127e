// Package config defines the diagram style and processing settings.
//
// A Config mirrors the optional settings file section by section. Every field
// is a pointer: nil means the file did not set it, and the theme injector
// then emits no attribute for it. Loading never merges a user file with
// [Default]; a partial file yields a partial Config.
package config

import "github.com/matzehuels/dotprep/pkg/errors"

// DefaultPath is the settings file looked up in the working directory.
const DefaultPath = "diagram_config.yml"

// Config is the full configuration. Treat it as immutable once loaded; use
// [Config.WithProcessing] to derive a variant.
type Config struct {
	Theme      *Theme      `yaml:"theme,omitempty" toml:"theme,omitempty"`
	Fonts      *Fonts      `yaml:"fonts,omitempty" toml:"fonts,omitempty"`
	Graph      *Graph      `yaml:"graph,omitempty" toml:"graph,omitempty"`
	Node       *Node       `yaml:"node,omitempty" toml:"node,omitempty"`
	Edge       *Edge       `yaml:"edge,omitempty" toml:"edge,omitempty"`
	Processing *Processing `yaml:"processing,omitempty" toml:"processing,omitempty"`
}

// Theme holds the color palette.
type Theme struct {
	Background  *Value `yaml:"background,omitempty" toml:"background,omitempty"`
	NodeFill    *Value `yaml:"node_fill,omitempty" toml:"node_fill,omitempty"`
	NodeStroke  *Value `yaml:"node_stroke,omitempty" toml:"node_stroke,omitempty"`
	TextColor   *Value `yaml:"text_color,omitempty" toml:"text_color,omitempty"`
	AccentColor *Value `yaml:"accent_color,omitempty" toml:"accent_color,omitempty"`
	EdgeColor   *Value `yaml:"edge_color,omitempty" toml:"edge_color,omitempty"`
}

// Fonts holds font faces and sizes per element kind.
type Fonts struct {
	NodeFont      *Value `yaml:"node_font,omitempty" toml:"node_font,omitempty"`
	EdgeFont      *Value `yaml:"edge_font,omitempty" toml:"edge_font,omitempty"`
	GraphFont     *Value `yaml:"graph_font,omitempty" toml:"graph_font,omitempty"`
	NodeFontSize  *Value `yaml:"node_fontsize,omitempty" toml:"node_fontsize,omitempty"`
	EdgeFontSize  *Value `yaml:"edge_fontsize,omitempty" toml:"edge_fontsize,omitempty"`
	GraphFontSize *Value `yaml:"graph_fontsize,omitempty" toml:"graph_fontsize,omitempty"`
}

// Graph holds graph-level attributes.
type Graph struct {
	BGColor    *Value     `yaml:"bgcolor,omitempty" toml:"bgcolor,omitempty"`
	DPI        *Value     `yaml:"dpi,omitempty" toml:"dpi,omitempty"`
	Attributes Attributes `yaml:"attributes,omitempty" toml:"attributes,omitempty"`
}

// Node holds node-level attributes.
type Node struct {
	Shape    *Value `yaml:"shape,omitempty" toml:"shape,omitempty"`
	Style    *Value `yaml:"style,omitempty" toml:"style,omitempty"`
	PenWidth *Value `yaml:"penwidth,omitempty" toml:"penwidth,omitempty"`
	Margin   *Value `yaml:"margin,omitempty" toml:"margin,omitempty"`
	Width    *Value `yaml:"width,omitempty" toml:"width,omitempty"`
	Height   *Value `yaml:"height,omitempty" toml:"height,omitempty"`
}

// Edge holds edge-level attributes.
type Edge struct {
	Arrowhead *Value `yaml:"arrowhead,omitempty" toml:"arrowhead,omitempty"`
	PenWidth  *Value `yaml:"penwidth,omitempty" toml:"penwidth,omitempty"`
	Style     *Value `yaml:"style,omitempty" toml:"style,omitempty"`
}

// Processing holds the pipeline switches.
type Processing struct {
	Cache           *bool   `yaml:"cache,omitempty" toml:"cache,omitempty"`
	ForceRegenerate *bool   `yaml:"force_regenerate,omitempty" toml:"force_regenerate,omitempty"`
	Verbose         *bool   `yaml:"verbose,omitempty" toml:"verbose,omitempty"`
	Engine          *string `yaml:"engine,omitempty" toml:"engine,omitempty"`
	Command         *string `yaml:"command,omitempty" toml:"command,omitempty"`
}

// Default returns the built-in configuration. Each call returns a fresh
// value, so callers may not observe each other's changes.
func Default() Config {
	return Config{
		Theme: &Theme{
			Background:  String("#2d2842"),
			NodeFill:    String("#1e1a2d"),
			NodeStroke:  String("#4e348a"),
			TextColor:   String("#eee"),
			AccentColor: String("#F0A9B8"),
			EdgeColor:   String("#F0A9B8"),
		},
		Fonts: &Fonts{
			NodeFont:      String("Inter"),
			EdgeFont:      String("Inter"),
			GraphFont:     String("Arimo"),
			NodeFontSize:  Int(12),
			EdgeFontSize:  Int(10),
			GraphFontSize: Int(14),
		},
		Graph: &Graph{
			BGColor: String("transparent"),
			DPI:     Int(96),
		},
		Node: &Node{
			Shape:    String("box"),
			Style:    String("rounded,filled"),
			PenWidth: String("1.5"),
		},
		Edge: &Edge{
			Arrowhead: String("vee"),
			PenWidth:  String("1.5"),
			Style:     String("solid"),
		},
		Processing: &Processing{
			Cache:           Bool(true),
			ForceRegenerate: Bool(false),
			Verbose:         Bool(false),
		},
	}
}

// CacheEnabled reports whether rendered diagrams may be reused.
// An absent processing.cache counts as enabled.
func (c Config) CacheEnabled() bool {
	if c.Processing == nil || c.Processing.Cache == nil {
		return true
	}
	return *c.Processing.Cache
}

// ForceRegenerate reports whether every diagram must be re-rendered.
func (c Config) ForceRegenerate() bool {
	return c.Processing != nil && c.Processing.ForceRegenerate != nil && *c.Processing.ForceRegenerate
}

// Verbose reports whether cache hits and config loading should be logged.
func (c Config) Verbose() bool {
	return c.Processing != nil && c.Processing.Verbose != nil && *c.Processing.Verbose
}

// Engine returns the configured layout engine name, defaulting to the
// external dot program.
func (c Config) Engine() string {
	if c.Processing == nil || c.Processing.Engine == nil || *c.Processing.Engine == "" {
		return errors.EngineDot
	}
	return *c.Processing.Engine
}

// EngineCommand returns the executable used by the external engine.
func (c Config) EngineCommand() string {
	if c.Processing == nil || c.Processing.Command == nil || *c.Processing.Command == "" {
		return "dot"
	}
	return *c.Processing.Command
}

// WithProcessing returns a copy of c whose processing section has been
// modified by fn. The receiver's processing section is left untouched.
func (c Config) WithProcessing(fn func(p *Processing)) Config {
	p := Processing{}
	if c.Processing != nil {
		p = *c.Processing
	}
	fn(&p)
	c.Processing = &p
	return c
}

// Validate checks the settings that select behavior rather than style.
func (c Config) Validate() error {
	return errors.ValidateEngine(c.Engine())
}

// Bool returns a pointer to b, for building a [Processing] section.
func Bool(b bool) *bool { return &b }

// Str returns a pointer to s, for building a [Processing] section.
func Str(s string) *string { return &s }
