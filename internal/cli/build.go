package cli

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotprep/pkg/cache"
	"github.com/matzehuels/dotprep/pkg/config"
	"github.com/matzehuels/dotprep/pkg/errors"
	"github.com/matzehuels/dotprep/pkg/observability"
	"github.com/matzehuels/dotprep/pkg/preprocess"
	"github.com/matzehuels/dotprep/pkg/render"
	"github.com/matzehuels/dotprep/pkg/site"
)

// buildOptions holds the flags shared by build, watch and the root command.
type buildOptions struct {
	configPath string
	site       site.Options
	urlPrefix  string
	engine     string
	force      bool
	noCache    bool
}

func newBuildOptions() *buildOptions {
	return &buildOptions{}
}

func (o *buildOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", config.DefaultPath, "configuration file (.yml/.yaml or .toml)")
	f.StringVar(&o.site.ContentDir, "content", site.DefaultContentDir, "source content directory")
	f.StringVarP(&o.site.OutputDir, "output", "o", site.DefaultOutputDir, "generated content directory (replaced on every run)")
	f.StringVar(&o.site.DiagramsDir, "diagrams", site.DefaultDiagramsDir, "directory for rendered diagrams")
	f.StringVar(&o.urlPrefix, "url-prefix", cache.DefaultURLPrefix, "public path diagrams are referenced under")
	f.StringVar(&o.engine, "engine", "", `layout engine: "dot" or "builtin" (overrides config)`)
	f.BoolVarP(&o.force, "force", "f", false, "re-render every diagram")
	f.BoolVar(&o.noCache, "no-cache", false, "render diagrams even when cached")
}

// apply layers flag overrides onto the processing section of cfg.
func (o *buildOptions) apply(cfg config.Config) config.Config {
	if !o.force && !o.noCache && o.engine == "" {
		return cfg
	}
	return cfg.WithProcessing(func(p *config.Processing) {
		if o.force {
			p.ForceRegenerate = config.Bool(true)
		}
		if o.noCache {
			p.Cache = config.Bool(false)
		}
		if o.engine != "" {
			p.Engine = config.Str(o.engine)
		}
	})
}

func (c *CLI) buildCommand() *cobra.Command {
	opts := newBuildOptions()
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render diagrams and write the generated content tree",
		Long: `Build copies the content directory to the output directory and replaces
every ` + "```dot" + ` block in its markdown files with a reference to the rendered SVG.

Diagrams that fail to render are reported and left in place; they do not
fail the build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.runBuild(cmd.Context(), opts)
			return err
		},
	}
	opts.addFlags(cmd)
	return cmd
}

// loadConfig reads the configuration file and applies flag overrides.
// An unreadable file is reported and replaced by the defaults.
func (c *CLI) loadConfig(ctx context.Context, opts *buildOptions) (config.Config, error) {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(opts.configPath)
	switch {
	case err != nil:
		logger.Warn("could not load config file, using defaults", "path", opts.configPath, "err", err)
	case fileExists(opts.configPath):
		logger.Debug("loaded configuration", "path", opts.configPath)
	default:
		logger.Debug("no config file, using defaults", "path", opts.configPath)
	}

	cfg = opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Verbose() {
		logger.SetLevel(LogDebug)
	}
	return cfg, nil
}

// runBuild performs one full preprocessing run and prints its summary.
func (c *CLI) runBuild(ctx context.Context, opts *buildOptions) (site.Summary, error) {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig(ctx, opts)
	if err != nil {
		return site.Summary{}, err
	}
	if err := errors.ValidateURLPrefix(opts.urlPrefix); err != nil {
		return site.Summary{}, err
	}
	renderer, err := render.New(cfg)
	if err != nil {
		return site.Summary{}, err
	}

	stats := &observability.Counter{}
	hooks := observability.Multi(&progressHooks{cli: c, contentDir: opts.site.ContentDir}, stats)
	store := cache.NewStore(opts.site.DiagramsDir, opts.urlPrefix)
	proc := preprocess.NewProcessor(cfg, renderer, store, logger, hooks)

	c.printInfo("Preprocessing %s into %s", opts.site.ContentDir, opts.site.OutputDir)
	logger.Debug("build settings", "engine", cfg.Engine(), "cache", cfg.CacheEnabled(), "force", cfg.ForceRegenerate())

	prog := newProgress(logger)
	sum, err := site.Run(ctx, opts.site, proc)
	if err != nil {
		return sum, err
	}
	prog.done("Build finished")

	c.printSummary(sum, stats.Stats(), opts.site.OutputDir)
	return sum, nil
}

func (c *CLI) printSummary(sum site.Summary, stats observability.Stats, outputDir string) {
	c.printNewline()
	c.printSuccess("Processed %s diagram(s) in %s file(s)",
		styleNumber.Render(strconv.Itoa(sum.Diagrams)), styleNumber.Render(strconv.Itoa(sum.Files)))
	if stats.CacheHits > 0 {
		c.printDetail("%d diagram(s) reused from cache", stats.CacheHits)
	}
	if stats.Failures > 0 {
		c.printWarning("%d diagram(s) failed to render and were left as code blocks", stats.Failures)
	}
	c.printFile(filepath.ToSlash(outputDir) + "/")
	if sum.Diagrams == 0 {
		c.printDetail("No diagrams found. Use ```dot code blocks to add Graphviz diagrams.")
	}
}

// progressHooks prints a line for every document that produced diagrams.
type progressHooks struct {
	observability.NoopHooks
	cli        *CLI
	contentDir string
}

func (h *progressHooks) OnDocument(_ context.Context, source string, diagrams int) {
	if diagrams == 0 {
		return
	}
	rel, err := filepath.Rel(h.contentDir, source)
	if err != nil {
		rel = source
	}
	h.cli.printSuccess("%s: %d diagram(s)", filepath.ToSlash(rel), diagrams)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
