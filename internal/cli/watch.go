package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotprep/pkg/watch"
)

func (c *CLI) watchCommand() *cobra.Command {
	opts := newBuildOptions()
	var window time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild whenever content or configuration changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), opts, window)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().DurationVar(&window, "debounce", watch.DefaultWindow, "quiet period before a rebuild")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, opts *buildOptions, window time.Duration) error {
	logger := loggerFromContext(ctx)

	if _, err := c.runBuild(ctx, opts); err != nil {
		return err
	}

	w, err := watch.New(logger, window)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.AddTree(opts.site.ContentDir); err != nil {
		return err
	}
	if err := w.AddFile(opts.configPath); err != nil {
		return err
	}
	for _, dir := range []string{opts.site.DiagramsDir, opts.site.OutputDir} {
		if err := w.Ignore(dir); err != nil {
			return err
		}
	}

	c.printNewline()
	c.printInfo("Watching %s for changes (Ctrl-C to stop)", opts.site.ContentDir)

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		logger.Debug("rebuilding", "changed", len(changed))
		c.printNewline()
		_, err := c.runBuild(ctx, opts)
		return err
	})
}
