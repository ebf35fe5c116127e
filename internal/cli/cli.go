// Package cli implements the dotprep command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotprep/pkg/buildinfo"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and completions.
const appName = "dotprep"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// out receives user-facing progress and results; the logger writes
	// diagnostics elsewhere.
	out io.Writer

	// errOut receives fatal command errors.
	errOut io.Writer
}

// New creates a CLI that prints results to out and logs to logw.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		out:    out,
		errOut: logw,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Run without a subcommand, it behaves like "dotprep build".
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool
	opts := newBuildOptions()

	root := &cobra.Command{
		Use:   appName,
		Short: "dotprep renders Graphviz diagrams embedded in markdown",
		Long: `dotprep preprocesses a static-site content tree. Fenced ` + "```dot" + ` blocks are
rendered to SVG, cached by content hash, and replaced with image references in
a generated copy of the tree. Source files are never modified.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.runBuild(cmd.Context(), opts)
			return err
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	opts.addFlags(root)

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
