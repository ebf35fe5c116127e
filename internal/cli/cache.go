package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotprep/pkg/cache"
	"github.com/matzehuels/dotprep/pkg/site"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear rendered diagrams",
	}
	cmd.PersistentFlags().StringVar(&dir, "diagrams", site.DefaultDiagramsDir, "directory for rendered diagrams")

	cmd.AddCommand(c.cachePathCommand(&dir))
	cmd.AddCommand(c.cacheListCommand(&dir))
	cmd.AddCommand(c.cacheClearCommand(&dir))
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the diagram directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(cache.NewStore(*dir, "").Dir())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), abs)
			return err
		},
	}
}

// cacheListCommand creates the "cache list" subcommand.
func (c *CLI) cacheListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rendered diagrams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := cache.NewStore(*dir, "")
			entries, err := store.Entries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				c.printInfo("Cache is empty")
				return nil
			}

			var total int64
			for _, e := range entries {
				total += e.Size
				c.printEntry(filepath.Base(e.Path), formatBytes(e.Size)+"  "+e.ModTime.Format("2006-01-02 15:04"))
			}
			c.printNewline()
			c.printKeyValue("Directory", store.Dir())
			c.printKeyValue("Diagrams", strconv.Itoa(len(entries)))
			c.printKeyValue("Total", formatBytes(total))
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all rendered diagrams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := cache.NewStore(*dir, "")
			n, err := store.Clear()
			if err != nil {
				return err
			}
			if n == 0 {
				c.printInfo("Cache is empty")
				return nil
			}
			c.printSuccess("Cleared %d cached diagram(s)", n)
			c.printDetail("Directory: %s", store.Dir())
			return nil
		},
	}
}
