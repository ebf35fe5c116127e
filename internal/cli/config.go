package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotprep/pkg/config"
	"github.com/matzehuels/dotprep/pkg/errors"
)

func (c *CLI) configCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the diagram configuration",
	}
	cmd.PersistentFlags().StringVarP(&path, "config", "c", config.DefaultPath, "configuration file (.yml/.yaml or .toml)")

	cmd.AddCommand(c.configShowCommand(&path))
	cmd.AddCommand(c.configInitCommand(&path))
	return cmd
}

// configShowCommand prints the configuration a build would use.
func (c *CLI) configShowCommand(path *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*path)
			if err != nil {
				loggerFromContext(cmd.Context()).Warn("could not load config file, using defaults", "path", *path, "err", err)
			}

			f := config.Format(format)
			if f != config.FormatYAML && f != config.FormatTOML {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (must be yaml or toml)", format)
			}
			data, err := config.Marshal(cfg, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", string(config.FormatYAML), "output format: yaml or toml")
	return cmd
}

// configInitCommand writes the default configuration.
func (c *CLI) configInitCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(*path); err != nil {
				return err
			}
			c.printSuccess("Wrote default configuration")
			c.printFile(*path)
			return nil
		},
	}
}
