package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/pagealign/internal/config"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}
			a.loader.PrintConfigInfo(cmd.ErrOrStderr())
			return nil
		},
	}

	var current bool
	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a configuration file with the defaults",
		Long: `Write a configuration file with the defaults, or with --current the
configuration resolved from the config file, environment and flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := ""
			if len(args) == 1 {
				filename = args[0]
			}
			what := "default"
			if current {
				what = "current"
				if err := a.loader.WriteConfigToFile(fileOrDefault(filename)); err != nil {
					return err
				}
			} else if err := config.GenerateDefaultConfigFile(filename); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s configuration to %s\n", what, fileOrDefault(filename))
			return err
		},
	}
	initCmd.Flags().BoolVar(&current, "current", false, "write the resolved configuration instead of the defaults")

	cmd.AddCommand(show, initCmd)
	return cmd
}

func fileOrDefault(filename string) string {
	if filename == "" {
		return config.ConfigFileName + ".yaml"
	}
	return filename
}
