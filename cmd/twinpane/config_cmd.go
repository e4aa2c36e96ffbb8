package main

import (
	"fmt"
	"os"
	"strings"

	"twinpane/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd groups the configuration subcommands
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigThemesCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	var theme string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if path == "" {
				return fmt.Errorf("cannot determine config location, use --config")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", path)
			}

			fresh := config.New()
			if theme != "" {
				fresh.ApplyTheme(theme)
			}
			if err := config.SaveConfig(fresh, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successText("Wrote "+path))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().StringVar(&theme, "theme", "", "theme to start with ("+strings.Join(config.ListThemes(), ", ")+")")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", infoText(configPath()), data)
			return nil
		},
	}
}

func newConfigThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the built-in color themes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListThemes() {
				marker := "  "
				if name == cfg.Theme.Name {
					marker = emphasisText("* ")
				}
				fmt.Fprintln(cmd.OutOrStdout(), marker+name)
			}
		},
	}
}
