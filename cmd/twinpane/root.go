package main

import (
	"io"

	"twinpane/internal/config"
	"twinpane/internal/log"
	"twinpane/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	debug   bool
	logFile string
)

// NewRootCmd creates the root command. Without a subcommand it opens the
// two panels, optionally at the given directories.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "twinpane [left-dir] [right-dir]",
		Short:   "A dual-pane terminal file manager",
		Long:    `twinpane shows two directories side by side and copies, moves, renames and deletes between them, with undo.`,
		Version: version,
		Args:    cobra.MaximumNArgs(2),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig()
			if err != nil {
				return err
			}
			configureLogging(cmd)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := tui.Options{Config: cfg, ConfigPath: configPath()}
			if len(args) > 0 {
				opts.Left = args[0]
			}
			if len(args) > 1 {
				opts.Right = args[1]
			}
			return runTUI(opts)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/twinpane/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug lines to the log")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (overrides log.file)")

	rootCmd.AddCommand(NewCopyCmd())
	rootCmd.AddCommand(NewMoveCmd())
	rootCmd.AddCommand(NewDeleteCmd())
	rootCmd.AddCommand(NewMkdirCmd())
	rootCmd.AddCommand(NewRenameCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	path, err := config.DefaultPath()
	if err != nil {
		return ""
	}
	return path
}

func loadConfig() (*config.Config, error) {
	path := configPath()
	if path == "" {
		return config.New(), nil
	}
	return config.LoadConfigFile(path)
}

// configureLogging points the logger at the configured file. The TUI owns
// the terminal, so without a file it logs nowhere; batch commands fall
// back to stderr.
func configureLogging(cmd *cobra.Command) {
	file := cfg.Log.File
	if logFile != "" {
		file = logFile
	}
	isTUI := cmd.Root() == cmd

	opts := []log.Option{log.WithLevel(cfg.Log.Level)}
	switch {
	case file != "":
		opts = append(opts, log.WithFile(file))
	case isTUI:
		opts = append(opts, log.WithOutput(io.Discard))
	default:
		opts = append(opts, log.WithOutput(cmd.ErrOrStderr()))
	}
	if cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	if debug || cfg.Log.Debug {
		opts = append(opts, log.WithLevel("debug"))
		log.SetDebug(true)
	}
	log.Configure(opts...)
}

func runTUI(opts tui.Options) error {
	m, err := tui.New(opts)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
