package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/pagealign/internal/config"
	"github.com/MeKo-Tech/pagealign/internal/version"
)

// app holds the state shared by the commands of one root command.
type app struct {
	v       *viper.Viper
	loader  *config.Loader
	cfg     *config.Config
	cfgFile string
	// local holds the flag bindings of each subcommand. Subcommands share
	// keys such as output.overlay_dir, so only the running command binds.
	local map[*cobra.Command]map[string]*pflag.Flag
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := GetRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns a freshly built root command. Tests use it to run
// commands without sharing flag state.
func GetRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	a.loader = config.NewLoaderWithViper(a.v)

	rootCmd := &cobra.Command{
		Use:   "pagealign",
		Short: "Keep OCR page layouts geometrically and textually consistent",
		Long: `pagealign maps segmentation and recognition output of an OCR engine onto a
hierarchical page layout (regions, lines, words, glyphs) and keeps its
geometry and text consistent.

Engine output is replayed from YAML files, so every stage can be run and
inspected on its own.

Examples:
  pagealign segment --page page.yaml --image page.png --segmentation seg.yaml
  pagealign recognize --page page.yaml --image page.png --records records.yaml
  pagealign aggregate --page page.yaml --level glyph --overwrite
  pagealign config show`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			for key, flag := range a.local[cmd] {
				a.bind(key, flag)
			}
			if err := a.loadConfig(); err != nil {
				return err
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), a.cfg))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "",
		"config file (default is search in ., $HOME, $XDG_CONFIG_HOME/pagealign, /etc/pagealign)")
	flags.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("format", config.FormatYAML, "output format for pages written to stdout (yaml, text)")
	flags.Int("workers", 0, "number of pages processed in parallel (default: number of CPUs)")
	flags.Bool("progress", false, "draw a progress bar on stderr instead of logging progress")
	a.bind("verbose", flags.Lookup("verbose"))
	a.bind("log_level", flags.Lookup("log-level"))
	a.bind("output.format", flags.Lookup("format"))
	a.bind("parallel.max_workers", flags.Lookup("workers"))
	a.bind("output.progress", flags.Lookup("progress"))

	rootCmd.AddCommand(
		newSegmentCommand(a),
		newRecognizeCommand(a),
		newBinarizeCommand(a),
		newAggregateCommand(a),
		newConfigCommand(a),
	)
	return rootCmd
}

// bind binds a flag to a configuration key. Only flags set on the command
// line override the configuration.
func (a *app) bind(key string, flag *pflag.Flag) {
	_ = a.v.BindPFlag(key, flag)
}

// bindOnRun binds a flag of cmd to a configuration key when cmd is the
// command being executed.
func (a *app) bindOnRun(cmd *cobra.Command, key string, flag *pflag.Flag) {
	if a.local == nil {
		a.local = make(map[*cobra.Command]map[string]*pflag.Flag)
	}
	if a.local[cmd] == nil {
		a.local[cmd] = make(map[string]*pflag.Flag)
	}
	a.local[cmd][key] = flag
}

func (a *app) loadConfig() error {
	cfg, err := a.loader.LoadWithFile(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

// newLogger returns a JSON logger at the configured level. Logs go to w so
// that stdout only carries command output.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
