// Package cli implements the tablegen commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-tablegen/internal/app"
	"github.com/goliatone/go-tablegen/internal/config"
	"github.com/goliatone/go-tablegen/internal/logging"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	CommitSHA = "unknown"
)

// Env carries the process streams and collaborators commands use.
type Env struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Prompter Prompter

	configPath string
	logLevel   string
	logFormat  string
	app        *app.App
}

// DefaultEnv uses the process streams and survey prompts.
func DefaultEnv() *Env {
	return &Env{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr, Prompter: SurveyPrompter{}}
}

// NewRootCommand builds the tablegen command tree.
func NewRootCommand(env *Env) *cobra.Command {
	if env == nil {
		env = DefaultEnv()
	}
	root := &cobra.Command{
		Use:   "tablegen",
		Short: "Render configurable data tables",
		Long: `tablegen renders datasets as HTML, text or JSON tables using
table-type presets, caller configuration and automatic performance
strategies for large datasets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	root.SetVersionTemplate(fmt.Sprintf("tablegen version %s (commit %s)\n", Version, CommitSHA))
	root.SetIn(env.Stdin)
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	env.addPersistentFlags(root)

	root.AddCommand(
		newRenderCmd(env),
		newTypesCmd(env),
		newClassifyCmd(env),
		newServeCmd(env),
	)
	return root
}

func (env *Env) addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&env.configPath, "config", os.Getenv("TABLEGEN_CONFIG"), "TOML configuration file")
	cmd.PersistentFlags().StringVar(&env.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&env.logFormat, "log-format", "", "log format (text, json)")
}

// App loads configuration and wires the pipeline once per process.
func (env *Env) App() (*app.App, error) {
	if env.app != nil {
		return env.app, nil
	}
	cfg, err := config.Load(env.configPath)
	if err != nil {
		return nil, err
	}
	if env.logLevel != "" {
		cfg.Logging.Level = env.logLevel
	}
	if env.logFormat != "" {
		cfg.Logging.Format = env.logFormat
	}
	var logger *slog.Logger
	if env.Stderr == os.Stderr {
		logger = logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	} else {
		logger = logging.New(env.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	env.app = a
	return a, nil
}

// Execute runs the tablegen command tree with the process environment.
func Execute() error {
	env := DefaultEnv()
	if err := NewRootCommand(env).Execute(); err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return err
	}
	return nil
}
