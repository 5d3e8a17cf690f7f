// Package cmd holds the nestview command tree.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nestingglobal/nestview/internal/app"
	"github.com/nestingglobal/nestview/internal/config"
	"github.com/nestingglobal/nestview/internal/nestapi"
)

// tuiAnnotation marks commands that hand the terminal to the UI. They skip
// the stderr logger.
const tuiAnnotation = "nestview.tui"

// globals is the state shared by every command of one invocation.
type globals struct {
	configPath   string
	envFile      string
	logLevel     string
	logFormat    string
	prefsPath    string
	pushEndpoint string

	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	return root.ExecuteContext(ctx)
}

// NewRootCmd builds a fresh command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	g := &globals{logger: slog.New(slog.DiscardHandler), closeLog: func() error { return nil }}

	root := &cobra.Command{
		Use:   "nestview",
		Short: "Browse the property catalog from the terminal",
		Long: `nestview is a terminal client for the property listings service.

Run without a subcommand to open the interactive catalog. Listings are
painted from the local cache first, then replaced by the remote collection,
and kept current by the push channel.`,
		Annotations:   map[string]string{tuiAnnotation: "true"},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd, errOut)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return g.closeLog()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.browse(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default ~/.config/nestview/config.toml)")
	flags.StringVar(&g.envFile, "env-file", "", "dotenv file loaded before the environment is read (default ./.env when present)")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&g.logFormat, "log-format", "", "log format: text, pretty or json")
	addBrowseFlags(root.Flags(), g)

	root.AddCommand(
		newBrowseCmd(g),
		newExportCmd(g),
		newContactsCmd(g),
		newInquireCmd(g),
		newCacheCmd(g),
	)
	return root
}

// setup loads configuration, applies flag overrides and, for commands that
// keep the terminal, builds a stderr logger.
func (g *globals) setup(cmd *cobra.Command, errOut io.Writer) error {
	if err := config.LoadEnvFile(g.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	g.cfg = cfg

	if cmd.Annotations[tuiAnnotation] == "true" {
		return nil
	}
	logger, closeLog, err := app.NewLogger(cfg, errOut, false)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	g.logger = logger
	g.closeLog = closeLog
	g.logger.Debug("command started", "command", cmd.CommandPath(), "config", cfg)
	return nil
}

func (g *globals) client() (*nestapi.Client, error) {
	client, err := nestapi.NewClient(g.cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	return client, nil
}

func addBrowseFlags(flags *pflag.FlagSet, g *globals) {
	flags.StringVar(&g.prefsPath, "prefs", "", "preferences file (default ~/.config/nestview/prefs.toml)")
	flags.StringVar(&g.pushEndpoint, "push", "", "push endpoint: a Socket.IO URL or an amqp:// broker URL")
}
