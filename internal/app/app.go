package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nestingglobal/nestview/internal/config"
	"github.com/nestingglobal/nestview/internal/favorites"
	"github.com/nestingglobal/nestview/internal/logging"
	"github.com/nestingglobal/nestview/internal/prefs"
	"github.com/nestingglobal/nestview/internal/ui"
)

// Options configure the nestview TUI session.
type Options struct {
	Config       config.Config
	PrefsPath    string // empty uses default ~/.config/nestview/prefs.toml
	PushEndpoint string // empty derives it from Config
}

// NewLogger builds the session logger writing to w, fanned out to Fluentd
// when the config names a host.
func NewLogger(cfg config.Config, w io.Writer, noColor bool) (*slog.Logger, func() error, error) {
	return logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Writer:  w,
		NoColor: noColor,
		Fluent: logging.FluentOptions{
			Host: cfg.FluentHost,
			Port: cfg.FluentPort,
		},
	})
}

// Run boots the nestview TUI until the user quits or ctx is cancelled. The
// terminal belongs to the UI, so logs go to the configured log file.
func Run(ctx context.Context, opts Options) (err error) {
	cfg := opts.Config

	var logOut io.Writer = io.Discard
	logPath := ""
	if file, ferr := logging.OpenFile(cfg.LogFile); ferr == nil {
		defer func() { _ = file.Close() }()
		logOut = file
		logPath = cfg.LogFile
	}

	logger, closeLog, err := NewLogger(cfg, logOut, true)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("flush log sink: %w", cerr))
		}
	}()
	logger.Info("starting nestview", "config", cfg)

	rt, err := Open(ctx, cfg, OpenOptions{Logger: logger, PushEndpoint: opts.PushEndpoint})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.Warn("shutdown incomplete", "error", cerr)
		}
	}()

	changes, stop := rt.Store.Subscribe()
	defer stop()

	userPrefs := prefs.Load(opts.PrefsPath)
	err = ui.Run(ui.Options{
		Context:   ctx,
		Store:     rt.Store,
		API:       rt.Client,
		Changes:   changes,
		Contacts:  rt.Contacts,
		Favorites: &favorites.Tracker{},
		LogPath:   logPath,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		Logger:    logger,
	})
	logger.Info("nestview exiting", "error", err)
	return err
}
