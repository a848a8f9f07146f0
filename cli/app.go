// ABOUTME: Wiring shared by every dealerdesk front end
// ABOUTME: Builds the logger, remote client, local fallback and store from config
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/dealerdesk/config"
	"github.com/harperreed/dealerdesk/localstore"
	"github.com/harperreed/dealerdesk/remote"
	"github.com/harperreed/dealerdesk/store"
)

// out is where commands print; tests swap it.
var out io.Writer = os.Stdout

var nowFunc = time.Now

// App is an initialized store with the resources backing it.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Store  *store.Store
	Report store.LoadReport

	fallback *localstore.Store
}

// OpenApp builds a store from cfg and loads both collections. logPath
// overrides cfg.LogFile when non-empty.
func OpenApp(ctx context.Context, cfg *config.Config, logPath string) (*App, error) {
	if logPath == "" {
		logPath = cfg.LogFile
	}
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	logger, err := config.NewLogger(cfg.LogLevel, logPath)
	if err != nil {
		return nil, err
	}

	fallback, err := localstore.Open(cfg.FallbackDir)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	return newApp(ctx, cfg, logger, fallback), nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, fallback *localstore.Store) *App {
	var rem store.Remote
	if !cfg.Offline {
		rem = remote.NewClient(remote.Config{
			BaseURL: cfg.RemoteURL,
			Timeout: cfg.Timeout,
		}, logger)
	}

	s := store.New(rem,
		store.WithLogger(logger),
		store.WithFallback(fallback),
	)
	report := s.Initialize(ctx)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    s,
		Report:   report,
		fallback: fallback,
	}
}

// Slots lists the local fallback slots currently holding data.
func (a *App) Slots() ([]string, error) {
	return a.fallback.Slots()
}

func (a *App) Close() error {
	_ = a.Logger.Sync()
	return a.fallback.Close()
}

// reportSave prints the outcome of a mutation. An unsaved change is an error.
func reportSave(status store.SaveStatus, what string) error {
	switch status {
	case store.SavedRemote:
		fmt.Fprintf(out, "✓ %s\n", what)
	case store.SavedLocally:
		fmt.Fprintf(out, "✓ %s\n", what)
		fmt.Fprintln(out, "⚠ Remote unavailable: saved locally only")
	default:
		return fmt.Errorf("%s, but the change could not be saved", what)
	}
	return nil
}
