// Command campus-inbox is a terminal client for the campus platform's
// notification inbox and discussion threads.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nhle/campus-inbox/internal/api"
	"github.com/nhle/campus-inbox/internal/app"
	"github.com/nhle/campus-inbox/internal/credential"
	"github.com/nhle/campus-inbox/internal/inbox"
	"github.com/nhle/campus-inbox/internal/logging"
	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/store"
	appsync "github.com/nhle/campus-inbox/internal/sync"
	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/toast"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "campus-inbox: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	flags := pflag.NewFlagSet("campus-inbox", pflag.ContinueOnError)
	configPath := flags.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	flags.String("server.base_url", "", "backend root URL")
	flags.Int("inbox.poll_interval_sec", 0, "seconds between inbox refreshes")
	flags.String("display.theme", "", "color scheme (default, mono)")
	flags.String("log.level", "", "log level (debug, info, warn, error)")
	flags.String("log.file", "", "log file path")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := model.LoadConfig(*configPath, flags)
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return err
	}
	defer logging.Sync()
	logger := logging.Logger()

	if err := theme.Apply(cfg.Display.Theme); err != nil {
		logger.Warn("applying theme", zap.Error(err))
	}

	tokens := credential.NewKeyringStore(model.ConfigDir())

	authFailures := make(chan struct{}, 1)
	client := api.NewClient(cfg.Server.BaseURL, tokens,
		api.WithTimeout(cfg.Server.RequestTimeout()),
		api.WithRetryDelay(cfg.Server.RetryDelay()),
		api.WithLogger(logging.WithModule("api")),
		api.WithAuthFailureHandler(func() {
			select {
			case authFailures <- struct{}{}:
			default:
			}
		}),
	)

	inboxOpts := []inbox.Option{inbox.WithLogger(logging.WithModule("inbox"))}
	if cfg.Inbox.Snapshot {
		snap, err := store.NewSQLiteStore(cfg.Inbox.SnapshotPath)
		if err != nil {
			logger.Warn("opening inbox snapshot", zap.Error(err))
		} else {
			defer snap.Close()
			inboxOpts = append(inboxOpts, inbox.WithSnapshot(snap))
		}
	}
	deliveries := inbox.NewStore(client, inboxOpts...)
	deliveries.Warm(context.Background())

	poller := appsync.New(deliveries, cfg.Inbox.PollInterval(), logging.WithModule("sync"))
	defer poller.Stop()

	root := app.New(app.Options{
		Backend:      client,
		Tokens:       tokens,
		Inbox:        deliveries,
		Poller:       poller,
		Toasts:       toast.NewBus(cfg.Display.ToastTimeout()),
		AuthFailures: authFailures,
		Config:       cfg,
		ConfigPath:   *configPath,
		SaveConfig:   model.SaveConfig,
		Logger:       logging.WithModule("app"),
	})

	logger.Info("starting", zap.String("server", cfg.Server.BaseURL))
	if _, err := tea.NewProgram(root, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
