// Command bassboard browses bass tournament leaderboards served by a
// spreadsheet-backed API.
//
// Usage:
//
//	bassboard serve --addr :9080
//	bassboard tui
//	bassboard events
//	bassboard board <event-id> --tab day1
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/bassboard/internal/adapters/source"
	service "github.com/okian/bassboard/internal/app"
	"github.com/okian/bassboard/internal/config"
	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/pkg/logger"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "bassboard",
		Short:        "Bass tournament leaderboard dashboard",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(tuiCmd())
	root.AddCommand(eventsCmd())
	root.AddCommand(boardCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup initializes logging and loads configuration (defaults -> optional
// file -> env).
func setup(ctx context.Context, opts ...logger.Option) (*config.Config, error) {
	if err := logger.Init(opts...); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// newClient builds the upstream API client from cfg.
func newClient(cfg *config.Config) (*source.Client, error) {
	actions := make(map[model.Tab]string, len(cfg.TabActions))
	for name, action := range cfg.TabActions {
		tab, err := model.ParseTab(name)
		if err != nil {
			return nil, fmt.Errorf("tab_actions: %w", err)
		}
		actions[tab] = action
	}

	return source.NewClient(cfg.APIBase,
		source.WithTimeout(cfg.RequestTimeout()),
		source.WithRequestsPerMinute(cfg.RequestsPerMinute),
		source.WithActionParam(cfg.ActionParam),
		source.WithEventIDParam(cfg.EventIDParam),
		source.WithEventsAction(cfg.EventsAction),
		source.WithTabActions(actions),
		source.WithWholePayloadFallback(cfg.WholePayloadFallback),
		source.WithUserAgent(cfg.UserAgent),
		source.WithLogger(logger.Named("source")),
	)
}

// enabledTabs parses the configured tab list and default tab.
func enabledTabs(cfg *config.Config) ([]model.Tab, model.Tab, error) {
	tabs := make([]model.Tab, 0, len(cfg.Tabs))
	for _, name := range cfg.Tabs {
		tab, err := model.ParseTab(name)
		if err != nil {
			return nil, "", fmt.Errorf("tabs: %w", err)
		}
		tabs = append(tabs, tab)
	}
	def, err := model.ParseTab(cfg.DefaultTab)
	if err != nil {
		return nil, "", fmt.Errorf("default_tab: %w", err)
	}
	return tabs, def, nil
}

// newService creates the dashboard service from cfg. It is not started.
func newService(cfg *config.Config, opts ...service.Option) (*service.Service, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	tabs, def, err := enabledTabs(cfg)
	if err != nil {
		return nil, err
	}

	opts = append([]service.Option{
		service.WithSource(client),
		service.WithTabs(tabs...),
		service.WithDefaultTab(def),
		service.WithLoadPolicy(cfg.LoadPolicy),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithLogger(logger.Named("service")),
	}, opts...)
	return service.New(opts...), nil
}
