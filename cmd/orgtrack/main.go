package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tgienger/orgtrack/internal/config"
	"github.com/tgienger/orgtrack/internal/db"
	"github.com/tgienger/orgtrack/internal/graphql"
	"github.com/tgienger/orgtrack/internal/logger"
	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/mutation"
	"github.com/tgienger/orgtrack/internal/store"
	"github.com/tgienger/orgtrack/internal/tenant"
	"github.com/tgienger/orgtrack/internal/ui"
	"github.com/tgienger/orgtrack/internal/ui/views"
	viewcache "github.com/tgienger/orgtrack/internal/views"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to orgtrack.toml (default: search . and the user config dir)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&showVersion, "v", false, "Print version and exit (shorthand)")
	flag.Parse()

	if showVersion {
		fmt.Printf("orgtrack %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// preferences are always local, whichever backend owns the data
	database, err := db.New(cfg.Storage.Path, db.WithLogger(log))
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer database.Close()

	backend, err := newBackend(cfg, database, log)
	if err != nil {
		return err
	}
	log.Info("orgtrack starting",
		zap.String("version", version),
		zap.String("backend", cfg.Backend.Mode),
		zap.String("storage", cfg.Storage.Path))

	prefs := database.Settings()
	cache := viewcache.NewCache(viewcache.WithCacheLogger(log))
	var program *tea.Program
	resolver := tenant.NewResolver(backend, prefs,
		tenant.WithLogger(log),
		tenant.WithDefaultOrganization(cfg.Tenant.DefaultOrganization()),
		tenant.WithSwitchHook(func(org models.Organization) {
			if program != nil {
				go program.Send(ui.OrganizationReplaced{Organization: org})
			}
		}),
	)
	// organization list refreshes also refresh the resolver's selection
	cache.Register(viewcache.Organizations(), func(ctx context.Context) (any, error) {
		orgs, err := resolver.Reload(ctx)
		return orgs, err
	})

	app := ui.NewApp(ui.Deps{
		Env: views.Env{
			Ctx:         ctx,
			Reader:      viewcache.NewReader(backend, cache),
			Coordinator: mutation.New(backend, cache, resolver, mutation.WithLogger(log)),
			Author:      cfg.Tenant.ContactEmail,
		},
		Resolver:    resolver,
		Preferences: prefs,
		Logger:      log,
	})

	program = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running application: %w", err)
	}
	log.Info("orgtrack stopped")
	return nil
}

func newBackend(cfg *config.Config, database *db.DB, log *zap.Logger) (store.Store, error) {
	if cfg.Backend.Mode != config.ModeGraphQL {
		return database, nil
	}
	client, err := graphql.New(graphql.Config{
		Endpoint: cfg.Backend.Endpoint,
		Timeout:  cfg.Backend.Timeout,
		Token:    cfg.Backend.Token,
		Headers:  cfg.Backend.Headers,
	}, graphql.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("initializing graphql client: %w", err)
	}
	return client, nil
}
