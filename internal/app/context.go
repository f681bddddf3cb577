package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"planline/internal/config"
	"planline/internal/db"
	"planline/internal/migrate"
	"planline/internal/repo"
	"planline/internal/store"
)

// Options locate a workspace and its collaborators. Zero values fall back to
// the workspace defaults.
type Options struct {
	Workspace  string
	ConfigFile string
	DBFile     string
	ActorID    string
	Logger     *zap.Logger
	Registerer prometheus.Registerer
	Now        func() time.Time
}

// App is an opened workspace: migrated database, loaded config and a store
// with the configured plans synced into it.
type App struct {
	DB     *sql.DB
	Config *config.Config
	Repo   repo.Repo
	Store  *store.Store
	Log    *zap.Logger
}

// LoadConfig prefers an explicit file, then the workspace planline.yml, then
// the embedded default.
func LoadConfig(workspace, file string) (*config.Config, error) {
	if file != "" {
		return config.FromFile(file)
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

// Open prepares the workspace for use by the CLI or the server.
func Open(ctx context.Context, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cfg, err := LoadConfig(opts.Workspace, opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.DBFile == "" {
		if _, err := db.EnsureWorkspace(opts.Workspace); err != nil {
			return nil, fmt.Errorf("create workspace: %w", err)
		}
	}
	conn, err := db.Open(db.Config{Workspace: opts.Workspace, File: opts.DBFile})
	if err != nil {
		return nil, err
	}
	applied, err := migrate.Apply(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	for _, name := range applied {
		log.Info("migration applied", zap.String("name", name))
	}
	p := store.NewSQLPersister(conn, now)
	if err := p.SyncPlans(ctx, cfg.Plans); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sync plans: %w", err)
	}
	s := store.New(p, cfg)
	s.Log = log
	s.Now = now
	s.ActorID = opts.ActorID
	if opts.Registerer != nil {
		s.Metrics = store.NewMetrics(opts.Registerer)
	}
	return &App{DB: conn, Config: cfg, Repo: p.Repo, Store: s, Log: log}, nil
}

func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
