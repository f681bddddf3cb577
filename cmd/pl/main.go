package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"planline/internal/app"
	"planline/internal/config"
	"planline/internal/db"
	"planline/internal/lifecycle"
	"planline/internal/migrate"
	"planline/internal/repo"
	"planline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "pl",
	Short: "Planline CLI",
	Long: `Planline tracks a local plan through its statutory stages.
Core concepts:
- Workspace: the .planline directory holding the plan database; planline.yml next to it holds plans, rules and seed content.
- Plan: one local plan; each plan keeps its own state and one is active at a time.
- Milestones and timeline: the programme dates plus the timetable, notice and scoping stamps.
- Consultations: scoping, content and proposed rounds; representations move unread -> triaged -> summarized.
- Gateways: G1, G2 and G3 assessments; readiness decides when a pack may be submitted.
- Evidence, monitoring signals and spatial options make up the working library.
- Event log: every change is recorded, view with 'pl log tail'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PLANLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().String("config", "", "config file (default <workspace>/planline.yml)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier recorded in the event log")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log store activity to stderr")
	for _, name := range []string{"workspace", "config", "json", "actor-id", "verbose"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(homeCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(stageCmd())
	rootCmd.AddCommand(readingCmd())
	rootCmd.AddCommand(pressuresCmd())
	rootCmd.AddCommand(milestoneCmd())
	rootCmd.AddCommand(timelineCmd())
	rootCmd.AddCommand(consultCmd())
	rootCmd.AddCommand(gatewayCmd())
	rootCmd.AddCommand(evidenceCmd())
	rootCmd.AddCommand(signalCmd())
	rootCmd.AddCommand(siteCmd())
	rootCmd.AddCommand(optionCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tokenCmd())
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active plan, stage and gateway readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				p, err := a.Store.ActivePlan(ctx)
				if err != nil {
					return err
				}
				st, err := a.Store.State(ctx)
				if err != nil {
					return err
				}
				rs, err := a.Store.AllReadiness(ctx)
				if err != nil {
					return err
				}
				open, err := a.Store.SubmissionOpen(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{
						"plan":            p,
						"stage":           st.ActiveStage,
						"gateways":        st.Gateways,
						"readiness":       rs,
						"submission_open": open,
					})
				}
				fmt.Printf("Plan: %s (%s, %s)\n", p.Name, p.ID, p.Status)
				fmt.Printf("Stage: %s\n", st.ActiveStage)
				tw := newTable("Gateway", "Status", "Ready", "Reason", "Hint")
				for _, r := range rs {
					tw.AppendRow(table.Row{r.Gateway, st.Gateways[r.Gateway].Status, r.OK, r.Reason, r.Hint})
				}
				tw.Render()
				fmt.Printf("Submission open: %t\n", open)
				return nil
			})
		},
	}
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect workspace config",
		Long:  "planline.yml lists the plans, the numeric rules used by readiness and the home summary, reading profiles, pressures and the seed content of new plans.",
	}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default planline.yml into the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(viper.GetString("workspace"), viper.GetString("config"))
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate config",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := app.LoadConfig(viper.GetString("workspace"), viper.GetString("config"))
			if viper.GetBool("json") {
				msg := ""
				if err != nil {
					msg = err.Error()
				}
				return printJSON(map[string]any{"ok": err == nil, "error": msg})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "Every accepted change to a plan, newest first.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var f repo.EventFilter
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events of the active plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				p, err := a.Store.ActivePlan(ctx)
				if err != nil {
					return err
				}
				f.PlanID = p.ID
				events, err := a.Repo.LatestEvents(ctx, n, f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := newTable("ID", "Time", "Type", "Entity", "Actor", "Payload")
				for _, e := range events {
					tw.AppendRow(table.Row{e.ID, e.TS, e.Type, e.EntityKind + ":" + e.EntityID, e.ActorID, e.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&f.Type, "type", "", "event type filter")
	cmd.Flags().StringVar(&f.EntityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&f.EntityID, "entity-id", "", "entity id")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and report the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.Open(db.Config{Workspace: viper.GetString("workspace")})
			if err != nil {
				return err
			}
			defer conn.Close()
			applied, err := migrate.Apply(cmd.Context(), conn)
			if err != nil {
				return err
			}
			v, err := migrate.Version(cmd.Context(), conn)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"applied": applied, "version": v})
			}
			for _, name := range applied {
				fmt.Println("applied", name)
			}
			fmt.Printf("schema version %d\n", v)
			return nil
		},
	}
}

// serveEnv is read from the environment; flags override it.
type serveEnv struct {
	Addr      string        `env:"PLANLINE_ADDR" envDefault:"127.0.0.1:8080"`
	BasePath  string        `env:"PLANLINE_BASE_PATH" envDefault:"/v0"`
	Env       string        `env:"PLANLINE_ENV" envDefault:"production"`
	JWTSecret string        `env:"PLANLINE_JWT_SECRET"`
	DevLogin  bool          `env:"PLANLINE_DEV_LOGIN"`
	TokenTTL  time.Duration `env:"PLANLINE_TOKEN_TTL" envDefault:"12h"`
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		Long:  "Serves the planline API. Set PLANLINE_JWT_SECRET to require bearer tokens; without it every request runs as X-Actor-Id or the local user.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var senv serveEnv
			if err := env.Parse(&senv); err != nil {
				return fmt.Errorf("read environment: %w", err)
			}
			if addr != "" {
				senv.Addr = addr
			}
			if basePath != "" {
				senv.BasePath = basePath
			}
			log, err := newLogger(senv.Env)
			if err != nil {
				return err
			}
			defer log.Sync()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			a, err := app.Open(cmd.Context(), app.Options{
				Workspace:  viper.GetString("workspace"),
				ConfigFile: viper.GetString("config"),
				ActorID:    viper.GetString("actor-id"),
				Logger:     log,
				Registerer: reg,
			})
			if err != nil {
				return err
			}
			defer a.Close()
			if senv.JWTSecret == "" {
				log.Warn("PLANLINE_JWT_SECRET not set; API is unauthenticated")
			}
			handler, err := server.New(server.Config{
				Store:    a.Store,
				Repo:     a.Repo,
				BasePath: senv.BasePath,
				Auth: server.AuthConfig{
					JWTSecret: senv.JWTSecret,
					DevLogin:  senv.DevLogin && senv.Env != "production",
					TokenTTL:  senv.TokenTTL,
				},
				Log:        log,
				Gatherer:   reg,
				Registerer: reg,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: senv.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			log.Info("serving planline API",
				zap.String("addr", senv.Addr),
				zap.String("base_path", senv.BasePath),
				zap.Bool("auth", senv.JWTSecret != ""))
			fmt.Printf("Serving Planline API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", senv.Addr, senv.BasePath, senv.BasePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default PLANLINE_ADDR or 127.0.0.1:8080)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (default PLANLINE_BASE_PATH or /v0)")
	return cmd
}

func tokenCmd() *cobra.Command {
	var actor string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with PLANLINE_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			var senv serveEnv
			if err := env.Parse(&senv); err != nil {
				return err
			}
			if actor == "" {
				actor = viper.GetString("actor-id")
			}
			if ttl == 0 {
				ttl = senv.TokenTTL
			}
			token, err := server.SignToken(senv.JWTSecret, actor, ttl, time.Now())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]string{"token": token})
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "token subject (default --actor-id)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime")
	return cmd
}

// --- helpers ---

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func cliLogger() *zap.Logger {
	if !viper.GetBool("verbose") {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	log := cliLogger()
	defer log.Sync()
	a, err := app.Open(ctx, app.Options{
		Workspace:  viper.GetString("workspace"),
		ConfigFile: viper.GetString("config"),
		ActorID:    viper.GetString("actor-id"),
		Logger:     log,
	})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newTable(header ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row(header))
	return tw
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printError reports lifecycle rejections by kind so scripts can match on it.
func printError(err error) {
	var le *lifecycle.Error
	if errors.As(err, &le) {
		if viper.GetBool("json") {
			_ = printJSON(map[string]any{"error": map[string]any{"code": le.Kind, "message": le.Error(), "details": le.Details}})
			return
		}
		fmt.Fprintf(os.Stderr, "error (%s): %s\n", le.Kind, le.Error())
		return
	}
	fmt.Fprintln(os.Stderr, "error:", err)
}
