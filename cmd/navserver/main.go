package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gridnav/internal/agent"
	"github.com/udisondev/gridnav/internal/api"
	"github.com/udisondev/gridnav/internal/config"
	"github.com/udisondev/gridnav/internal/db"
	"github.com/udisondev/gridnav/internal/geo"
	"github.com/udisondev/gridnav/internal/pathfind"
	"github.com/udisondev/gridnav/internal/planner"
)

const ConfigPath = "config/navserver.yaml"

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("GRIDNAV_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadNav(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	agent.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("gridnav server starting", "log_level", cfg.LogLevel, "addr", cfg.HTTP.Addr())

	mapper, err := geo.NewGridMapper(cfg.Grid.CellSize, geo.Vec2{X: cfg.Grid.OriginX, Y: cfg.Grid.OriginY})
	if err != nil {
		return fmt.Errorf("creating grid mapper: %w", err)
	}

	// Layer source: database or .grid directory
	world := geo.NewWorld()
	load := func(ctx context.Context) error { return world.LoadDir(cfg.Grid.LayersDir) }
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		layers := database.Layers()
		load = func(ctx context.Context) error { return layers.LoadInto(ctx, world, cfg.Grid.MapName) }
	}
	if err := load(ctx); err != nil {
		return fmt.Errorf("loading layers: %w", err)
	}

	svc, err := planner.NewService(world, mapper, planner.Config{
		CacheSize:       cfg.Planner.CacheSize,
		Workers:         cfg.Planner.Workers,
		DefaultStrategy: cfg.Planner.DefaultStrategy,
	})
	if err != nil {
		return fmt.Errorf("creating planner: %w", err)
	}

	mgr := agent.NewTickManager(cfg.Agents.TickInterval)
	if err := spawnAgents(mgr, cfg.Agents, world, mapper); err != nil {
		return fmt.Errorf("spawning agents: %w", err)
	}
	slog.Info("agents spawned", "count", mgr.Count())

	h := server.Default(server.WithHostPorts(cfg.HTTP.Addr()))
	api.Handler{Planner: svc, Agents: mgr}.RegisterRoutes(h)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := mgr.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("tick manager: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting http server", "addr", cfg.HTTP.Addr())
		if err := h.Run(); err != nil && gctx.Err() == nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := h.Shutdown(sctx); err != nil {
			slog.Warn("http shutdown", "err", err)
		}
		return nil
	})

	// SIGHUP reloads layers
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				if err := load(gctx); err != nil {
					slog.Error("reloading layers", "err", err)
					continue
				}
				slog.Info("layers reloaded", "fingerprint", world.Fingerprint(), "purged", svc.Purge())
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// spawnAgents creates the configured agents. Chasers are created after all
// plain followers so they can reference any of them.
func spawnAgents(mgr *agent.TickManager, cfg config.AgentsConfig, world *geo.World, mapper geo.Mapper) error {
	strategy, err := pathfind.ByName(cfg.Strategy)
	if err != nil {
		return err
	}
	fcfg := agent.Config{Speed: cfg.Speed, Tolerance: cfg.Tolerance}

	followers := make(map[string]*agent.Follower, len(cfg.Initial))
	for _, e := range cfg.Initial {
		if _, dup := followers[e.ID]; dup {
			return fmt.Errorf("duplicate agent id %q", e.ID)
		}
		f, err := agent.NewFollower(e.ID, geo.Vec2{X: e.X, Y: e.Y}, fcfg, strategy, world, mapper)
		if err != nil {
			return err
		}
		followers[e.ID] = f
	}

	for _, e := range cfg.Initial {
		f := followers[e.ID]
		if e.Chase == "" {
			mgr.Register(e.ID, f)
			continue
		}
		prey, ok := followers[e.Chase]
		if !ok {
			return fmt.Errorf("agent %q chases unknown agent %q", e.ID, e.Chase)
		}
		mgr.Register(e.ID, agent.NewChaser(f, agent.FollowerTarget(prey), cfg.ReplanInterval))
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
