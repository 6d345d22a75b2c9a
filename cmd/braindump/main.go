// Command braindump runs the WhatsApp brain-dump scheduling server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/daniel5812/brain-dump-server/internal/app"
	"github.com/daniel5812/brain-dump-server/internal/config"
	"github.com/daniel5812/brain-dump-server/internal/health"
	"github.com/daniel5812/brain-dump-server/internal/observe"
	"github.com/daniel5812/brain-dump-server/internal/server"
)

// version is stamped by the build via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration (watched for hot reload) ───────────────────────────
	logLevel := new(slog.LevelVar)
	var appRef atomic.Pointer[app.App]

	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		applyReload(&appRef, logLevel, old, new)
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "braindump: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "braindump: %v\n", err)
		}
		return 1
	}
	defer watcher.Stop()
	cfg := watcher.Current()

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("brain-dump server starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.ListenAddr(),
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Application ───────────────────────────────────────────────────────────
	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}
	appRef.Store(application)

	printStartupSummary(cfg)

	// ── HTTP server ───────────────────────────────────────────────────────────
	checks := health.New(application.HealthCheckers()...)
	srv := server.New(cfg.ListenAddr(), application, checks, observe.DefaultMetrics())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return application.Run(gctx) })

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")

	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Hot reload ────────────────────────────────────────────────────────────────

// applyReload applies the hot-reloadable parts of a config change: log level
// and the user allow-list. Everything else only takes effect on restart.
func applyReload(appRef *atomic.Pointer[app.App], logLevel *slog.LevelVar, old, new *config.Config) {
	diff := config.Diff(old, new)

	if diff.LogLevelChanged {
		logLevel.Set(slogLevel(diff.NewLogLevel))
		slog.Info("log level updated", "level", diff.NewLogLevel)
	}
	if diff.AllowedUsersChanged {
		if a := appRef.Load(); a != nil {
			a.SetAllowedUsers(diff.NewAllowedUsers)
			slog.Info("user allow-list updated", "count", len(diff.NewAllowedUsers))
		}
	}
	if diff.RestartRequired {
		slog.Warn("config change requires a restart to take effect")
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║      brain-dump — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printLine("LLM", cfg.LLM.Name+" / "+cfg.LLM.Model)
	if cfg.Storage.PostgresDSN != "" {
		printLine("Storage", "postgres")
	} else {
		printLine("Storage", "in-memory")
	}
	if cfg.Messaging.Disabled {
		printLine("WhatsApp", "(disabled)")
	} else {
		printLine("WhatsApp", "green-api")
	}
	if cfg.Todoist.APIToken != "" {
		printLine("Todoist", "configured")
	} else {
		printLine("Todoist", "(not configured)")
	}
	if cfg.Calendar.CalendarID != "" {
		printLine("Calendar", cfg.Calendar.CalendarID)
	} else {
		printLine("Calendar", "(not configured)")
	}
	if cfg.Auth.Disabled {
		printLine("Auth", "DISABLED")
	} else {
		printLine("Auth", "hmac")
	}
	printLine("Allow-list", fmt.Sprintf("%d users", len(cfg.Auth.AllowedUsers)))
	tz := cfg.Timezone
	if tz == "" {
		tz = config.DefaultTimezone
	}
	printLine("Timezone", tz)
	printLine("Listen addr", cfg.ListenAddr())
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printLine(key, value string) {
	if len([]rune(value)) > 19 {
		value = string([]rune(value)[:16]) + "…"
	}
	fmt.Printf("║  %-12s : %-19s  ║\n", key, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
