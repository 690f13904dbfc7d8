package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	"github.com/orgball2608/insta-feed-harvester/internal/browser"
	"github.com/orgball2608/insta-feed-harvester/internal/browser/chromedpimpl"
	"github.com/orgball2608/insta-feed-harvester/internal/monitor"
	"github.com/orgball2608/insta-feed-harvester/internal/monitor/monitorimpl"
	"github.com/orgball2608/insta-feed-harvester/internal/notifier/telegramimpl"
	"github.com/orgball2608/insta-feed-harvester/internal/ratelimit"
	repositories "github.com/orgball2608/insta-feed-harvester/internal/repositories/fx"
	"github.com/orgball2608/insta-feed-harvester/internal/scanner"
	"github.com/orgball2608/insta-feed-harvester/internal/scanner/scannerimpl"
	"github.com/orgball2608/insta-feed-harvester/internal/selectors"
	"github.com/orgball2608/insta-feed-harvester/internal/storage"
	"github.com/orgball2608/insta-feed-harvester/internal/storage/fileimpl"
	"github.com/orgball2608/insta-feed-harvester/pkg/config"
	"github.com/orgball2608/insta-feed-harvester/pkg/logger"
	"github.com/orgball2608/insta-feed-harvester/pkg/pgx"
	"github.com/orgball2608/insta-feed-harvester/pkg/recency"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var App = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		selectors.Default,
		recency.DefaultVocabulary,
		func() ratelimit.Limiter {
			return ratelimit.NewInMemoryLimiter(1, 3*time.Second, 5)
		},
	),
	fx.Provide(
		fx.Annotate(
			chromedpimpl.New,
			fx.As(new(browser.Session)),
		),
		fx.Annotate(
			scannerimpl.New,
			fx.As(new(scanner.Client)),
		),
		fx.Annotate(
			fileimpl.New,
			fx.As(new(storage.Client)),
		),
		fx.Annotate(
			monitorimpl.New,
			fx.As(new(monitor.Client)),
		),
		telegramimpl.New,
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func migrate(c *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	return goose.Up(db, filepath.Join(wd, "migrations"))
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, mClient monitor.Client) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go startHttpServer(log, cfg)

			if err := mClient.ScheduleScans(ctx); err != nil {
				log.Error("Failed to schedule scans", "error", err)
				return err
			}
			if err := mClient.ScheduleCleanup(ctx); err != nil {
				log.Error("Failed to schedule archive cleanup", "error", err)
				return err
			}

			// Kick off one cycle immediately so a fresh deploy does not wait
			// for the first cron tick.
			go func() {
				if err := mClient.RunCycle(ctx); err != nil {
					log.Error("Initial scan cycle failed", "error", err)
				}
			}()

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start", "error", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger) {
	logger.Info("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
