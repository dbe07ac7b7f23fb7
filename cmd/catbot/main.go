package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xlsrln/cat-bot/internal/adapters/discord"
	"github.com/xlsrln/cat-bot/internal/adapters/sheet"
	"github.com/xlsrln/cat-bot/internal/adapters/tabular"
	"github.com/xlsrln/cat-bot/internal/app"
	"github.com/xlsrln/cat-bot/internal/config"
	"github.com/xlsrln/cat-bot/pkg/logger"
	"github.com/xlsrln/cat-bot/pkg/metrics"
)

// Metrics HTTP server timeout constants.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Optional .env next to the binary, the usual home of CATBOT_TOKEN.
	_ = godotenv.Load()

	if err := logger.Init(nil); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	mgr := metrics.New()

	client, err := sheet.NewClient(ctx, cfg.CredentialsFile)
	if err != nil {
		log.Error(ctx, "failed to init sheets client", logger.Error(err))
		return
	}
	doc, err := client.OpenOrCreate(ctx, cfg.SpreadsheetName, cfg.Writers)
	if err != nil {
		log.Error(ctx, "failed to open spreadsheet", logger.Error(err))
		return
	}
	log.Info(ctx, "spreadsheet ready",
		logger.String("name", cfg.SpreadsheetName),
		logger.String("url", doc.URL()))

	store := tabular.New(doc, tabular.WithMetrics(mgr))
	svc := app.New(store, app.WithMetrics(mgr))
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}

	bot, err := discord.New(cfg.Token, svc,
		discord.WithMetrics(mgr),
		discord.WithGuildID(cfg.GuildID),
		discord.WithEventMasterRole(cfg.EventMasterRole),
	)
	if err != nil {
		log.Error(ctx, "failed to create bot", logger.Error(err))
		return
	}
	if err := bot.Start(ctx); err != nil {
		log.Error(ctx, "failed to connect to discord", logger.Error(err))
		return
	}
	defer func() {
		if err := bot.Stop(); err != nil {
			log.Warn(ctx, "error closing discord session", logger.Error(err))
		}
	}()

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", mgr.Handler())
		metricsSrv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		}
		go func() {
			log.Info(ctx, "metrics listening", logger.String("addr", cfg.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "metrics server failed", logger.Error(err))
			}
		}()
	}

	log.Info(ctx, "bot running; press ctrl+c to exit")
	<-ctx.Done()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn(ctx, "metrics server shutdown failed", logger.Error(err))
		}
	}
	log.Info(ctx, "shutdown complete")
}
