package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codyseavey/jeeves/internal/api"
	"github.com/codyseavey/jeeves/internal/bot"
	"github.com/codyseavey/jeeves/internal/config"
	"github.com/codyseavey/jeeves/internal/database"
	"github.com/codyseavey/jeeves/internal/logging"
	"github.com/codyseavey/jeeves/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat bot and the HTTP API",
	Long: `Serve loads the card catalog, connects to Discord and starts the HTTP API.
The bot is skipped when no Discord token is configured, which is handy for
exercising the API locally.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noBot, _ := cmd.Flags().GetBool("no-bot")
		return serve(noBot)
	},
}

func init() {
	serveCmd.Flags().Bool("no-bot", false, "serve the HTTP API only")
}

func serve(noBot bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Lookup history is optional
	var recorder services.LookupRecorder
	var history *database.HistoryStore
	if cfg.Server.DBPath != "" {
		if err := database.Initialize(cfg.Server.DBPath, logger); err != nil {
			return err
		}
		if err := database.RunMigrations(database.GetDB(), cfg.Server.HistoryRetention.Duration, logger); err != nil {
			logger.Warn("history migrations failed", zap.Error(err))
		}
		history = database.NewHistoryStore(database.GetDB(), logger.Named("history"))
		recorder = history
	}

	c, err := newCore(cfg, recorder, logger)
	if err != nil {
		return err
	}
	c.catalog.OnReload(func(*services.Snapshot) { c.resolver.Purge() })

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loadCtx, loadCancel := context.WithTimeout(ctx, cfg.Catalog.FetchTimeout.Duration)
	if _, err := c.catalog.Reload(loadCtx); err != nil {
		// Serve anyway; lookups report an empty catalog until a reload works.
		logger.Error("initial catalog load failed", zap.Error(err))
	}
	loadCancel()

	var discord *bot.Bot

	applyConfig := func(next *config.Config) {
		c.apply(next)
		if discord != nil {
			discord.UpdateSettings(botSettings(next))
		}
	}
	reloadSettings := func() error {
		next, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyConfig(next)
		return nil
	}
	reloader := services.NewOperatorReloader(reloadSettings, c.catalog)

	if !noBot && cfg.Discord.Token != "" {
		discord, err = bot.New(bot.Options{
			Token:            cfg.Discord.Token,
			RepliesPerSecond: cfg.Discord.RepliesPerSecond,
			ReplyBurst:       cfg.Discord.ReplyBurst,
		}, botSettings(cfg), c.lookup, reloader, logger.Named("bot"))
		if err != nil {
			return err
		}
	} else if !noBot {
		logger.Warn("no discord token configured, running the HTTP API only")
	}

	watcher, err := config.NewWatcher(configPath, applyConfig, logger.Named("config"))
	if err != nil {
		logger.Warn("config watcher disabled", zap.Error(err))
	} else {
		go watcher.Run(ctx)
	}

	refresh := services.NewRefreshWorker(c.catalog, cfg.Catalog.RefreshInterval.Duration, logger.Named("refresh"))

	// Start refresh worker in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("panic in refresh worker, restarting in 30 seconds", zap.Any("panic", r))
					}
				}()
				refresh.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				if cfg.Catalog.RefreshInterval.Duration <= 0 {
					return
				}
				logger.Info("refresh worker restarting after panic recovery")
			}
		}
	}()

	deps := api.Dependencies{
		Catalog:     c.store,
		Lookup:      c.lookup,
		Reloader:    reloader,
		Refresh:     refresh,
		CORSOrigins: cfg.Server.CORSOrigins,
		AdminToken:  cfg.Server.AdminToken,
	}
	if history != nil {
		deps.History = history
	}
	router := api.SetupRouter(deps)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	if discord != nil {
		if err := discord.Open(); err != nil {
			return err
		}
		logger.Info("discord bot connected")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Cancel the context to stop the background workers
	cancel()

	if discord != nil {
		if err := discord.Close(); err != nil {
			logger.Warn("discord session close failed", zap.Error(err))
		}
	}

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}

func botSettings(cfg *config.Config) bot.Settings {
	return bot.Settings{
		OwnerID: cfg.Discord.OwnerID,
		Prefix:  cfg.Discord.Prefix,
		Links:   cfg.Links,
	}
}
