// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Finwire is a financial-news CMS API: content management, curated
// market lists with cached resolution, reference data and CSV imports.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finwire/internal/cache"
	"finwire/internal/config"
	"finwire/internal/database"
	"finwire/internal/handlers"
	"finwire/internal/importer"
	"finwire/internal/markets"
	"finwire/internal/newsfetch"
	"finwire/internal/router"
	"finwire/internal/session"
	"finwire/internal/store"
)

func main() {
	// Missing .env is fine; containers set real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.IsDev() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("database migrate failed", "error", err)
		os.Exit(1)
	}

	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("database seed failed", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := cache.Connect(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		slog.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	sessions := session.NewStore(redisClient, !cfg.IsDev())
	itemCache := cache.NewItemCache(redisClient)

	users := store.NewUserStore(db)
	categories := store.NewCategoryStore(db)
	tags := store.NewTagStore(db)
	posts := store.NewPostStore(db)
	news := store.NewNewsStore(db)
	navItems := store.NewNavItemStore(db)
	marketLists := store.NewMarketListStore(db)
	instruments := store.NewInstrumentStore(db)
	indices := store.NewIndexStore(db)
	bars := store.NewBarStore(db)

	resolver := markets.NewResolver(marketLists, bars, itemCache)
	newsClient := newsfetch.New(cfg.NewsAPIKey, cfg.NewsFeedURL, news)

	handler := router.New(router.Deps{
		Sessions: sessions,
		Auth:     handlers.NewAuth(sessions, users),
		Admin: handlers.NewAdmin(
			users, posts, news, bars, newsClient,
			importer.NewMarketListImporter(marketLists),
			importer.NewBarImporter(bars),
		),
		CMS: handlers.NewCMS(
			categories, tags, posts, news, navItems,
			marketLists, instruments, indices, resolver,
		),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.NewsInterval > 0 {
		go newsSyncLoop(ctx, newsClient, cfg.NewsInterval)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

// newsSyncLoop runs a feed sync immediately and then on every tick until
// the context is cancelled.
func newsSyncLoop(ctx context.Context, client *newsfetch.Client, interval time.Duration) {
	if _, err := client.Sync(ctx); err != nil {
		slog.Error("news sync failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := client.Sync(ctx); err != nil {
				slog.Error("news sync failed", "error", err)
			}
		}
	}
}
