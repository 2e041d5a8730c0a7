package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/smartstore/backend/internal/chat"
	"github.com/smartstore/backend/internal/config"
	"github.com/smartstore/backend/internal/es"
	"github.com/smartstore/backend/internal/events"
	"github.com/smartstore/backend/internal/handlers"
	"github.com/smartstore/backend/internal/httpserver"
	"github.com/smartstore/backend/internal/llm"
	"github.com/smartstore/backend/internal/logging"
	"github.com/smartstore/backend/internal/middleware/loggingmw"
	"github.com/smartstore/backend/internal/service/token"
	"github.com/smartstore/backend/internal/store"
	"github.com/smartstore/backend/internal/tools"
	"github.com/smartstore/backend/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)
	tokens := token.New(cfg.JWTSecret, cfg.AccessTokenExpires)
	prod := events.NewProducer(cfg.KafkaBrokers)

	productHandler := &handlers.ProductHandler{Store: st, Producer: prod}
	var searchHandler *handlers.SearchHandler
	if cfg.ESURL != "" {
		client, err := es.NewClient(es.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Error("elasticsearch connect failed", "error", err)
			os.Exit(1)
		}
		searchHandler = &handlers.SearchHandler{ES: client, Index: cfg.ESIndex}
		productHandler.ES = client
		productHandler.ESIndex = cfg.ESIndex
	}

	model := llm.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.ModelTimeout)
	registry := tools.NewRegistry(st, tokens)
	bridge := chat.NewBridge(model, registry)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Store:           st,
		Tokens:          tokens,
		AuthHandler:     &handlers.AuthHandler{Store: st, Tokens: tokens, Producer: prod},
		ProductHandler:  productHandler,
		CategoryHandler: &handlers.CategoryHandler{Store: st},
		CartHandler:     &handlers.CartHandler{Store: st, Producer: prod},
		OrderHandler:    &handlers.OrderHandler{Store: st, Producer: prod},
		UserHandler:     &handlers.UserHandler{Store: st},
		ChatHandler:     &handlers.ChatHandler{Bridge: bridge, Store: st},
		SearchHandler:   searchHandler,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
