package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"freegift/internal/config"
	"freegift/internal/db"
	"freegift/internal/httpserver"
	auditrepo "freegift/internal/repository/audit"
	giftsvc "freegift/internal/service/gift"
	rulesvc "freegift/internal/service/rule"
	"freegift/internal/shopify"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	var dbpool *pgxpool.Pool
	var auditRepo auditrepo.Repository
	if cfg.DBConnString != "" {
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()
		dbpool = pool
		auditRepo = auditrepo.NewPostgres(pool)
	} else {
		logger.Printf("DB_DSN not set, reconciliation audit log disabled")
	}

	adminClient := shopify.NewAdmin(cfg.Shopify, nil)
	storefrontClient := shopify.NewStorefront(cfg.Shopify, nil)

	giftService := giftsvc.New(adminClient, storefrontClient, auditRepo, logger)
	ruleService := rulesvc.New(adminClient, adminClient, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		GiftSvc:       giftService,
		RuleSvc:       ruleService,
		Audit:         auditRepo,
		StorefrontURL: cfg.StorefrontURL,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
