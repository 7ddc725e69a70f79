package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/auth_service/internal/audit"
	"github.com/Skotchmaster/auth_service/internal/config"
	"github.com/Skotchmaster/auth_service/internal/db"
	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/httpserver"
	"github.com/Skotchmaster/auth_service/internal/kv"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/revocation"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}
	store, err := kv.Open(initCtx, cfg.RedisURL, cfg.StoreTimeout)
	cancel()
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}

	codec, err := tokens.NewCodec([]byte(cfg.JWTSecret), cfg.JWTAlgorithm)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	indexer, err := audit.NewESIndexer(audit.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}
	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)

	gormRepo := repo.New(gdb, cfg.StoreTimeout)
	hasher := hash.NewHasher(cfg.BcryptCost)

	sessions := &service.SessionLedger{
		Repo:         gormRepo,
		Cache:        store,
		CacheTTL:     cfg.SessionCacheTTL,
		Indexer:      indexer,
		ActiveWindow: cfg.RefreshTokenTTL,
	}
	authSvc := &service.AuthService{
		Repo:       gormRepo,
		Hasher:     hasher,
		Codec:      codec,
		Revoked:    revocation.New(store),
		Sessions:   sessions,
		Events:     publisher,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}

	e := httpserver.New(logger, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: authSvc},
		RolesHandler: &httpserver.RolesHTTP{Svc: &service.RoleService{Repo: gormRepo}},
		UsersHandler: &httpserver.UsersHTTP{
			Users:    &service.UserService{Repo: gormRepo, Hasher: hasher, Auth: authSvc},
			Sessions: sessions,
		},
		AdminRole: cfg.AdminRole,
		Ready: func(ctx context.Context) error {
			if err := gormRepo.Ping(ctx); err != nil {
				return err
			}
			return store.Ping(ctx)
		},
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http server started", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("redis close", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}
	logger.Info("server stopped")
}
