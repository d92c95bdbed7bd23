package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"bluecollarconnect/internal/app"
	"bluecollarconnect/internal/config"
	"bluecollarconnect/internal/identity"
	"bluecollarconnect/internal/server"
	"bluecollarconnect/internal/util"
	"bluecollarconnect/pkg/storage"
	"bluecollarconnect/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)
	tokenTTL, err := config.ParseTokenTTL(cfg.IdentityTokenTTL)
	if err != nil {
		log.Fatalf("failed to parse identity token ttl: %v", err)
	}
	leeway, err := config.ParseLeeway(cfg.IdentityLeeway)
	if err != nil {
		log.Fatalf("failed to parse identity leeway: %v", err)
	}
	verifyKeys, err := config.ParseVerifyKeys(cfg.IdentityVerifyKeys)
	if err != nil {
		log.Fatalf("failed to parse identity verify keys: %v", err)
	}

	db, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	objects, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:      cfg.MinioEndpoint,
		AccessKey:     cfg.MinioAccessKey,
		SecretKey:     cfg.MinioSecretKey,
		Bucket:        cfg.MinioBucket,
		UseSSL:        cfg.MinioUseSSL,
		PublicBaseURL: cfg.MinioPublicBaseURL,
	})
	if err != nil {
		log.Fatalf("failed to init object store: %v", err)
	}

	provider, err := identity.NewService(identity.Config{
		Accounts:       db,
		Revoker:        identity.NewRedisRevoker(cfg.RedisAddr, cfg.RedisPassword),
		PrivateKeyPath: cfg.IdentityPrivateKeyPath,
		KeyID:          cfg.IdentityKeyID,
		VerifyKeyPaths: verifyKeys,
		Issuer:         cfg.IdentityIssuer,
		Audience:       cfg.IdentityAudience,
		TokenTTL:       tokenTTL,
		Leeway:         leeway,
	})
	if err != nil {
		log.Fatalf("failed to init identity service: %v", err)
	}

	appCore := app.New(db, objects)

	httpServer, err := server.New(server.Config{
		App:                      appCore,
		Identity:                 provider,
		AllowedOrigins:           cfg.AllowedOrigins,
		RedisAddr:                cfg.RedisAddr,
		RedisPassword:            cfg.RedisPassword,
		SignupRateLimitPerMinute: cfg.SignupRateLimitPerMinute,
		MaxUploadBytes:           cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("api server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
