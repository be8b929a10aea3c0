package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/fundhive/fundhive-api/internal/config"
	"github.com/fundhive/fundhive-api/internal/domain/admin"
	"github.com/fundhive/fundhive-api/internal/domain/auth"
	"github.com/fundhive/fundhive-api/internal/domain/campaign"
	"github.com/fundhive/fundhive-api/internal/domain/contribution"
	"github.com/fundhive/fundhive-api/internal/domain/dashboard"
	"github.com/fundhive/fundhive-api/internal/domain/notification"
	"github.com/fundhive/fundhive-api/internal/domain/user"
	"github.com/fundhive/fundhive-api/internal/domain/wallet"
	"github.com/fundhive/fundhive-api/internal/middleware"
	"github.com/fundhive/fundhive-api/internal/pkg/database"
	"github.com/fundhive/fundhive-api/internal/pkg/jwt"
	"github.com/fundhive/fundhive-api/internal/pkg/khalti"
	"github.com/fundhive/fundhive-api/internal/pkg/logger"
	pkgresponse "github.com/fundhive/fundhive-api/internal/pkg/response"
	"github.com/fundhive/fundhive-api/internal/pkg/storage"
)

const notificationRetention = 90 * 24 * time.Hour

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting FundHive API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	var store storage.Storage
	if cfg.R2AccountID != "" {
		r2, err := storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create R2 storage")
		}
		store = r2
	} else {
		local, err := storage.NewLocalStorage("./uploads", "/uploads")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
		store = local
		log.Warn().Msg("R2 not configured, storing uploads on local disk")
	}

	gateway := khalti.NewClient(khalti.Config{
		BaseURL:     cfg.KhaltiBaseURL,
		PublicKey:   cfg.KhaltiPublicKey,
		SecretKey:   cfg.KhaltiSecretKey,
		Simulate:    cfg.KhaltiSimulate,
		SuccessRate: cfg.KhaltiSuccessRate,
	})

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	tokenRepo := auth.NewRefreshTokenRepository(db)
	walletRepo := wallet.NewRepository(db)
	campaignRepo := campaign.NewRepository(db)
	contributionRepo := contribution.NewRepository(db, walletRepo)
	notificationRepo := notification.NewRepository(db)
	adminRepo := admin.NewRepository(db)
	dashboardRepo := dashboard.NewRepository(db)

	// ---------- WebSocket hub ----------
	hub := notification.NewHub(redisClient)
	go hub.Run()

	// ---------- Services ----------
	notificationSvc := notification.NewService(notificationRepo, notification.NewWSPublisher(hub))
	walletSvc := wallet.NewService(walletRepo, gateway)
	authSvc := auth.NewService(userRepo, tokenRepo, walletSvc, jwtService)
	userSvc := user.NewService(userRepo, store)
	campaignSvc := campaign.NewService(campaignRepo, contributionRepo, notificationSvc, store)
	contributionSvc := contribution.NewService(contributionRepo, walletRepo, campaignSvc, gateway, notificationSvc)
	adminSvc := admin.NewService(adminRepo, campaignRepo, walletRepo, userRepo, notificationSvc, redisClient)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authSvc)
	userHandler := user.NewHandler(userSvc)
	campaignHandler := campaign.NewHandler(campaignSvc)
	contributionHandler := contribution.NewHandler(contributionSvc)
	walletHandler := wallet.NewHandler(walletSvc)
	notificationHandler := notification.NewHandler(notificationSvc, hub, cfg.AllowedOrigins)
	adminHandler := admin.NewHandler(adminSvc)
	dashboardHandler := dashboard.NewHandler(dashboardRepo)

	authMiddleware := middleware.Auth(jwtService)
	optionalAuth := middleware.OptionalAuth(jwtService)
	requireAdmin := middleware.RequireAdmin(userRepo)

	// ---------- Background workers ----------
	finalizer := campaign.NewWorker(campaignRepo, contributionSvc, notificationSvc, cfg.FinalizerInterval)
	finalizer.Start()

	cleanupStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupStop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if n, err := notificationSvc.CleanupOld(ctx, notificationRetention); err != nil {
					log.Error().Err(err).Msg("Notification cleanup failed")
				} else if n > 0 {
					log.Info().Int64("deleted", n).Msg("Old notifications removed")
				}
				cancel()
			}
		}
	}()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint, outside the compressed API group. Browsers cannot
	// set headers on WebSocket requests so the token also comes as a query
	// parameter.
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(notificationHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/users", userHandler.Routes(authMiddleware))
		r.Mount("/campaigns", campaignHandler.Routes(authMiddleware, optionalAuth))
		r.Mount("/contributions", contributionHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
		r.Mount("/dashboard", dashboard.Routes(dashboardHandler, authMiddleware))
		r.Mount("/admin", adminHandler.Routes(authMiddleware, requireAdmin))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	finalizer.Stop()
	close(cleanupStop)
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
