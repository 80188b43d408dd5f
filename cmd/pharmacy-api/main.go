package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pharmacare/pharmacare-backend/internal/auth/handler"
	"github.com/pharmacare/pharmacare-backend/internal/auth/jwt"
	authrepo "github.com/pharmacare/pharmacare-backend/internal/auth/repository"
	authservice "github.com/pharmacare/pharmacare-backend/internal/auth/service"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/events"
	pharmacyhandler "github.com/pharmacare/pharmacare-backend/internal/pharmacy/handler"
	"github.com/pharmacare/pharmacare-backend/internal/pharmacy/service"
	"github.com/pharmacare/pharmacare-backend/pkg/cache"
	"github.com/pharmacare/pharmacare-backend/pkg/config"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
	"github.com/pharmacare/pharmacare-backend/pkg/messaging"
	"github.com/pharmacare/pharmacare-backend/pkg/storage"
)

const serviceName = "pharmacy-api"

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting PharmaCare API")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	migrator, err := database.NewMigrator(cfg.Database.DSN(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrator")
	}
	if err := migrator.Up(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	migrator.Close()

	deps := service.Deps{}
	health := map[string]func(context.Context) map[string]string{
		"database": db.Health,
	}

	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, caching disabled")
		} else {
			defer client.Close()
			deps.Cache = cache.New(client, cfg.Redis.CacheTTL, log)
			health["redis"] = deps.Cache.Health
		}
	}

	if cfg.RabbitMQ.Enabled {
		rmq, err := messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, events disabled")
		} else {
			defer rmq.Close()
			publisher, err := events.NewRabbitPublisher(rmq, log)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to create event publisher")
			}
			deps.Publisher = publisher
			health["rabbitmq"] = func(context.Context) map[string]string { return rmq.Health() }
		}
	}

	if cfg.Storage.Enabled {
		uploader, err := storage.NewUploader(ctx, cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure file storage")
		}
		deps.Files = uploader
	}

	svcs := service.NewServices(db, deps, log)

	tokens := jwt.NewManager(&cfg.JWT)
	users := authrepo.NewUserRepository(db)
	roles := authrepo.NewRoleRepository(db)
	sessions := authrepo.NewSessionRepository(db)
	authService := authservice.NewAuthService(users, sessions, tokens, log)
	accountService := authservice.NewAccountService(users, roles, sessions, log)

	authHandler := handler.NewAuthHandler(authService, log)
	accountHandler := handler.NewAccountHandler(accountService, log)
	pharmacyHandlers := pharmacyhandler.New(svcs, log)
	loginLimiter := httputil.NewIPRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	var scheduler *service.Scheduler
	if cfg.Scheduler.Enabled {
		scanner := svcs.NewAlertScanner(cfg.Scheduler.ExpiryWarningDays, cfg.Scheduler.ExpiryCriticalDays, log)
		scheduler = service.NewScheduler(scanner, svcs.Alerts, svcs.Notifications, service.RetentionPolicy{
			Alerts:        cfg.Scheduler.AlertRetention,
			Notifications: cfg.Scheduler.NotificationRetention,
		}, cfg.Scheduler.ScanInterval, log)
		scheduler.AddCleanup("sessions", authService.CleanupSessions)
		scheduler.Start(ctx)
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  allowOrigin(cfg.Server.Environment),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "healthy",
			"service": serviceName,
		}
		for name, check := range health {
			body[name] = check(r.Context())
		}
		httputil.JSON(w, http.StatusOK, body)
	})

	r.Route("/api/v1", func(r chi.Router) {
		authHandler.PublicRoutes(r, loginLimiter)

		r.Group(func(r chi.Router) {
			r.Use(httputil.Authenticate(tokens))
			authHandler.Routes(r)
			accountHandler.Routes(r)
			pharmacyHandlers.Routes(r)
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	if scheduler != nil {
		scheduler.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// allowOrigin accepts local front-ends in development and the pharmacare
// domains everywhere.
func allowOrigin(environment string) func(*http.Request, string) bool {
	return func(_ *http.Request, origin string) bool {
		if environment == config.EnvDevelopment && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			return true
		}
		return origin == "https://pharmacare.app" || strings.HasSuffix(origin, ".pharmacare.app")
	}
}
