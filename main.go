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
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/kevinaaaquil/onestopbooks/config"
	"github.com/kevinaaaquil/onestopbooks/handlers"
	"github.com/kevinaaaquil/onestopbooks/metrics"
	"github.com/kevinaaaquil/onestopbooks/middleware"
	"github.com/kevinaaaquil/onestopbooks/service"
	"github.com/kevinaaaquil/onestopbooks/store"
	"github.com/kevinaaaquil/onestopbooks/store/memory"
	"github.com/kevinaaaquil/onestopbooks/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	setupLogger(cfg)
	if err := config.ValidateEnv(cfg.Production()); err != nil {
		log.Fatal().Err(err).Msg("env check")
	}

	ctx := context.Background()

	var st store.Store
	if cfg.InMemory() {
		log.Warn().Msg("APP_ENV=memory: data lives in process memory and is lost on exit")
		st = memory.New()
	} else {
		db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			log.Fatal().Err(err).Msg("mongodb")
		}
		defer func() {
			if err := db.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("mongodb disconnect")
			}
		}()
		if err := db.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("mongodb indexes")
		}
		st = db
	}

	var cache service.CatalogCache = service.NopCache{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis url")
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable; catalog cache will miss until it recovers")
		}
		cache = service.NewRedisCatalogCache(client, service.WithTTL(cfg.CatalogCacheTTL))
	} else {
		log.Info().Msg("REDIS_URL not set; catalog cache disabled")
	}

	var thumbs service.ThumbnailStore
	if cfg.S3Bucket != "" {
		s3Service, err := service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			log.Fatal().Err(err).Msg("s3")
		}
		thumbs = s3Service
	} else {
		log.Info().Msg("AWS_S3_BUCKET not set; stored thumbnails are unavailable")
	}

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.SMTPHost != "" {
		notifier = service.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		log.Info().Msg("SMTP_HOST not set; order confirmations are not emailed")
	}

	tmpl, err := web.New()
	if err != nil {
		log.Fatal().Err(err).Msg("templates")
	}

	catalog := service.NewCatalog(st, cache, cfg.BargainPrice)
	checkout := service.NewCheckout(st, catalog, notifier)
	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute)
	if err := limiter.TrustProxies(cfg.TrustedProxies); err != nil {
		log.Fatal().Err(err).Msg("TRUSTED_PROXIES")
	}
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	limiter.StartCleanup(10*time.Minute, stopCleanup)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.PeerAddr)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log.Logger))
	r.Use(metrics.InstrumentHandler)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	handlers.Mount(r, handlers.Deps{
		Renderer:     tmpl,
		Catalog:      catalog,
		Accounts:     service.NewAccounts(st),
		Checkout:     checkout,
		Reviews:      service.NewReviews(st, catalog),
		Sessions:     middleware.NewSessions(cfg.JWTSecret, cfg.SessionTTL, cfg.CookieSecure),
		Thumbnails:   thumbs,
		LoginLimiter: limiter,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	checkout.Wait()
	log.Info().Msg("server stopped")
}
