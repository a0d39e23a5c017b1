package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Seiiyes/HotelReservation/internal/api"
	"github.com/Seiiyes/HotelReservation/internal/billing"
	"github.com/Seiiyes/HotelReservation/internal/booking"
	"github.com/Seiiyes/HotelReservation/internal/config"
	"github.com/Seiiyes/HotelReservation/internal/database"
	"github.com/Seiiyes/HotelReservation/internal/events"
	"github.com/Seiiyes/HotelReservation/internal/metrics"
	"github.com/Seiiyes/HotelReservation/internal/notify"
	"github.com/Seiiyes/HotelReservation/internal/queue"
	"github.com/Seiiyes/HotelReservation/internal/reports"
	"github.com/Seiiyes/HotelReservation/internal/sheets"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("HOTEL_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()

	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.StaffChatIDs, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create telegram notifier error")
		}
		notifier.Subscribe(bus)
	}

	if cfg.AMQP.Enabled && cfg.AMQP.URL != "" {
		publisher, err := queue.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create amqp publisher error")
		}
		defer publisher.Close()
		publisher.Subscribe(bus)
	}

	if cfg.Sheets.Enabled && cfg.Sheets.SpreadsheetID != "" {
		mirror, err := sheets.NewService(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create sheets mirror error")
		}
		mirror.Subscribe(bus)
	}

	var rdb *redis.Client
	var cache *api.Cache
	if cfg.Redis.Address != "" && cfg.Redis.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		cache = api.NewCache(rdb, time.Duration(cfg.Redis.CacheTTLSeconds)*time.Second, logger)
	}

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(db, cfg.Backup.StoragePath,
			time.Duration(cfg.Backup.IntervalHours)*time.Hour, cfg.Backup.RetentionDays, &logger)
		go backup.Start(ctx)
	}

	metrics.Register()

	bookingSvc := booking.NewService(db, bus, logger)
	billingSvc := billing.NewService(db, bus, logger)
	reportsSvc := reports.NewService(db)

	server := api.NewHTTPServer(api.Options{
		Port:             cfg.Server.Port,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimitRPS:     cfg.RateLimit.RPS,
		RateLimitBurst:   cfg.RateLimit.Burst,
	}, db, bookingSvc, billingSvc, reportsSvc, cache, logger)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Msg("Hotel reservation server started")
	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
